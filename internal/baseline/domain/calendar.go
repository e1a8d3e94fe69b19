package baseline

import "time"

// Weekday is the ISO day of week with Monday as 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// WeekdayOf converts a time.Weekday (Sunday=0) to the Monday-first numbering.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// IsValid reports whether the value is one of the seven days.
func (d Weekday) IsValid() bool { return d >= Monday && d <= Sunday }

// IsWeekend reports Saturday or Sunday.
func (d Weekday) IsWeekend() bool { return d == Saturday || d == Sunday }

func (d Weekday) String() string {
	if !d.IsValid() {
		return "UNKNOWN"
	}
	return weekdayNames[d]
}

// DayType is the partition a record belongs to.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeHoliday DayType = "holiday"
)

// DayTypes lists partitions in output order.
var DayTypes = []DayType{DayTypeWeekday, DayTypeHoliday}

// IsValid reports whether the day type is supported.
func (t DayType) IsValid() bool {
	return t == DayTypeWeekday || t == DayTypeHoliday
}

// ParseDayType validates a day type string.
func ParseDayType(value string) (DayType, error) {
	t := DayType(value)
	if !t.IsValid() {
		return "", ErrInvalidDayType
	}
	return t, nil
}

const dateKeyLayout = "2006-01-02"

// DateKey is the calendar date of a timestamp, independent of location.
type DateKey string

// DateKeyOf formats the calendar date of t in its own location.
func DateKeyOf(t time.Time) DateKey { return DateKey(t.Format(dateKeyLayout)) }

// HolidaySet is a sparse set of public holidays.
type HolidaySet map[DateKey]struct{}

// NewHolidaySet builds a set from holiday dates.
func NewHolidaySet(dates ...time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, date := range dates {
		set.Add(date)
	}
	return set
}

// Add marks the calendar date of t as a public holiday.
func (s HolidaySet) Add(t time.Time) {
	s[DateKeyOf(t)] = struct{}{}
}

// Contains reports whether the calendar date of t is a public holiday.
// A nil set contains nothing.
func (s HolidaySet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	_, ok := s[DateKeyOf(t)]
	return ok
}

// Len returns the number of holidays.
func (s HolidaySet) Len() int { return len(s) }

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
