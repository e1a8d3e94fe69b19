package baseline

// ClassifyRecord tags one record with its date, day of week and day type.
func ClassifyRecord(record DemandRecord, holidays HolidaySet) ClassifiedRecord {
	dayOfWeek := WeekdayOf(record.Timestamp)
	isHoliday := holidays.Contains(record.Timestamp)
	return ClassifiedRecord{
		DemandRecord:    record,
		Date:            truncateToDay(record.Timestamp),
		DayOfWeek:       dayOfWeek,
		IsPublicHoliday: isHoliday,
		IsWeekday:       !dayOfWeek.IsWeekend() && !isHoliday,
	}
}

// Classify joins records against the holiday calendar, keeping order and cardinality.
func Classify(records []DemandRecord, holidays HolidaySet) []ClassifiedRecord {
	out := make([]ClassifiedRecord, len(records))
	for i, record := range records {
		out[i] = ClassifyRecord(record, holidays)
	}
	return out
}
