package baseline

import "time"

// ProfilePoint is the baseline of one unit on the latest day of a partition.
type ProfilePoint struct {
	UnitNum   int
	Timestamp time.Time
	Demand    *float64
	Baseline  *float64
}

// PartitionSummary describes the results of one day type.
type PartitionSummary struct {
	DayType   DayType
	Params    Params
	Records   int
	Defined   int
	Undefined int
	FirstAt   time.Time
	LastAt    time.Time
	Profile   []ProfilePoint
}

// Summary describes a whole calculation.
type Summary struct {
	Total      int
	Partitions []PartitionSummary
}

// Partition returns the summary of a day type.
func (s Summary) Partition(dayType DayType) (PartitionSummary, bool) {
	for _, p := range s.Partitions {
		if p.DayType == dayType {
			return p, true
		}
	}
	return PartitionSummary{}, false
}

// Summarize counts results per day type and extracts the latest-day profile.
func Summarize(results []ResultRecord, cfg Config) Summary {
	byType := make(map[DayType][]ResultRecord, len(DayTypes))
	for _, r := range results {
		byType[r.DayType] = append(byType[r.DayType], r)
	}

	summary := Summary{Total: len(results)}
	for _, dayType := range DayTypes {
		params, _ := cfg.ParamsFor(dayType)
		summary.Partitions = append(summary.Partitions, summarizePartition(dayType, params, byType[dayType]))
	}
	return summary
}

func summarizePartition(dayType DayType, params Params, rows []ResultRecord) PartitionSummary {
	p := PartitionSummary{DayType: dayType, Params: params, Records: len(rows)}
	if len(rows) == 0 {
		return p
	}
	p.FirstAt = rows[0].Timestamp
	p.LastAt = rows[0].Timestamp
	latest := DateKeyOf(rows[0].Date)
	for _, r := range rows {
		if r.HasResult() {
			p.Defined++
		} else {
			p.Undefined++
		}
		if r.Timestamp.Before(p.FirstAt) {
			p.FirstAt = r.Timestamp
		}
		if r.Timestamp.After(p.LastAt) {
			p.LastAt = r.Timestamp
			latest = DateKeyOf(r.Date)
		}
	}
	for _, r := range rows {
		if DateKeyOf(r.Date) != latest {
			continue
		}
		p.Profile = append(p.Profile, ProfilePoint{
			UnitNum:   r.UnitNum,
			Timestamp: r.Timestamp,
			Demand:    r.Demand,
			Baseline:  r.MeanHighXOfY,
		})
	}
	return p
}
