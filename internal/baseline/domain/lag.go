package baseline

// GenerateLags copies demand and dr_invoked_day from k*unitNumPerDay rows
// earlier, for k in 1..maxGoBackDays. Offsets are taken inside the given
// partition, so "one day ago" for a weekday row is the previous weekday row.
func GenerateLags(records []EnrichedRecord, unitNumPerDay, maxGoBackDays int) []LaggedRecord {
	out := make([]LaggedRecord, len(records))
	for i, record := range records {
		lagged := LaggedRecord{
			EnrichedRecord:      record,
			DemandDaysAgo:       make([]*float64, maxGoBackDays),
			DRInvokedDayDaysAgo: make([]*int, maxGoBackDays),
		}
		for k := 1; k <= maxGoBackDays; k++ {
			j := i - k*unitNumPerDay
			if j < 0 {
				break
			}
			source := records[j]
			if source.Demand != nil {
				lagged.DemandDaysAgo[k-1] = Float(*source.Demand)
			}
			lagged.DRInvokedDayDaysAgo[k-1] = Int(source.DRInvokedDay)
		}
		out[i] = lagged
	}
	return out
}

// Partition splits records by day type, keeping relative order.
func Partition(records []EnrichedRecord) map[DayType][]EnrichedRecord {
	parts := make(map[DayType][]EnrichedRecord, len(DayTypes))
	for _, dayType := range DayTypes {
		parts[dayType] = nil
	}
	for _, record := range records {
		dayType := record.DayType()
		parts[dayType] = append(parts[dayType], record)
	}
	return parts
}
