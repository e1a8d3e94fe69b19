package baseline

import "gonum.org/v1/gonum/stat"

// BuildFeatures derives per-date DR aggregates and assigns unit_num.
// Records must be sorted by timestamp and gap-free at the unit granularity;
// a gap shifts every later unit_num and is not detected here.
func BuildFeatures(records []ClassifiedRecord, unitNumPerDay int) []EnrichedRecord {
	invokedByDate := make(map[DateKey]int)
	demandsForDR := make(map[DateKey][]float64)
	for _, record := range records {
		key := DateKeyOf(record.Date)
		invokedByDate[key] += record.InvokedUnit
		if record.InvokedUnit != 0 && record.Demand != nil {
			demandsForDR[key] = append(demandsForDR[key], *record.Demand)
		}
	}

	meanByDate := make(map[DateKey]float64, len(demandsForDR))
	for key, demands := range demandsForDR {
		meanByDate[key] = stat.Mean(demands, nil)
	}

	out := make([]EnrichedRecord, len(records))
	for i, record := range records {
		key := DateKeyOf(record.Date)
		enriched := EnrichedRecord{
			ClassifiedRecord: record,
			UnitNum:          UnitNum(i+1, unitNumPerDay),
			DRInvokedDay:     invokedByDate[key],
		}
		if mean, ok := meanByDate[key]; ok {
			enriched.MeanDailyDemandForDR = Float(mean)
		}
		out[i] = enriched
	}
	return out
}

// UnitNum returns the cyclic 1-based unit index of the position-th record (1-based).
func UnitNum(position, unitNumPerDay int) int {
	if unitNumPerDay <= 0 {
		return 0
	}
	return (position-1)%unitNumPerDay + 1
}
