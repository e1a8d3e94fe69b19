package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

// WriteResults writes results in the given order. One demand and one
// dr_invoked_day column is emitted per lag, up to the longest lag slice.
func WriteResults(w io.Writer, results []baseline.ResultRecord) error {
	lags := 0
	for _, r := range results {
		if len(r.DemandDaysAgo) > lags {
			lags = len(r.DemandDaysAgo)
		}
		if len(r.DRInvokedDayDaysAgo) > lags {
			lags = len(r.DRInvokedDayDaysAgo)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ResultHeader(lags)); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			formatTimestamp(r.Timestamp),
			formatOptionalFloat(r.Demand),
			strconv.Itoa(r.InvokedUnit),
			formatDate(r.Date),
			strconv.Itoa(int(r.DayOfWeek)),
			formatBool(r.IsPublicHoliday),
			formatBool(r.IsWeekday),
			string(r.DayType),
			strconv.Itoa(r.UnitNum),
			strconv.Itoa(r.DRInvokedDay),
			formatOptionalFloat(r.MeanDailyDemandForDR),
		}
		for k := 1; k <= lags; k++ {
			if v, ok := r.DemandAgo(k); ok {
				row = append(row, formatFloat(v))
			} else {
				row = append(row, "")
			}
		}
		for k := 1; k <= lags; k++ {
			if v, ok := r.DRInvokedDayAgo(k); ok {
				row = append(row, strconv.Itoa(v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, formatOptionalFloat(r.MeanHighXOfY))
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteResultsFile creates path and writes results into it.
func WriteResultsFile(path string, results []baseline.ResultRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteResults(file, results); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ResultHeader returns the output columns for the given number of lags.
func ResultHeader(lags int) []string {
	header := []string{
		"datetime",
		"demand",
		"dr_invoked_unit",
		"date",
		"day_of_week",
		"is_public_holiday",
		"is_weekday",
		"day_type",
		"unit_num",
		"dr_invoked_day",
		"mean_daily_demand_for_dr",
	}
	for k := 1; k <= lags; k++ {
		header = append(header, fmt.Sprintf("demand_%d_days_ago", k))
	}
	for k := 1; k <= lags; k++ {
		header = append(header, fmt.Sprintf("dr_invoked_day_%d_days_ago", k))
	}
	return append(header, "mean_high_x_of_y")
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(time.RFC3339)
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format("2006-01-02")
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
