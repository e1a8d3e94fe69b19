package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	baseline "highxofy/internal/baseline/domain"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var (
	timestampColumns = []string{"datetime", "timestamp"}
	demandColumns    = []string{"demand"}
	invokedColumns   = []string{"dr_invoked_unit", "invoked_unit"}
	holidayColumns   = []string{"date"}
)

// ReadDemand parses a demand table. Rows keep file order; blank, NaN and
// non-numeric demand cells become missing values. Timestamps without an
// offset are read in loc (UTC when nil).
func ReadDemand(r io.Reader, source string, loc *time.Location) ([]baseline.DemandRecord, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s header: %w", source, err)
	}
	headerMap := mapHeader(header)

	tsIdx, err := requireColumn(headerMap, source, timestampColumns)
	if err != nil {
		return nil, err
	}
	demandIdx, err := requireColumn(headerMap, source, demandColumns)
	if err != nil {
		return nil, err
	}
	invokedIdx, err := requireColumn(headerMap, source, invokedColumns)
	if err != nil {
		return nil, err
	}

	var records []baseline.DemandRecord
	row := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &baseline.ParseError{Source: source, Row: row, Field: "*", Err: err}
		}
		if blankRow(fields) {
			continue
		}

		rawTS := field(fields, tsIdx)
		ts, err := parseTimestamp(rawTS, loc)
		if err != nil {
			return nil, &baseline.ParseError{Source: source, Row: row, Field: header[tsIdx], Value: rawTS, Err: err}
		}
		rawInvoked := field(fields, invokedIdx)
		invoked, err := parseInvokedUnit(rawInvoked)
		if err != nil {
			return nil, &baseline.ParseError{Source: source, Row: row, Field: header[invokedIdx], Value: rawInvoked, Err: err}
		}

		records = append(records, baseline.DemandRecord{
			Timestamp:   ts,
			Demand:      parseDemand(field(fields, demandIdx)),
			InvokedUnit: invoked,
		})
	}
	return records, nil
}

// ReadHolidays parses a holiday calendar with a date column.
func ReadHolidays(r io.Reader, source string, loc *time.Location) (baseline.HolidaySet, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	holidays := baseline.NewHolidaySet()
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return holidays, nil
		}
		return nil, fmt.Errorf("read %s header: %w", source, err)
	}
	dateIdx, err := requireColumn(mapHeader(header), source, holidayColumns)
	if err != nil {
		return nil, err
	}

	row := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, &baseline.ParseError{Source: source, Row: row, Field: "*", Err: err}
		}
		if blankRow(fields) {
			continue
		}
		raw := field(fields, dateIdx)
		date, err := parseDate(raw, loc)
		if err != nil {
			return nil, &baseline.ParseError{Source: source, Row: row, Field: header[dateIdx], Value: raw, Err: err}
		}
		holidays.Add(date)
	}
	return holidays, nil
}

func mapHeader(header []string) map[string]int {
	headerMap := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := headerMap[name]; !exists {
			headerMap[name] = i
		}
	}
	return headerMap
}

func requireColumn(headerMap map[string]int, source string, names []string) (int, error) {
	for _, name := range names {
		if idx, ok := headerMap[name]; ok {
			return idx, nil
		}
	}
	return 0, &baseline.ParseError{
		Source: source,
		Row:    1,
		Field:  strings.Join(names, "|"),
		Err:    errors.New("missing required column"),
	}
}

func field(fields []string, idx int) string {
	if idx < len(fields) {
		return strings.TrimSpace(fields[idx])
	}
	return ""
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339 {
			if ts, err := time.Parse(layout, value); err == nil {
				return ts, nil
			}
			continue
		}
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unsupported timestamp format")
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	if date, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return date, nil
	}
	if date, err := time.ParseInLocation("2006/01/02", value, loc); err == nil {
		return date, nil
	}
	ts, err := parseTimestamp(value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

func parseDemand(value string) *float64 {
	if value == "" {
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return baseline.Float(v)
}

func parseInvokedUnit(value string) (int, error) {
	switch value {
	case "", "0", "0.0", "false", "False":
		return 0, nil
	case "1", "1.0", "true", "True":
		return 1, nil
	}
	return 0, baseline.ErrInvalidInvokedUnit
}
