package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	baseline "highxofy/internal/baseline/domain"
)

const (
	summarySheet = "summary"
	resultsSheet = "results"
)

// BuildResultsXLSX renders a workbook with a summary sheet and one row per result.
func BuildResultsXLSX(subjectID string, summary baseline.Summary, results []baseline.ResultRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(resultsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "High X of Y Baseline")
	_ = f.SetCellValue(summarySheet, "A3", "Subject")
	_ = f.SetCellValue(summarySheet, "B3", subjectID)
	_ = f.SetCellValue(summarySheet, "A4", "Records")
	_ = f.SetCellValue(summarySheet, "B4", summary.Total)

	header := []any{"Day Type", "X", "Y", "Records", "Defined", "Undefined", "First", "Last"}
	if err := f.SetSheetRow(summarySheet, "A6", &header); err != nil {
		return nil, err
	}
	for i, p := range summary.Partitions {
		row := []any{
			string(p.DayType),
			p.Params.X,
			p.Params.Y,
			p.Records,
			p.Defined,
			p.Undefined,
			formatTime(p.FirstAt),
			formatTime(p.LastAt),
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+7), &row); err != nil {
			return nil, err
		}
	}

	columns := []any{"Datetime", "Day Type", "Unit", "Demand", "DR Invoked Unit", "DR Invoked Day", "Mean High X of Y"}
	if err := f.SetSheetRow(resultsSheet, "A1", &columns); err != nil {
		return nil, err
	}
	for i, r := range results {
		row := []any{
			formatTime(r.Timestamp),
			string(r.DayType),
			r.UnitNum,
			optional(r.Demand),
			r.InvokedUnit,
			r.DRInvokedDay,
			optional(r.MeanHighXOfY),
		}
		if err := f.SetSheetRow(resultsSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBaselinePDF renders the partition summary and the latest-day
// baseline profile of each day type.
func BuildBaselinePDF(subjectID string, summary baseline.Summary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "High X of Y Baseline")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Subject: %s", subjectID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d", summary.Total))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	for _, p := range summary.Partitions {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 6, fmt.Sprintf("%s (high %d of %d)", p.DayType, p.Params.X, p.Params.Y))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Records: %d  Defined: %d  Undefined: %d", p.Records, p.Defined, p.Undefined))
		pdf.Ln(6)
		if len(p.Profile) == 0 {
			pdf.Ln(4)
			continue
		}

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(20, 6, "Unit", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "Datetime", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Demand", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Baseline", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, point := range p.Profile {
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", point.UnitNum), "1", 0, "C", false, 0, "")
			pdf.CellFormat(50, 6, point.Timestamp.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(40, 6, formatOptional(point.Demand), "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, formatOptional(point.Baseline), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(time.RFC3339)
}

func optional(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func formatOptional(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *value)
}
