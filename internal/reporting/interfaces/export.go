package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"meterdash/internal/reporting/application"
	reporting "meterdash/internal/reporting/domain"
)

// BuildRecordsXLSX renders the full-history record table as a workbook. The
// totals column sums every month of the domain's superset, independent of
// any selected range.
func BuildRecordsXLSX(domain string, agg reporting.Aggregator, records []reporting.MeterRecord) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	recordsSheet := "records"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(recordsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Consumption Records")
	_ = f.SetCellValue(summarySheet, "A3", "Domain")
	_ = f.SetCellValue(summarySheet, "B3", domain)
	_ = f.SetCellValue(summarySheet, "A4", "Records")
	_ = f.SetCellValue(summarySheet, "B4", len(records))
	_ = f.SetCellValue(summarySheet, "A5", "Total Consumption")
	_ = f.SetCellValue(summarySheet, "B5", agg.FullHistoryTotals(records))
	_ = f.SetCellValue(summarySheet, "A6", "Unit Rate")
	_ = f.SetCellValue(summarySheet, "B6", agg.UnitRate())
	_ = f.SetCellValue(summarySheet, "A7", "Total Cost")
	_ = f.SetCellValue(summarySheet, "B7", agg.Cost(agg.FullHistoryTotals(records)))

	index := agg.HistoryIndex()
	_ = f.SetCellValue(recordsSheet, "A1", "Name")
	_ = f.SetCellValue(recordsSheet, "B1", "Account")
	_ = f.SetCellValue(recordsSheet, "C1", "Type")
	for i := 0; i < index.Len(); i++ {
		label, err := index.LabelAt(i)
		if err != nil {
			return nil, err
		}
		cell, err := excelize.CoordinatesToCellName(4+i, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(recordsSheet, cell, label)
	}
	totalCell, err := excelize.CoordinatesToCellName(4+index.Len(), 1)
	if err != nil {
		return nil, err
	}
	_ = f.SetCellValue(recordsSheet, totalCell, "Total")

	for rowIdx, record := range records {
		row := rowIdx + 2
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("A%d", row), record.Name)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("B%d", row), record.Account)
		_ = f.SetCellValue(recordsSheet, fmt.Sprintf("C%d", row), record.Type)
		for i := 0; i < index.Len(); i++ {
			key, err := index.KeyAt(i)
			if err != nil {
				return nil, err
			}
			cell, err := excelize.CoordinatesToCellName(4+i, row)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(recordsSheet, cell, record.ValueAt(key))
		}
		cell, err := excelize.CoordinatesToCellName(4+index.Len(), row)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(recordsSheet, cell, agg.FullHistoryTotal(record))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders the current snapshot's headline figures as a PDF.
func BuildSummaryPDF(snapshot application.Snapshot, index reporting.MonthIndex) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Consumption Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Domain: %s", snapshot.Domain))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Range: %s", describeRange(snapshot.Range, index)))
	pdf.Ln(5)
	if snapshot.Type != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Type: %s", snapshot.Type))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Records: %d", snapshot.RecordCount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Consumption: %.3f", snapshot.Total))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Cost: %.2f", snapshot.Cost))
	pdf.Ln(5)
	if snapshot.TopConsumer != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Top Consumer: %s (%s)", snapshot.TopConsumer.Name, snapshot.TopConsumer.Account))
		pdf.Ln(5)
	}

	if snapshot.Hierarchy != nil {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Distribution Hierarchy")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		levels := snapshot.Hierarchy.Levels
		losses := snapshot.Hierarchy.Losses
		pdf.Cell(0, 6, fmt.Sprintf("A1: %.3f  A2: %.3f  A3: %.3f  A4: %.3f", levels.A1, levels.A2, levels.A3, levels.A4))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Stage 1 Loss: %.3f (%.2f%%)", losses.Stage1, losses.Stage1Pct))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Stage 2 Loss: %.3f (%.2f%%)", losses.Stage2, losses.Stage2Pct))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Stage 3 Loss: %.3f (%.2f%%)", losses.Stage3, losses.Stage3Pct))
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("Total Loss: %.3f (%.2f%%)", losses.Total, losses.TotalPct))
		pdf.Ln(5)
	}

	// Monthly table
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Consumption", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range snapshot.Monthly {
		pdf.CellFormat(60, 6, point.Label, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.3f", point.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func describeRange(rng reporting.MonthRange, index reporting.MonthIndex) string {
	if rng.IsEmpty() {
		return "empty"
	}
	from, err := index.LabelAt(rng.Start)
	if err != nil {
		return fmt.Sprintf("%d..%d", rng.Start, rng.End)
	}
	to, err := index.LabelAt(rng.End)
	if err != nil {
		return fmt.Sprintf("%d..%d", rng.Start, rng.End)
	}
	return from + " - " + to
}
