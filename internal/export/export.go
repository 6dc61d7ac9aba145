// Package export renders a GPA report for download. CSV output is UTF-8
// with a byte-order marker so regional spreadsheet tools open the Chinese
// subject names correctly.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"go-transcript-gpa/pkg/models"
)

// utf8BOM keeps Excel from misreading the CSV as a legacy codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"subject", "score", "credit", "grade_point", "weighted_point"}

// WriteCSV renders the report's record table as BOM-prefixed CSV. Derived
// fields are rounded to 4 decimals at display time only.
func WriteCSV(report *models.GpaReport) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	for _, record := range report.Records {
		row := []string{
			record.Subject,
			formatNumber(record.Score),
			formatNumber(record.Credit),
			formatDerived(record.GradePoint),
			formatDerived(record.WeightedPoint),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteXLSX renders the report as a single-sheet workbook with a summary
// GPA cell above the record table.
func WriteXLSX(report *models.GpaReport) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	if err := f.SetCellValue(sheet, "A1", "平均绩点 (GPA)"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, "B1", formatDerived(report.FinalGPA)); err != nil {
		return nil, err
	}

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 3)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, record := range report.Records {
		row := i + 4
		values := []interface{}{
			record.Subject,
			record.Score,
			record.Credit,
			record.GradePoint,
			record.WeightedPoint,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatDerived applies the 4-decimal display rounding used for computed
// grade points; the underlying report keeps full precision.
func formatDerived(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
