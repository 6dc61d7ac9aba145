package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-transcript-gpa/pkg/models"
)

func sampleReport() *models.GpaReport {
	return &models.GpaReport{
		FinalGPA: 22.0 / 6.0,
		Records: []models.ValidRecord{
			{Subject: "高等数学", Score: 85, Credit: 4, GradePoint: 3.5, WeightedPoint: 14},
			{Subject: "大学英语", Score: 90, Credit: 2, GradePoint: 4, WeightedPoint: 8},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	data, err := WriteCSV(sampleReport())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "CSV must start with a UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"subject", "score", "credit", "grade_point", "weighted_point"}, rows[0])
	assert.Equal(t, []string{"高等数学", "85", "4", "3.5000", "14.0000"}, rows[1])
	assert.Equal(t, []string{"大学英语", "90", "2", "4.0000", "8.0000"}, rows[2])
}

func TestWriteCSV_EmptyReport(t *testing.T) {
	data, err := WriteCSV(&models.GpaReport{})
	require.NoError(t, err)
	// Header only
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	data, err := WriteXLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	gpa, err := f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "3.6667", gpa)

	subject, err := f.GetCellValue(sheet, "A4")
	require.NoError(t, err)
	assert.Equal(t, "高等数学", subject)

	header, err := f.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "subject", header)
}
