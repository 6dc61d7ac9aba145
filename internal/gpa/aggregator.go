// Package gpa turns the pooled candidate records from all processed images
// into a single weighted-average GPA plus the cleaned record table.
package gpa

import (
	"go-transcript-gpa/pkg/models"
)

// GradePoint maps a 0-100 score onto the grade-point scale: 50 -> 0.0,
// 100 -> 5.0. The map is linear and deliberately unclamped, so scores below
// 50 yield negative grade points and scores above 100 exceed 5.0.
func GradePoint(score float64) float64 {
	return (score - 50) / 10
}

// Aggregate cleans, deduplicates and aggregates candidate records into a
// final GPA. Records whose score or credit cannot be coerced to a number are
// dropped, not defaulted. Duplicate subjects keep the first occurrence in
// input order. The returned GPA is always finite: when every surviving
// record carries zero credit the result is 0.0 rather than a division by
// zero.
func Aggregate(records []models.CandidateRecord) (float64, []models.ValidRecord) {
	if len(records) == 0 {
		return 0.0, nil
	}

	seen := make(map[string]bool, len(records))
	valid := make([]models.ValidRecord, 0, len(records))

	for _, record := range records {
		if record.Subject == "" {
			continue
		}
		score, ok := models.CoerceNumber(record.Score)
		if !ok {
			continue
		}
		credit, ok := models.CoerceNumber(record.Credit)
		if !ok {
			continue
		}
		if seen[record.Subject] {
			continue
		}
		seen[record.Subject] = true

		gradePoint := GradePoint(score)
		valid = append(valid, models.ValidRecord{
			Subject:       record.Subject,
			Score:         score,
			Credit:        credit,
			GradePoint:    gradePoint,
			WeightedPoint: gradePoint * credit,
		})
	}

	if len(valid) == 0 {
		return 0.0, nil
	}

	var totalWeighted, totalCredit float64
	for _, record := range valid {
		totalWeighted += record.WeightedPoint
		totalCredit += record.Credit
	}

	if totalCredit == 0 {
		return 0.0, valid
	}
	return totalWeighted / totalCredit, valid
}
