package ocr

import (
	"strings"

	"github.com/arbovm/levenshtein"

	"go-transcript-gpa/pkg/models"
)

// passAgreement scores how closely the original and inverted passes agree.
// Strong disagreement usually means one rendering produced garbage, which is
// worth a log line but never blocks the pipeline.
func passAgreement(raw models.RawText) *models.PassAgreement {
	var original, inverted string
	for _, seg := range raw.Segments {
		switch seg.Source {
		case models.PassOriginal:
			original = seg.Body
		case models.PassInverted:
			inverted = seg.Body
		}
	}
	if strings.TrimSpace(original) == "" || strings.TrimSpace(inverted) == "" {
		return nil
	}

	a := normalizeWhitespace(original)
	b := normalizeWhitespace(inverted)

	distance := levenshtein.Distance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}

	similarity := 1.0
	if longest > 0 {
		similarity = 1.0 - float64(distance)/float64(longest)
		if similarity < 0 {
			similarity = 0
		}
	}

	return &models.PassAgreement{
		Similarity: similarity,
		Distance:   distance,
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
