package extractor

import (
	"math"

	"go-transcript-gpa/pkg/models"
)

// conventionalCredits are the credit values transcripts actually use. OCR
// frequently garbles the decimal ("4.0" read as "4.9" or "40"), so garbled
// values are snapped onto this grid instead of being trusted verbatim.
var conventionalCredits = []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0}

// CreditOverrides maps exact subject names to credit values fixed by policy
// regardless of what the noisy text suggests. Matching is exact string
// match, not normalized.
type CreditOverrides map[string]float64

// Lookup returns the fixed credit for a subject, if one is configured.
func (o CreditOverrides) Lookup(subject string) (float64, bool) {
	credit, ok := o[subject]
	return credit, ok
}

// SnapCredit maps a credit value onto the conventional grid. Values that are
// already clean half-step credits within the 0-6 domain pass through
// unchanged; zero stays zero, because a missing credit must never cause a
// subject to be dropped. Everything else snaps to the nearest conventional
// value, preferring the lower one on ties.
func SnapCredit(credit float64) float64 {
	if credit <= 0 {
		return 0
	}
	if credit <= 6 && math.Mod(credit*2, 1) == 0 {
		return credit
	}

	nearest := conventionalCredits[0]
	best := math.Abs(credit - nearest)
	for _, candidate := range conventionalCredits[1:] {
		if d := math.Abs(credit - candidate); d < best {
			best = d
			nearest = candidate
		}
	}
	return nearest
}

// ApplyCreditPolicy rewrites the credit field of each candidate record
// deterministically: configured subject overrides win outright, and any
// numeric credit is snapped to the conventional grid. Non-numeric credits
// are left untouched for the aggregator to drop. The input slice is not
// modified.
func ApplyCreditPolicy(records []models.CandidateRecord, overrides CreditOverrides) []models.CandidateRecord {
	if len(records) == 0 {
		return records
	}

	out := make([]models.CandidateRecord, len(records))
	copy(out, records)

	for i := range out {
		if fixed, ok := overrides.Lookup(out[i].Subject); ok {
			out[i].Credit = fixed
			continue
		}
		if credit, ok := models.CoerceNumber(out[i].Credit); ok {
			out[i].Credit = SnapCredit(credit)
		}
	}
	return out
}
