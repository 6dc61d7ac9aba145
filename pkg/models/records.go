package models

// CandidateRecord is the unit emitted by the record extractor. It mirrors an
// untrusted language-model reply, so Score and Credit stay untyped here and
// malformed values are permitted; numeric validation happens in the
// aggregator, which drops records it cannot coerce.
type CandidateRecord struct {
	Subject string      `json:"subject"`
	Score   interface{} `json:"score"`
	Credit  interface{} `json:"credit"`
}

// ValidRecord is a CandidateRecord that survived cleaning: subject non-empty,
// score and credit coerced to numbers, annotated with the derived grade point
// and its credit-weighted contribution.
type ValidRecord struct {
	Subject       string  `json:"subject"`
	Score         float64 `json:"score"`
	Credit        float64 `json:"credit"`
	GradePoint    float64 `json:"grade_point"`
	WeightedPoint float64 `json:"weighted_point"`
}

// GpaReport is the terminal artifact of one aggregation run. Immutable once
// computed; Records preserve post-dedup input order.
type GpaReport struct {
	FinalGPA        float64       `json:"final_gpa"`
	Records         []ValidRecord `json:"records"`
	ImagesProcessed int           `json:"images_processed"`
	CandidateCount  int           `json:"candidate_count"`

	// Per-image failures that degraded the run (OCR errors and the like).
	Errors []string `json:"errors,omitempty"`
}
