package models

import (
	"fmt"
	"strings"
)

// Pass source tags for RawText segments.
const (
	PassOriginal = "original"
	PassInverted = "inverted"
)

// PassDelimiter separates labeled OCR pass segments in the combined text.
const PassDelimiter = "----- OCR PASS: %s -----"

// PassText is the output of a single OCR pass over one image variant.
type PassText struct {
	Source string `json:"source"`
	Body   string `json:"body"`
}

// PassAgreement measures how well the two OCR passes agree with each other.
// Similarity is a normalized edit-distance score in [0,1]; 1.0 means the
// passes produced identical text.
type PassAgreement struct {
	Similarity float64 `json:"similarity"`
	Distance   int     `json:"distance"`
}

// RawText is the ordered concatenation of OCR pass outputs for one image.
// It is consumed once by the record extractor and not persisted.
type RawText struct {
	Segments  []PassText     `json:"segments"`
	Agreement *PassAgreement `json:"agreement,omitempty"`
}

// Combined renders all segments into one annotated text blob, each segment
// labeled with its source pass and separated by a delimiter line, in the
// fixed segment order (original pass first).
func (r RawText) Combined() string {
	var sb strings.Builder
	for i, seg := range r.Segments {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf(PassDelimiter, seg.Source))
		sb.WriteString("\n")
		sb.WriteString(seg.Body)
	}
	return sb.String()
}

// IsEmpty reports whether no pass produced any text.
func (r RawText) IsEmpty() bool {
	for _, seg := range r.Segments {
		if strings.TrimSpace(seg.Body) != "" {
			return false
		}
	}
	return true
}
