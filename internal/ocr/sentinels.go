package ocr

import (
	"strings"

	"go-transcript-gpa/pkg/models"
)

// Recognition failures surface as marked text values, never as panics or
// returned errors: downstream stages must inspect the text for a sentinel
// before treating it as recognizable content. The language-pack sentinel is
// kept distinct from the generic ones so callers can give users
// language-pack-specific guidance.
const (
	SentinelEngineNotFound      = "OCR-ERROR[engine-not-found]:"
	SentinelLanguagePackMissing = "OCR-ERROR[language-pack-missing]:"
	SentinelRecognitionFailed   = "OCR-ERROR[recognition-failed]:"

	sentinelPrefix = "OCR-ERROR["
)

// IsErrorText reports whether the text carries any OCR error marker.
func IsErrorText(text string) bool {
	return strings.Contains(text, sentinelPrefix)
}

// IsEngineNotFound reports whether the text carries the engine-not-found
// marker.
func IsEngineNotFound(text string) bool {
	return strings.Contains(text, SentinelEngineNotFound)
}

// IsLanguagePackMissing reports whether the text carries the
// language-pack-missing marker.
func IsLanguagePackMissing(text string) bool {
	return strings.Contains(text, SentinelLanguagePackMissing)
}

// IsEngineError reports whether the text carries a marker fatal enough to
// abort the image's pipeline (missing engine or missing script pack).
func IsEngineError(text string) bool {
	return IsEngineNotFound(text) || IsLanguagePackMissing(text)
}

// errorRawText wraps a sentinel and detail message into a RawText value.
func errorRawText(sentinel, detail string) models.RawText {
	return models.RawText{
		Segments: []models.PassText{
			{Source: "error", Body: sentinel + " " + detail},
		},
	}
}
