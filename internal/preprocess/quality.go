package preprocess

import "image"

// QualityAssessment carries the pre-OCR readability signals for one image.
// These never block the pipeline; they only drive log warnings so users can
// tell why a blurry or underexposed screenshot produced garbage text.
type QualityAssessment struct {
	Brightness   float64
	LaplacianVar float64
	TooDark      bool
	TooBright    bool
	Blurry       bool
}

const (
	minBrightness = 80.0
	maxBrightness = 220.0
	minSharpness  = 100.0
)

// AssessForOCR computes brightness and sharpness metrics on a grayscale
// rendering of the image.
func AssessForOCR(gray *image.Gray) QualityAssessment {
	brightness := averageBrightness(gray)
	variance := laplacianVariance(gray)

	return QualityAssessment{
		Brightness:   brightness,
		LaplacianVar: variance,
		TooDark:      brightness < minBrightness,
		TooBright:    brightness > maxBrightness,
		Blurry:       variance < minSharpness,
	}
}

func averageBrightness(gray *image.Gray) float64 {
	if len(gray.Pix) == 0 {
		return 0
	}
	var total float64
	for _, v := range gray.Pix {
		total += float64(v)
	}
	return total / float64(len(gray.Pix))
}

// laplacianVariance measures sharpness with a 4-neighbor Laplacian kernel;
// low variance indicates a blurry image.
func laplacianVariance(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var sum, sumSq float64
	kernel := [3][3]int{{0, 1, 0}, {1, -4, 1}, {0, 1, 0}}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var val int
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					pixel := int(gray.GrayAt(bounds.Min.X+x+kx, bounds.Min.Y+y+ky).Y)
					val += pixel * kernel[ky+1][kx+1]
				}
			}
			fVal := float64(val)
			sum += fVal
			sumSq += fVal * fVal
		}
	}

	n := float64((width - 2) * (height - 2))
	if n <= 0 {
		return 0
	}
	mean := sum / n
	return (sumSq / n) - (mean * mean)
}
