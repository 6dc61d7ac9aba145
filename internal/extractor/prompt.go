package extractor

import (
	"fmt"
	"sort"
	"strings"
)

// systemPrompt pins the model to raw JSON output.
const systemPrompt = "You are a data extraction assistant that outputs raw JSON only."

// buildExtractionPrompt embeds the annotated OCR text in a rule-bearing
// instruction. The text contains two labeled recognition passes over the
// same transcript, so the rules cover cross-pass merging as well as the
// usual OCR noise.
func buildExtractionPrompt(rawText string, overrides CreditOverrides) string {
	var sb strings.Builder

	sb.WriteString("Extract every course from the OCR text of an academic transcript below.\n")
	sb.WriteString("The text contains two labeled OCR passes over the same image; treat them as noisy duplicates of one transcript.\n\n")
	sb.WriteString("OCR text:\n")
	sb.WriteString(rawText)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("1. For each course extract \"subject\" (course name), \"score\" (final score) and \"credit\" (credit value).\n")
	sb.WriteString("2. The score is the largest number between 60 and 100 near the end of the course line. Ignore smaller interim figures on the same line such as 平时成绩 (usual grade), 期中 (midterm) and grade-point multipliers like 3.5 or 4.0.\n")
	sb.WriteString("3. Credits appear as patterns like \"3学分\" or \"3 credits\". If no credit is mentioned for a course, use 0 — never drop a course because its credit is missing.\n")
	sb.WriteString("4. The same course may appear in both passes. Merge duplicate courses into one entry, preferring whichever pass carries the most complete values for each field.\n")
	sb.WriteString("5. Fix obvious OCR garbling of course names using context.\n")

	rule := 6
	if len(overrides) > 0 {
		sb.WriteString(fmt.Sprintf("%d. The following courses always have these exact credits, regardless of what the text says:\n", rule))
		for _, subject := range sortedSubjects(overrides) {
			sb.WriteString(fmt.Sprintf("   - %s: %g\n", subject, overrides[subject]))
		}
		rule++
	}

	sb.WriteString(fmt.Sprintf("%d. Reply with a JSON list only — no Markdown fences, no explanations. Each item has exactly the keys \"subject\" (string), \"score\" (number) and \"credit\" (number).\n", rule))
	sb.WriteString(fmt.Sprintf("%d. If no valid course data is present, reply with [].\n", rule+1))
	sb.WriteString("\nExample reply:\n")
	sb.WriteString(`[{"subject": "高等数学", "score": 85, "credit": 4.0}, {"subject": "大学英语", "score": 90, "credit": 2.0}]`)

	return sb.String()
}

func sortedSubjects(overrides CreditOverrides) []string {
	subjects := make([]string, 0, len(overrides))
	for subject := range overrides {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects
}
