// Package enrich implements the LLM pre-check gate, the structured
// evaluation stage, and the tolerant parsers for the model's free text.
package enrich

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// EvaluationFields holds the structured fields parsed from an evaluation
// response, with Found flags so callers can tell defaults from parsed values.
type EvaluationFields struct {
	FitCategory       model.AIFitCategory
	Reasoning         string
	PeopleAssessment  string
	RevenueAssessment string
}

// fitPriority is the order in which fit tokens are checked inside the
// ai_fit_category line. A response containing several tokens resolves to the
// first in this order; this mirrors upstream behavior rather than a verified
// design decision.
var fitPriority = []model.AIFitCategory{model.AIFitHigh, model.AIFitMedium, model.AIFitLow}

// ParseEvaluation parses the model's four-labeled-line evaluation into typed
// fields. It tolerates extra text, blank lines, scrambled order, and missing
// lines, filling documented defaults for anything absent. It never fails:
// empty input simply yields all defaults with ok=false.
func ParseEvaluation(text string) (EvaluationFields, bool) {
	fields := EvaluationFields{
		FitCategory:       model.AIFitUnknown,
		Reasoning:         "Not evaluated",
		PeopleAssessment:  "Not enough data",
		RevenueAssessment: "Unknown",
	}
	if text == "" {
		return fields, false
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "ai_fit_category:"):
			content := strings.TrimSpace(strings.TrimPrefix(line, "ai_fit_category:"))
			fields.FitCategory = parseFitCategory(content)
		case strings.HasPrefix(line, "ai_reasoning:"):
			fields.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "ai_reasoning:"))
		case strings.HasPrefix(line, "ai_people_assessment:"):
			fields.PeopleAssessment = strings.TrimSpace(strings.TrimPrefix(line, "ai_people_assessment:"))
		case strings.HasPrefix(line, "ai_revenue_assessment:"):
			fields.RevenueAssessment = strings.TrimSpace(strings.TrimPrefix(line, "ai_revenue_assessment:"))
		}
	}

	return fields, true
}

// parseFitCategory scans the line remainder for the fit tokens in priority
// order. The scan is case-sensitive substring matching.
func parseFitCategory(content string) model.AIFitCategory {
	for _, cat := range fitPriority {
		if strings.Contains(content, string(cat)) {
			return cat
		}
	}
	return model.AIFitUnknown
}

// Apply copies the parsed fields onto a record.
func (f EvaluationFields) Apply(rec *model.BusinessRecord) {
	rec.AIFitCategory = f.FitCategory
	rec.AIReasoning = f.Reasoning
	rec.AIPeopleAssessment = f.PeopleAssessment
	rec.AIRevenueAssessment = f.RevenueAssessment
}

var (
	prospectScorePattern = regexp.MustCompile(`(?i)prospect\s*score\s*[:\-]?\s*(\d{1,2})`)
	outOfTenPattern      = regexp.MustCompile(`\b(\d{1,2})\s*/\s*10\b`)
)

// ParseProspectScore extracts a 1-10 prospect score from free text via two
// fallback patterns ("prospect score: N", then "N/10"), clamped to [1, 10].
// Returns false when neither pattern matches.
func ParseProspectScore(text string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{prospectScorePattern, outOfTenPattern} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n < 1 {
			n = 1
		}
		if n > 10 {
			n = 10
		}
		return n, true
	}
	return 0, false
}
