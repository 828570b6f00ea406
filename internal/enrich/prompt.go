package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospector/internal/model"
)

// BuildPrecheckPrompt asks for a bare Yes/No on information quality.
func BuildPrecheckPrompt(rec *model.BusinessRecord) string {
	var b strings.Builder
	b.WriteString("Evaluate if this company has reliable business information for B2B prospecting.\n\n")
	b.WriteString("Company:\n")
	fmt.Fprintf(&b, "- Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "- City/State: %s, %s\n", rec.City, rec.State)
	fmt.Fprintf(&b, "- Keyword/Industry signal: %s\n", rec.KeywordUsed)
	fmt.Fprintf(&b, "- Rating/reviews: %.1f (%d)\n", rec.RatingValue(), rec.ReviewCountValue())
	fmt.Fprintf(&b, "- Types: %s\n\n", rec.CategoryTags)
	b.WriteString("Does this company have reliable business information for B2B sales prospecting?\n\n")
	b.WriteString(`Answer with only "Yes" or "No".`)
	return b.String()
}

// BuildEvaluationPrompt asks for the four-labeled-line structured assessment.
// The site excerpt is optional; "N/A" stands in when none was fetched.
func BuildEvaluationPrompt(rec *model.BusinessRecord, siteExcerpt string) string {
	if siteExcerpt == "" {
		siteExcerpt = "N/A"
	}

	var b strings.Builder
	b.WriteString("Evaluate this company as a prospect for compliance-driven, mission/safety-critical software services.\n\n")
	b.WriteString("Company:\n")
	fmt.Fprintf(&b, "- Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "- City/State: %s, %s\n", rec.City, rec.State)
	fmt.Fprintf(&b, "- Keyword/Industry signal: %s\n", rec.KeywordUsed)
	fmt.Fprintf(&b, "- Website: %s\n", rec.Website)
	fmt.Fprintf(&b, "- Rating/reviews: %.1f (%d)\n", rec.RatingValue(), rec.ReviewCountValue())
	fmt.Fprintf(&b, "- Types: %s\n\n", rec.CategoryTags)
	fmt.Fprintf(&b, "Website excerpt (if any):\n%s\n\n", siteExcerpt)
	b.WriteString(`You must return EXACTLY these fields in this format:

ai_fit_category: [High/Medium/Low] with one-sentence justification
ai_reasoning: [Yes/No] with short explanation
ai_people_assessment: [summary of leadership/hiring signals or "Not enough data"]
ai_revenue_assessment: [Early-stage/Small (<$5M)/Mid ($5-50M)/Large ($50M+)/Unknown based on size signals]

Example format:
ai_fit_category: High: fits ICP due to medical device manufacturing focus and US presence
ai_reasoning: Yes: operates in medical device manufacturing in the US with regulatory compliance needs
ai_people_assessment: Strong leadership team with technical backgrounds, active LinkedIn presence
ai_revenue_assessment: Mid ($5-50M): established company with multiple locations and strong online presence`)
	return b.String()
}
