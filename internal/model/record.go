// Package model defines the data types shared across the prospecting funnel.
package model

// FitCategory is the score-derived fit bucket assigned by categorization.
// It is a distinct axis from AIFitCategory, which is the model's own judgment.
type FitCategory string

const (
	HighFit   FitCategory = "High Fit"
	MediumFit FitCategory = "Medium Fit"
	LowFit    FitCategory = "Low Fit"
)

// AIFitCategory is the fit judgment parsed from the model's evaluation text.
type AIFitCategory string

const (
	AIFitHigh    AIFitCategory = "High"
	AIFitMedium  AIFitCategory = "Medium"
	AIFitLow     AIFitCategory = "Low"
	AIFitUnknown AIFitCategory = "Unknown"
)

// BusinessRecord is one discovered candidate company. It is created once by
// discovery and mutated in place as it moves through the funnel; a dropped
// record simply does not propagate to the next stage.
type BusinessRecord struct {
	// Identity and descriptive fields, set at discovery.
	PlaceID      string `json:"place_id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	CategoryTags string `json:"types"`        // comma-joined category labels as delivered
	KeywordUsed  string `json:"keyword_used"` // search keyword provenance, not a property of the business

	// Popularity signals. Nil means the places API returned nothing;
	// readers coerce nil to zero rather than fail.
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`

	// Enrichment fields, populated by later stages.
	Website             string             `json:"website,omitempty"`
	Phone               string             `json:"phone,omitempty"`
	WebsiteValid        bool               `json:"website_valid,omitempty"`
	AIEvaluation        string             `json:"ai_evaluation,omitempty"`
	AIFitCategory       AIFitCategory      `json:"ai_fit_category,omitempty"`
	AIReasoning         string             `json:"ai_reasoning,omitempty"`
	AIPeopleAssessment  string             `json:"ai_people_assessment,omitempty"`
	AIRevenueAssessment string             `json:"ai_revenue_assessment,omitempty"`
	ICPScore            float64            `json:"icp_score,omitempty"`
	ScoreBreakdown      map[string]float64 `json:"score_breakdown,omitempty"`
	FitCategory         FitCategory        `json:"fit_category,omitempty"`
}

// RatingValue returns the rating, coercing an absent value to 0.
func (r *BusinessRecord) RatingValue() float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

// ReviewCountValue returns the review count, coercing an absent value to 0.
func (r *BusinessRecord) ReviewCountValue() int {
	if r.ReviewCount == nil {
		return 0
	}
	return *r.ReviewCount
}

// fitOrdinals maps fit labels to sort ordinals. High=3, Medium=2, Low=1;
// anything else (Unknown or unset) sorts as 0.
var fitOrdinals = map[string]int{
	string(HighFit):     3,
	string(MediumFit):   2,
	string(LowFit):      1,
	string(AIFitHigh):   3,
	string(AIFitMedium): 2,
	string(AIFitLow):    1,
}

// FitOrdinal returns the ranking ordinal for a record. The score-derived
// FitCategory wins when set; otherwise the model's AIFitCategory is used.
func (r *BusinessRecord) FitOrdinal() int {
	if r.FitCategory != "" {
		return fitOrdinals[string(r.FitCategory)]
	}
	return fitOrdinals[string(r.AIFitCategory)]
}
