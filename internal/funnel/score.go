package funnel

import (
	"strings"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/model"
)

// Rule is a single additive scoring rule. Points are recorded in the score
// breakdown under Name when Match fires.
type Rule struct {
	Name   string
	Points float64
	Match  func(r *model.BusinessRecord) bool
}

// RuleGroup is an ordered list of rules where the first match wins; this
// expresses the else-if chains (rating tiers, industry-vs-size keywords).
// A group with a single rule is an independent additive rule.
type RuleGroup []Rule

// Profile is a named scoring rule set. The two funnel variants differ in
// weights and admitted rules but share the evaluation engine.
type Profile struct {
	Name     string
	Groups   []RuleGroup
	MinScore float64 // admission gate; only the legacy profile sets it
}

// Score populates ICPScore and ScoreBreakdown on the record from the profile
// rules and returns it. No other field is touched; the result is a pure
// function of the record fields and the profile.
func Score(rec *model.BusinessRecord, p Profile) *model.BusinessRecord {
	score := 0.0
	breakdown := make(map[string]float64)

	for _, group := range p.Groups {
		for _, rule := range group {
			if rule.Match(rec) {
				score += rule.Points
				breakdown[rule.Name] = rule.Points
				break
			}
		}
	}

	rec.ICPScore = score
	rec.ScoreBreakdown = breakdown
	return rec
}

// Admit scores every record with the profile and keeps those meeting its
// minimum. The legacy comprehensive flow gates on this before enrichment.
func Admit(records []*model.BusinessRecord, p Profile) []*model.BusinessRecord {
	var kept []*model.BusinessRecord
	for _, rec := range records {
		Score(rec, p)
		if rec.ICPScore >= p.MinScore {
			kept = append(kept, rec)
		}
	}
	return kept
}

// containsAnyFold reports whether the lowercased haystack contains any of the
// terms. Substring semantics, same as the noise filter.
func containsAnyFold(haystack string, terms []string) bool {
	h := strings.ToLower(haystack)
	for _, t := range terms {
		if t != "" && strings.Contains(h, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// WebsiteRequiredProfile builds the refined scoring profile, used after the
// website gate has run; website validity is worth points rather than assumed.
func WebsiteRequiredProfile(cfg config.ScoringConfig, usStates []string) Profile {
	w := cfg.WebsiteRequiredWeights
	rt := cfg.RatingThresholds
	states := stateSet(usStates)

	return Profile{
		Name: "website_required",
		Groups: []RuleGroup{
			{{
				Name:   "industry_match",
				Points: w.IndustryMatch,
				Match: func(r *model.BusinessRecord) bool {
					return containsAnyFold(r.KeywordUsed, cfg.CoreTerms)
				},
			}},
			{{
				Name:   "website_required",
				Points: w.WebsiteRequired,
				Match:  func(r *model.BusinessRecord) bool { return r.WebsiteValid },
			}},
			{
				{
					Name:   "high_rating",
					Points: w.HighRating,
					Match: func(r *model.BusinessRecord) bool {
						return r.RatingValue() >= rt.HighRating && r.ReviewCountValue() >= rt.HighReviews
					},
				},
				{
					Name:   "good_rating",
					Points: w.GoodRating,
					Match: func(r *model.BusinessRecord) bool {
						return r.RatingValue() >= rt.GoodRating && r.ReviewCountValue() >= rt.GoodReviews
					},
				},
			},
			{{
				Name:   "size_indicator",
				Points: w.SizeIndicator,
				Match: func(r *model.BusinessRecord) bool {
					return containsAnyFold(r.KeywordUsed, cfg.SizeTerms)
				},
			}},
			{{
				Name:   "us_location",
				Points: w.USLocation,
				Match:  func(r *model.BusinessRecord) bool { return states[r.State] },
			}},
			{{
				Name:   "business_type",
				Points: w.BusinessType,
				Match: func(r *model.BusinessRecord) bool {
					tags := strings.ToLower(r.CategoryTags)
					return strings.Contains(tags, "establishment") && strings.Contains(tags, "business")
				},
			}},
		},
	}
}

// LegacyProfile builds the comprehensive-flow admission profile. It scores in
// fractional points and differs from the refined profile on purpose: the
// rating tier ignores review counts and only fires when a rating is present,
// and the business-type check accepts either tag rather than both.
func LegacyProfile(cfg config.ScoringConfig, usStates []string) Profile {
	w := cfg.ICPWeights
	rt := cfg.RatingThresholds
	states := stateSet(usStates)

	return Profile{
		Name:     "legacy_icp",
		MinScore: cfg.MinICPScore,
		Groups: []RuleGroup{
			{{
				Name:   "us_location",
				Points: w.USLocation,
				Match:  func(r *model.BusinessRecord) bool { return states[r.State] },
			}},
			{
				{
					Name:   "high_rating",
					Points: w.HighRating,
					Match: func(r *model.BusinessRecord) bool {
						return r.Rating != nil && *r.Rating >= rt.HighRating
					},
				},
				{
					Name:   "good_rating",
					Points: w.GoodRating,
					Match: func(r *model.BusinessRecord) bool {
						return r.Rating != nil && *r.Rating >= rt.GoodRating
					},
				},
			},
			{{
				Name:   "business_type",
				Points: w.BusinessType,
				Match: func(r *model.BusinessRecord) bool {
					return containsAnyFold(r.CategoryTags, []string{"establishment", "business"})
				},
			}},
			{
				{
					Name:   "industry_keyword",
					Points: w.IndustryKeyword,
					Match: func(r *model.BusinessRecord) bool {
						return containsAnyFold(r.KeywordUsed, cfg.CoreTerms)
					},
				},
				{
					Name:   "size_keyword",
					Points: w.SizeKeyword,
					Match: func(r *model.BusinessRecord) bool {
						return containsAnyFold(r.KeywordUsed, cfg.SizeTerms)
					},
				},
			},
		},
	}
}

func stateSet(states []string) map[string]bool {
	set := make(map[string]bool, len(states))
	for _, s := range states {
		set[s] = true
	}
	return set
}
