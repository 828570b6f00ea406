// Package funnel implements the deterministic filter, scoring, and ranking
// stages that narrow discovered businesses into a prioritized prospect list.
package funnel

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
)

// FilterNoise removes records matching an excluded category, an excluded name
// term, or falling below the minimum review count. The checks are ORed;
// matching is naive case-insensitive substring, deliberately kept identical
// to the upstream term lists' semantics. Survivor order is preserved.
func FilterNoise(records []*model.BusinessRecord, excludedTypes, negativeKeywords []string, minReviewCount int) (kept []*model.BusinessRecord, excluded int) {
	for _, rec := range records {
		if isNoise(rec, excludedTypes, negativeKeywords, minReviewCount) {
			excluded++
			continue
		}
		kept = append(kept, rec)
	}

	zap.L().Info("noise filter complete",
		zap.Int("excluded", excluded),
		zap.Int("remaining", len(kept)),
	)
	return kept, excluded
}

func isNoise(rec *model.BusinessRecord, excludedTypes, negativeKeywords []string, minReviewCount int) bool {
	tags := strings.ToLower(rec.CategoryTags)
	for _, t := range excludedTypes {
		if t != "" && strings.Contains(tags, strings.ToLower(t)) {
			return true
		}
	}

	name := strings.ToLower(rec.Name)
	for _, kw := range negativeKeywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return true
		}
	}

	// Absent review counts coerce to 0, so a positive minimum excludes them.
	return rec.ReviewCountValue() < minReviewCount
}
