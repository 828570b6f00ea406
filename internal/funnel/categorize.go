package funnel

import (
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/model"
)

// Categorize partitions scored records into fit buckets by descending cut
// points, checked high then medium then low, inclusive. Records below the
// low cut are dropped entirely. Insertion order is preserved within each
// bucket, and each survivor has its FitCategory set to match.
func Categorize(records []*model.BusinessRecord, thresholds config.FitThresholds) (high, medium, low []*model.BusinessRecord) {
	for _, rec := range records {
		switch {
		case rec.ICPScore >= thresholds.HighFit:
			rec.FitCategory = model.HighFit
			high = append(high, rec)
		case rec.ICPScore >= thresholds.MediumFit:
			rec.FitCategory = model.MediumFit
			medium = append(medium, rec)
		case rec.ICPScore >= thresholds.LowFit:
			rec.FitCategory = model.LowFit
			low = append(low, rec)
		}
		// Below the low threshold the record carries no fit category.
	}

	zap.L().Info("fit categorization complete",
		zap.Int("high_fit", len(high)),
		zap.Int("medium_fit", len(medium)),
		zap.Int("low_fit", len(low)),
	)
	return high, medium, low
}
