// Package export writes the ranked prospect table to CSV or XLSX.
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/funnel"
	"github.com/sells-group/prospector/internal/model"
)

// Columns is the fixed output schema, in order.
var Columns = []string{
	"place_id", "name", "address", "city", "state", "keywords", "types",
	"rating", "website", "phone", "ai_evaluation", "ai_fit_category",
	"ai_reasoning", "ai_people_assessment", "ai_revenue_assessment",
}

// Row maps a record onto the fixed schema. Absent values serialize as empty
// strings, never a "None" placeholder.
func Row(rec *model.BusinessRecord) []string {
	rating := ""
	if rec.Rating != nil {
		rating = strconv.FormatFloat(*rec.Rating, 'f', -1, 64)
	}
	return []string{
		rec.PlaceID,
		rec.Name,
		rec.Address,
		rec.City,
		rec.State,
		rec.KeywordUsed,
		rec.CategoryTags,
		rating,
		rec.Website,
		rec.Phone,
		rec.AIEvaluation,
		string(rec.AIFitCategory),
		rec.AIReasoning,
		rec.AIPeopleAssessment,
		rec.AIRevenueAssessment,
	}
}

// Save ranks (when configured) and writes the records in the configured
// format. The filename carries the configured prefix and a generation
// timestamp. Zero records writes nothing and returns "".
func Save(records []*model.BusinessRecord, cfg config.OutputConfig, now time.Time) (string, error) {
	if len(records) == 0 {
		zap.L().Warn("export: no records to save")
		return "", nil
	}

	if cfg.SortByFitCategory {
		if cfg.SortByRating {
			funnel.Rank(records)
		} else {
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].FitOrdinal() > records[j].FitOrdinal()
			})
		}
	}

	ext := "csv"
	if cfg.Format == "xlsx" {
		ext = "xlsx"
	}
	path := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.%s", cfg.FilenamePrefix, now.Format("20060102_150405"), ext))

	var err error
	if ext == "xlsx" {
		err = writeXLSX(path, records)
	} else {
		err = writeCSV(path, records)
	}
	if err != nil {
		return "", eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("results saved", zap.String("file", path), zap.Int("records", len(records)))
	return path, nil
}
