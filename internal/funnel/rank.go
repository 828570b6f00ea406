package funnel

import (
	"sort"

	"github.com/sells-group/prospector/internal/model"
)

// Rank sorts records in place by fit ordinal descending, then rating
// descending. The sort is stable: discovery order carries weak provenance
// signal, so equal-key records keep their relative position.
func Rank(records []*model.BusinessRecord) []*model.BusinessRecord {
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].FitOrdinal(), records[j].FitOrdinal()
		if oi != oj {
			return oi > oj
		}
		return records[i].RatingValue() > records[j].RatingValue()
	})
	return records
}
