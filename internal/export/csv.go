package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

func writeCSV(path string, records []*model.BusinessRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range records {
		if err := w.Write(Row(rec)); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush csv")
}
