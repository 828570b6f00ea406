package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

func writeXLSX(path string, records []*model.BusinessRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Prospects")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().Value = col
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, val := range Row(rec) {
			row.AddCell().Value = val
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
