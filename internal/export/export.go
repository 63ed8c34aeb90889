// Package export writes batch results as CSV, JSON, or XLSX.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadpilot/impressum-cli/internal/model"
)

var columns = []string{
	"url", "success", "first_name", "last_name", "email", "phone",
	"position", "company", "address", "confidence", "impressum_url", "error",
}

func rowValues(r model.Result) []string {
	return []string{
		r.URL,
		strconv.FormatBool(r.Success),
		r.FirstName,
		r.LastName,
		r.Email,
		r.Phone,
		r.Position,
		r.Company,
		r.Address,
		strconv.FormatFloat(r.Confidence, 'f', 2, 64),
		r.ImpressumURL,
		r.Error,
	}
}

// WriteCSV writes results as CSV with a header row.
func WriteCSV(w io.Writer, results []model.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range results {
		if err := cw.Write(rowValues(r)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", r.URL)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []model.Result{}
	}
	return eris.Wrap(enc.Encode(results), "export: write json")
}

// WriteXLSX writes results as a single-sheet workbook.
func WriteXLSX(w io.Writer, results []model.Result) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().SetString(col)
	}

	for _, r := range results {
		row := sheet.AddRow()
		row.AddCell().SetString(r.URL)
		row.AddCell().SetBool(r.Success)
		row.AddCell().SetString(r.FirstName)
		row.AddCell().SetString(r.LastName)
		row.AddCell().SetString(r.Email)
		row.AddCell().SetString(r.Phone)
		row.AddCell().SetString(r.Position)
		row.AddCell().SetString(r.Company)
		row.AddCell().SetString(r.Address)
		row.AddCell().SetFloatWithFormat(r.Confidence, "0.00")
		row.AddCell().SetString(r.ImpressumURL)
		row.AddCell().SetString(r.Error)
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}
