package contactfile

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enricher/internal/model"
)

// ReadCSV reads contacts from a CSV file with a header row.
func ReadCSV(path string) ([]model.ContactInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "contactfile: open csv")
	}
	defer f.Close() //nolint:errcheck

	return ParseCSV(f)
}

// ParseCSV reads contacts from CSV data with a header row.
func ParseCSV(r io.Reader) ([]model.ContactInfo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "contactfile: read csv row")
		}
		rows = append(rows, record)
	}
	return mapRows(rows)
}
