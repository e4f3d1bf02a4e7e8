package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/model"
)

// CSVHeader is the first line of a CSV export.
const CSVHeader = "amount,currency,cardholder,status,created"

const (
	numFields     = 5
	colAmount     = 0
	colCurrency   = 1
	colCardholder = 2
	colStatus     = 3
	colCreated    = 4
)

// MarshalTransaction converts a Transaction to a CSV row. Values are raw:
// the amount keeps its full precision and created its original text.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colAmount] = t.Amount.String()
	row[colCurrency] = t.Currency
	row[colCardholder] = t.Cardholder
	row[colStatus] = string(t.Status)
	row[colCreated] = t.Created
	return row
}

// CSVExporter writes the page as comma separated values.
type CSVExporter struct{}

func (e *CSVExporter) Format() string      { return "csv" }
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (e *CSVExporter) Export(w io.Writer, p filter.Page) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, t := range p.Items {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
