// Package txtable turns a page of transactions into display rows shared by
// the terminal table, the dashboard and the exporters.
package txtable

import (
	"fmt"
	"image/color"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/model"
)

// Header is the column order of every rendering.
var Header = []string{"Amount", "Currency", "Cardholder", "Status", "Created"}

// StatusColumn is the index of the status cell, drawn as a badge.
const StatusColumn = 3

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatAmount renders an amount with en-US grouping and exactly two
// decimals: 1234.5 becomes "1,234.50".
func FormatAmount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatDate renders a created timestamp as "Jan 2, 2006". Values that do
// not parse are returned unchanged.
func FormatDate(created string) string {
	t, err := model.ParseTimestamp(created)
	if err != nil {
		return created
	}
	return t.Format("Jan 2, 2006")
}

// Badge is the colour pair of a status pill.
type Badge struct {
	Name string
	Fg   color.RGBA
	Bg   color.RGBA
}

// hex renders c as a CSS colour.
func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// FgHex is the text colour as CSS.
func (b Badge) FgHex() string { return hex(b.Fg) }

// BgHex is the background colour as CSS.
func (b Badge) BgHex() string { return hex(b.Bg) }

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

var (
	neutral = Badge{Name: "gray", Fg: rgb(0x1f2937), Bg: rgb(0xf3f4f6)}

	badges = map[model.Status]Badge{
		model.StatusSucceeded: {Name: "green", Fg: rgb(0x166534), Bg: rgb(0xdcfce7)},
		model.StatusPending:   {Name: "yellow", Fg: rgb(0x854d0e), Bg: rgb(0xfef9c3)},
		model.StatusCanceled:  neutral,
		model.StatusFailed:    {Name: "red", Fg: rgb(0x991b1b), Bg: rgb(0xfee2e2)},
		model.StatusRefunded:  {Name: "purple", Fg: rgb(0x6b21a8), Bg: rgb(0xf3e8ff)},
		model.StatusDisputed:  {Name: "orange", Fg: rgb(0x9a3412), Bg: rgb(0xffedd5)},
	}
)

// StatusBadge returns the badge colours for s. Unknown statuses are gray.
func StatusBadge(s model.Status) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return neutral
}

// Row is one formatted transaction.
type Row struct {
	Amount     string
	Currency   string
	Cardholder string
	Status     model.Status
	Created    string
	Badge      Badge
}

// Cells returns the row in Header order.
func (r Row) Cells() []string {
	return []string{r.Amount, r.Currency, r.Cardholder, string(r.Status), r.Created}
}

// NewRow formats one transaction.
func NewRow(t model.Transaction) Row {
	return Row{
		Amount:     FormatAmount(t.Amount),
		Currency:   t.Currency,
		Cardholder: t.Cardholder,
		Status:     t.Status,
		Created:    FormatDate(t.Created),
		Badge:      StatusBadge(t.Status),
	}
}

// Table is a rendered page: rows plus the pagination summary.
type Table struct {
	Rows    []Row
	Summary string
}

// New formats the visible page.
func New(p filter.Page) Table {
	rows := make([]Row, 0, len(p.Items))
	for _, t := range p.Items {
		rows = append(rows, NewRow(t))
	}
	return Table{Rows: rows, Summary: p.Summary()}
}

// WriteText prints the table with aligned columns followed by the summary.
func (t Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeLine := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, c)
		}
		fmt.Fprintln(tw)
	}

	writeLine(Header)
	for _, r := range t.Rows {
		writeLine(r.Cells())
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	if _, err := fmt.Fprintln(w, t.Summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
