// Package export writes the visible page of transactions to a file format.
package export

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cardview-dev/cardview/internal/filter"
)

// ErrUnknownFormat is returned by Registry.Get for a format with no exporter.
var ErrUnknownFormat = errors.New("unknown export format")

// DefaultFormat is the format of the dashboard's download button.
const DefaultFormat = "png"

// Exporter renders one page of transactions.
type Exporter interface {
	Format() string
	ContentType() string
	Export(w io.Writer, p filter.Page) error
}

// Filename is the default download name for an exporter: transactions.<format>.
func Filename(e Exporter) string {
	return "transactions." + e.Format()
}

// Registry holds named exporters.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry creates an empty exporter registry.
func NewRegistry() *Registry {
	return &Registry{exporters: make(map[string]Exporter)}
}

// Register adds an exporter. Panics on duplicate format.
func (r *Registry) Register(e Exporter) {
	key := strings.ToLower(e.Format())
	if _, ok := r.exporters[key]; ok {
		panic("duplicate export format: " + key)
	}
	r.exporters[key] = e
}

// Get returns the exporter for format.
func (r *Registry) Get(format string) (Exporter, error) {
	e, ok := r.exporters[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Formats lists the registered formats in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.exporters))
	for k := range r.exporters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in exporters.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PNGExporter{})
	r.Register(&CSVExporter{})
	r.Register(&PDFExporter{})
	return r
}
