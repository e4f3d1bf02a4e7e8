package filter

import (
	"fmt"

	"github.com/cardview-dev/cardview/internal/model"
)

// PageSize is the number of transactions shown per page.
const PageSize = 10

// Page is one window of a filtered result set.
type Page struct {
	Items      []model.Transaction
	Number     int // 1-based
	TotalItems int
	TotalPages int
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate slices [(page-1)*PageSize, page*PageSize) out of items, clipped to
// the set. Pages outside the set are empty; callers that want clamping go
// through State.
func Paginate(items []model.Transaction, page int) Page {
	p := Page{
		Number:     page,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items)),
	}
	if page < 1 {
		return p
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return p
	}
	end := min(start+PageSize, len(items))
	p.Items = items[start:end]
	return p
}

// From is the 1-based position of the first item on the page, or 0 when the
// page is empty.
func (p Page) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*PageSize + 1
}

// To is the 1-based position of the last item on the page, or 0 when the page
// is empty.
func (p Page) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Summary is the "Showing X to Y of Z results" line.
func (p Page) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d results", p.From(), p.To(), p.TotalItems)
}
