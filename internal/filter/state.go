package filter

import "github.com/cardview-dev/cardview/internal/model"

// State is the transaction list's view state: the criteria being edited and
// the page being shown. Every criteria change returns the list to page 1.
type State struct {
	criteria Criteria
	page     int
}

// NewState returns a state on page 1 with no criteria.
func NewState() *State {
	return &State{page: 1}
}

// NewStateFrom returns a state showing page with the given criteria.
func NewStateFrom(c Criteria, page int) *State {
	if page < 1 {
		page = 1
	}
	return &State{criteria: c, page: page}
}

// Criteria returns the current criteria.
func (s *State) Criteria() Criteria { return s.criteria }

// Page returns the requested page number.
func (s *State) Page() int { return s.page }

func (s *State) update(c Criteria) {
	s.criteria = c
	s.page = 1
}

// SetSearch replaces the search text.
func (s *State) SetSearch(v string) {
	c := s.criteria
	c.Search = v
	s.update(c)
}

// ClearSearch empties the search text and leaves the filters alone.
func (s *State) ClearSearch() { s.SetSearch("") }

// SetStatus sets the exact-status filter; "" means all statuses.
func (s *State) SetStatus(v string) {
	c := s.criteria
	c.Status = v
	s.update(c)
}

// SetMinAmount sets the inclusive lower amount bound.
func (s *State) SetMinAmount(v string) {
	c := s.criteria
	c.MinAmount = v
	s.update(c)
}

// SetMaxAmount sets the inclusive upper amount bound.
func (s *State) SetMaxAmount(v string) {
	c := s.criteria
	c.MaxAmount = v
	s.update(c)
}

// SetStartDate sets the inclusive lower date bound.
func (s *State) SetStartDate(v string) {
	c := s.criteria
	c.StartDate = v
	s.update(c)
}

// SetEndDate sets the inclusive upper date bound.
func (s *State) SetEndDate(v string) {
	c := s.criteria
	c.EndDate = v
	s.update(c)
}

// ResetFilters clears the structured filters; the search text survives.
func (s *State) ResetFilters() {
	s.update(s.criteria.Reset())
}

// Prev moves one page back, never below page 1.
func (s *State) Prev() {
	s.page = max(1, s.page-1)
}

// Next moves one page forward, never past the last page of total items.
func (s *State) Next(total int) {
	s.page = min(lastPage(total), s.page+1)
}

// GoTo jumps to page, clamped to the pages available for total items.
func (s *State) GoTo(page, total int) {
	s.page = clamp(page, total)
}

// View filters txns, clamps the current page to the filtered set and returns
// that page.
func (s *State) View(txns []model.Transaction) Page {
	filtered := Apply(txns, s.criteria)
	s.page = clamp(s.page, len(filtered))
	return Paginate(filtered, s.page)
}

func lastPage(total int) int {
	return max(1, TotalPages(total))
}

func clamp(page, total int) int {
	return min(max(1, page), lastPage(total))
}
