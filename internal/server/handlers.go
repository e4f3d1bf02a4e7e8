package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"github.com/cardview-dev/cardview/internal/cardview"
	"github.com/cardview-dev/cardview/internal/export"
	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/model"
	"github.com/cardview-dev/cardview/internal/notify"
	"github.com/cardview-dev/cardview/internal/source"
	"github.com/cardview-dev/cardview/internal/txtable"
)

// Query parameters of the transaction views.
const (
	paramSearch = "search"
	paramStatus = "status"
	paramMin    = "min"
	paramMax    = "max"
	paramStart  = "start"
	paramEnd    = "end"
	paramPage   = "page"
)

type handlers struct {
	logger  *slog.Logger
	client  *source.Client
	view    *cardview.View
	flashes *notify.Queue
	exports *export.Registry
}

func (h *handlers) loadCard(ctx context.Context) *model.Card {
	return source.NewResource(h.logger, source.EndpointCard, h.client.Card).Load(ctx)
}

func (h *handlers) loadTransactions(ctx context.Context) []model.Transaction {
	return source.NewResource(h.logger, source.EndpointTransactions, h.client.Transactions).Load(ctx)
}

// cardData is the card page's view of cardview.View.
type cardData struct {
	Loaded     bool
	Name       string
	Number     string
	Expiry     string
	ExpiryFull string
	Brand      string
	CVV        string
	Revealed   bool
}

func (h *handlers) cardPage(w http.ResponseWriter, r *http.Request) {
	h.view.SetCard(h.loadCard(r.Context()))

	v := h.view
	data := cardData{
		Loaded:     v.Loaded(),
		Name:       v.Name(),
		Number:     v.Number(),
		Expiry:     v.Expiry(),
		ExpiryFull: v.ExpiryFull(),
		Brand:      v.Brand(),
		CVV:        v.CVV(),
		Revealed:   v.CVVRevealed(),
	}

	p := page{Title: "Card"}
	if data.Revealed {
		// Reload just after the reveal expires so the mask comes back.
		p.Refresh = v.RevealTimeout() + 1
	}
	h.render(w, http.StatusOK, cardTemplate, p, pongo2.Context{"card": data})
}

func (h *handlers) toggleCVV(w http.ResponseWriter, r *http.Request) {
	state := h.view.ToggleCVV()
	h.logger.Debug("cvv toggled", slog.String("state", state.String()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handlers) cardAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	if !h.view.Action(action) {
		h.notFound(w, r)
		return
	}
	h.logger.Info("card action", slog.String("action", action))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// queryState reads the filter criteria and page number from a query string.
// A missing or malformed page is page 1.
func queryState(q url.Values) *filter.State {
	c := filter.Criteria{
		Search:    q.Get(paramSearch),
		Status:    q.Get(paramStatus),
		MinAmount: q.Get(paramMin),
		MaxAmount: q.Get(paramMax),
		StartDate: q.Get(paramStart),
		EndDate:   q.Get(paramEnd),
	}
	n, err := strconv.Atoi(q.Get(paramPage))
	if err != nil {
		n = 1
	}
	return filter.NewStateFrom(c, n)
}

// encodeState is the inverse of queryState. Empty fields and page 1 are omitted.
func encodeState(c filter.Criteria, n int) string {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(paramSearch, c.Search)
	set(paramStatus, c.Status)
	set(paramMin, c.MinAmount)
	set(paramMax, c.MaxAmount)
	set(paramStart, c.StartDate)
	set(paramEnd, c.EndDate)
	if n > 1 {
		q.Set(paramPage, strconv.Itoa(n))
	}
	return q.Encode()
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

// rowData is one table row with the badge colours resolved to CSS.
type rowData struct {
	Amount     string
	Currency   string
	Cardholder string
	Status     string
	Created    string
	BadgeFg    string
	BadgeBg    string
}

func (h *handlers) transactionsPage(w http.ResponseWriter, r *http.Request) {
	state := queryState(r.URL.Query())
	p := state.View(h.loadTransactions(r.Context()))
	c := state.Criteria()

	tbl := txtable.New(p)
	rows := make([]rowData, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		rows = append(rows, rowData{
			Amount:     row.Amount,
			Currency:   row.Currency,
			Cardholder: row.Cardholder,
			Status:     string(row.Status),
			Created:    row.Created,
			BadgeFg:    row.Badge.FgHex(),
			BadgeBg:    row.Badge.BgHex(),
		})
	}

	statuses := make([]string, 0, len(model.Statuses))
	for _, s := range model.Statuses {
		statuses = append(statuses, string(s))
	}

	data := pongo2.Context{
		"criteria":   c,
		"statuses":   statuses,
		"header":     txtable.Header,
		"rows":       rows,
		"summary":    tbl.Summary,
		"page":       max(p.Number, 1),
		"totalPages": max(p.TotalPages, 1),
		"resetURL":   withQuery("/transactions", encodeState(c.Reset(), 1)),
		"exportURL":  withQuery("/transactions/export."+export.DefaultFormat, encodeState(c, p.Number)),
		"prevURL":    "",
		"nextURL":    "",
	}
	if p.HasPrev() {
		data["prevURL"] = withQuery("/transactions", encodeState(c, p.Number-1))
	}
	if p.HasNext() {
		data["nextURL"] = withQuery("/transactions", encodeState(c, p.Number+1))
	}

	h.render(w, http.StatusOK, transactionsTemplate, page{Title: "Transactions"}, data)
}

func (h *handlers) exportTransactions(w http.ResponseWriter, r *http.Request) {
	e, err := h.exports.Get(chi.URLParam(r, "format"))
	if err != nil {
		h.notFound(w, r)
		return
	}

	state := queryState(r.URL.Query())
	p := state.View(h.loadTransactions(r.Context()))

	var buf bytes.Buffer
	if err := e.Export(&buf, p); err != nil {
		h.logger.Error("exporting transactions", slog.String("format", e.Format()), slog.Any("err", err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", e.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(e)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// apiCard is the card as served by the JSON API. The CVC is never included.
type apiCard struct {
	CardholderName string `json:"cardholderName"`
	Last4          string `json:"last4"`
	ExpiryMonth    int    `json:"expiryMonth"`
	ExpiryYear     int    `json:"expiryYear"`
	Brand          string `json:"brand"`
}

// apiPage is one page of the JSON transaction listing.
type apiPage struct {
	Transactions []model.Transaction `json:"transactions"`
	CurrentPage  int                 `json:"currentPage"`
	PageSize     int                 `json:"pageSize"`
	TotalItems   int                 `json:"totalItems"`
	TotalPages   int                 `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *handlers) apiCard(w http.ResponseWriter, r *http.Request) {
	card := h.loadCard(r.Context())
	if card == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "card details unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, apiCard{
		CardholderName: card.CardholderName,
		Last4:          card.Last4,
		ExpiryMonth:    card.ExpiryMonth,
		ExpiryYear:     card.ExpiryYear,
		Brand:          card.Brand,
	})
}

func (h *handlers) apiTransactions(w http.ResponseWriter, r *http.Request) {
	state := queryState(r.URL.Query())
	p := state.View(h.loadTransactions(r.Context()))

	items := p.Items
	if items == nil {
		items = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, apiPage{
		Transactions: items,
		CurrentPage:  p.Number,
		PageSize:     filter.PageSize,
		TotalItems:   p.TotalItems,
		TotalPages:   p.TotalPages,
	})
}

func (h *handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, notFoundTemplate, page{Title: "404 Not Found"}, nil)
}
