package server

import (
	"embed"
	"net/http"

	"github.com/flosch/pongo2/v6"
	"golang.org/x/exp/slog"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	layoutTemplate       = mustTemplate("layout.html")
	cardTemplate         = mustTemplate("card.html")
	transactionsTemplate = mustTemplate("transactions.html")
	notFoundTemplate     = mustTemplate("notfound.html")
)

func mustTemplate(name string) *pongo2.Template {
	data, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(err)
	}
	return pongo2.Must(pongo2.FromString(string(data)))
}

// page carries the layout values shared by every HTML response.
type page struct {
	Title   string
	Refresh int // seconds; 0 disables the meta refresh
}

// render executes tpl with data and wraps the result in the layout. Pending
// notifications are drained into the page as flash messages.
func (h *handlers) render(w http.ResponseWriter, status int, tpl *pongo2.Template, p page, data pongo2.Context) {
	if data == nil {
		data = pongo2.Context{}
	}
	body, err := tpl.Execute(data)
	if err != nil {
		h.renderError(w, err)
		return
	}

	data["body"] = body
	data["title"] = p.Title
	data["refresh"] = p.Refresh
	data["flashes"] = h.flashes.Drain()

	out, err := layoutTemplate.ExecuteBytes(data)
	if err != nil {
		h.renderError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out)
}

func (h *handlers) renderError(w http.ResponseWriter, err error) {
	h.logger.Error("rendering template", slog.Any("err", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
