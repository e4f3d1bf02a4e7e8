package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardview-dev/cardview/internal/config"
	"github.com/cardview-dev/cardview/internal/logging"
)

const cardJSON = `{"cardholderName":"JohnSmith","last4":"4242","expiryMonth":3,"expiryYear":2027,"cvc":"987","brand":"Visa"}`

// transactionsJSON builds n transactions alternating between two holders.
func transactionsJSON(n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		holder, status := "Jane Doe", "Succeeded"
		if i%2 == 1 {
			holder, status = "John Smith", "Pending"
		}
		fmt.Fprintf(&b, `{"amount":%d.5,"currency":"USD","cardholder":%q,"status":%q,"created":"2024-01-%02dT10:00:00Z"}`,
			i+1, holder, status, i%28+1)
	}
	b.WriteString("]")
	return b.String()
}

// syncBuffer is written by server goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	app     *App
	srv     *httptest.Server
	backend *httptest.Server
	logs    *syncBuffer
}

func newFixture(t *testing.T, txns int) *fixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/card", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cardJSON))
	})
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(transactionsJSON(txns)))
	})
	backend := httptest.NewServer(mux)
	t.Cleanup(backend.Close)

	cfg := config.Default()
	cfg.Endpoints.Card = backend.URL + "/card"
	cfg.Endpoints.Transactions = backend.URL + "/transactions"
	cfg.HTTP.Timeout = config.Duration(2 * time.Second)
	cfg.CVV.RevealTimeout = config.Duration(time.Hour)

	logs := &syncBuffer{}
	logger, err := logging.New(logs, "debug", "text")
	require.NoError(t, err)

	app := NewApp(logger, cfg)
	srv := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		srv.Close()
		app.handlers.view.Close()
	})

	return &fixture{app: app, srv: srv, backend: backend, logs: logs}
}

// noRedirect stops the client at the first response.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func post(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := noRedirect().Post(url, "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestLive(t *testing.T) {
	f := newFixture(t, 0)
	resp, _ := get(t, f.srv.URL+"/-/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCardPage(t *testing.T) {
	f := newFixture(t, 0)

	resp, body := get(t, f.srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "John Smith")
	assert.Contains(t, body, "•••• •••• •••• 4242")
	assert.Contains(t, body, "03/27")
	assert.Contains(t, body, "03/2027")
	assert.Contains(t, body, "•••")
	assert.NotContains(t, body, "987")
	assert.NotContains(t, body, `http-equiv="refresh"`)
}

func TestCardPage_Unavailable(t *testing.T) {
	f := newFixture(t, 0)
	f.app.handlers.client.CardURL = f.backend.URL + "/missing"

	resp, body := get(t, f.srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Card details unavailable")
	assert.Contains(t, f.logs.String(), "fetch failed")
}

func TestCardPage_RevealCVV(t *testing.T) {
	f := newFixture(t, 0)

	resp := post(t, f.srv.URL+"/card/cvv")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := get(t, f.srv.URL+"/")
	assert.Contains(t, body, "987")
	assert.Contains(t, body, `http-equiv="refresh" content="3601"`)

	post(t, f.srv.URL+"/card/cvv")
	_, body = get(t, f.srv.URL+"/")
	assert.NotContains(t, body, "987")
}

func TestCardActions(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		action string
		want   string
	}{
		{"freeze", "Card frozen successfully"},
		{"replace", "Card replacement requested"},
		{"cancel", "Card cancelled successfully"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			resp := post(t, f.srv.URL+"/card/"+tt.action)
			assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

			_, body := get(t, f.srv.URL+"/")
			assert.Contains(t, body, tt.want)

			// Flashes are shown once.
			_, body = get(t, f.srv.URL+"/")
			assert.NotContains(t, body, tt.want)
		})
	}

	resp := post(t, f.srv.URL+"/card/shred")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransactionsPage(t *testing.T) {
	f := newFixture(t, 23)

	resp, body := get(t, f.srv.URL+"/transactions")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Showing 1 to 10 of 23 results")
	assert.Contains(t, body, "Page 1 of 3")
	assert.Contains(t, body, `href="/transactions?page=2"`)
	assert.Contains(t, body, "Jan 1, 2024")
	assert.Contains(t, body, "#dcfce7", "succeeded badge colour")

	_, body = get(t, f.srv.URL+"/transactions?page=3")
	assert.Contains(t, body, "Showing 21 to 23 of 23 results")

	_, body = get(t, f.srv.URL+"/transactions?page=9")
	assert.Contains(t, body, "Showing 21 to 23 of 23 results", "out-of-range page clamps")
}

func TestTransactionsPage_Filters(t *testing.T) {
	f := newFixture(t, 23)

	_, body := get(t, f.srv.URL+"/transactions?search=JOHN")
	assert.Contains(t, body, "Showing 1 to 10 of 11 results")
	assert.NotContains(t, body, "Jane Doe")

	_, body = get(t, f.srv.URL+"/transactions?status=Pending&min=10&max=20")
	// Pending holds the even amounts 2.5, 4.5, ...; 10..20 keeps 10.5 to 18.5.
	assert.Contains(t, body, "Showing 1 to 5 of 5 results")

	_, body = get(t, f.srv.URL+"/transactions?start=2024-01-05&end=2024-01-08")
	// Created days 5, 6 and 7 fall in range; day 8 at 10:00 is after the end bound.
	assert.Contains(t, body, "Showing 1 to 3 of 3 results")

	_, body = get(t, f.srv.URL+"/transactions?search=nobody")
	assert.Contains(t, body, "Showing 0 to 0 of 0 results")
}

func TestExport(t *testing.T) {
	f := newFixture(t, 23)

	resp, err := http.Get(f.srv.URL + "/transactions/export.png?page=3")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="transactions.png"`, resp.Header.Get("Content-Disposition"))
	_, err = png.Decode(resp.Body)
	require.NoError(t, err)

	resp2, body := get(t, f.srv.URL+"/transactions/export.csv?search=john")
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Equal(t, "amount,currency,cardholder,status,created", lines[0])
	assert.Len(t, lines, 11)

	resp3, _ := get(t, f.srv.URL+"/transactions/export.docx")
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestAPI_Card(t *testing.T) {
	f := newFixture(t, 0)

	resp, body := get(t, f.srv.URL+"/api/card")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "cvc")
	assert.NotContains(t, body, "987")

	var card map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &card))
	assert.Equal(t, "JohnSmith", card["cardholderName"])
	assert.Equal(t, "4242", card["last4"])

	f.app.handlers.client.CardURL = f.backend.URL + "/missing"
	resp, _ = get(t, f.srv.URL+"/api/card")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_Transactions(t *testing.T) {
	f := newFixture(t, 23)

	resp, body := get(t, f.srv.URL+"/api/transactions?page=3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Transactions []map[string]any `json:"transactions"`
		CurrentPage  int              `json:"currentPage"`
		PageSize     int              `json:"pageSize"`
		TotalItems   int              `json:"totalItems"`
		TotalPages   int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Len(t, got.Transactions, 3)
	assert.Equal(t, 3, got.CurrentPage)
	assert.Equal(t, 10, got.PageSize)
	assert.Equal(t, 23, got.TotalItems)
	assert.Equal(t, 3, got.TotalPages)

	_, body = get(t, f.srv.URL+"/api/transactions?search=nobody")
	assert.Contains(t, body, `"transactions":[]`)
}

func TestAPI_CORS(t *testing.T) {
	f := newFixture(t, 0)

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/transactions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.test")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, 0)
	resp, body := get(t, f.srv.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "404 Not Found")
}

func TestRequestIDAndLogging(t *testing.T) {
	f := newFixture(t, 0)

	resp, _ := get(t, f.srv.URL+"/-/live")
	id := resp.Header.Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "request_id="+id)
	assert.Contains(t, f.logs.String(), "path=/-/live")

	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/-/live", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestApp_StartShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	app := NewApp(logging.Discard(), cfg)
	require.NoError(t, app.Start())

	resp, _ := get(t, "http://"+app.Addr+"/-/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app.Shutdown()
	_, err := http.Get("http://" + app.Addr + "/-/live")
	assert.Error(t, err)
}
