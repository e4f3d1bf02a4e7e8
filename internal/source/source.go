// Package source fetches the card and transaction collections.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/cardview-dev/cardview/internal/model"
)

// Endpoint names used in errors and logs.
const (
	EndpointCard         = "card"
	EndpointTransactions = "transactions"
)

// FetchError is returned for any failure while fetching an endpoint:
// transport errors, non-2xx responses and undecodable bodies.
type FetchError struct {
	Endpoint string
	URL      string
	Status   int // 0 when no response was received
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client reads the two endpoints. file:// URLs are served from the local
// filesystem.
type Client struct {
	CardURL         string
	TransactionsURL string
	HTTP            *http.Client
	logger          *slog.Logger
}

// NewClient returns a Client with the given request timeout.
func NewClient(logger *slog.Logger, cardURL, transactionsURL string, timeout time.Duration) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))

	return &Client{
		CardURL:         cardURL,
		TransactionsURL: transactionsURL,
		HTTP:            &http.Client{Timeout: timeout, Transport: transport},
		logger:          logger.With(slog.String("component", "source")),
	}
}

// Card fetches the issued card.
func (c *Client) Card(ctx context.Context) (*model.Card, error) {
	var card model.Card
	if err := c.get(ctx, EndpointCard, c.CardURL, &card); err != nil {
		return nil, err
	}
	c.logger.Debug("card fetched", slog.Any("card", card))
	return &card, nil
}

// Transactions fetches the transaction collection.
func (c *Client) Transactions(ctx context.Context) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := c.get(ctx, EndpointTransactions, c.TransactionsURL, &txns); err != nil {
		return nil, err
	}
	c.logger.Debug("transactions fetched", slog.Int("count", len(txns)))
	return txns, nil
}

func (c *Client) get(ctx context.Context, endpoint, target string, out any) error {
	fail := func(status int, err error) error {
		return &FetchError{Endpoint: endpoint, URL: target, Status: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(resp.StatusCode, fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(b))))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decoding body: %w", err))
	}
	return nil
}
