package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the settlement state reported for a transaction.
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusPending   Status = "Pending"
	StatusCanceled  Status = "Canceled"
	StatusFailed    Status = "Failed"
	StatusRefunded  Status = "Refunded"
	StatusDisputed  Status = "Disputed"
)

// Statuses lists every known status in display order.
var Statuses = []Status{
	StatusSucceeded,
	StatusPending,
	StatusCanceled,
	StatusFailed,
	StatusRefunded,
	StatusDisputed,
}

// Known reports whether s is one of the statuses the transactions endpoint documents.
func (s Status) Known() bool {
	for _, k := range Statuses {
		if s == k {
			return true
		}
	}
	return false
}

// Transaction is one record from the transactions endpoint.
type Transaction struct {
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Cardholder string          `json:"cardholder"`
	Status     Status          `json:"status"`
	Created    string          `json:"created"` // ISO-8601, kept verbatim
}

// CreatedAt parses the Created timestamp.
func (t Transaction) CreatedAt() (time.Time, error) {
	return ParseTimestamp(t.Created)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 timestamps, zone-less ISO-8601 date-times
// (read as UTC) and plain dates.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
