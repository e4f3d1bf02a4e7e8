package model

import (
	"fmt"

	"golang.org/x/exp/slog"
)

// Card is the issued card returned by the card endpoint.
type Card struct {
	CardholderName string `json:"cardholderName"` // segments concatenated, e.g. "JohnSmith"
	Last4          string `json:"last4"`
	ExpiryMonth    int    `json:"expiryMonth"`
	ExpiryYear     int    `json:"expiryYear"`
	CVC            string `json:"cvc"`
	Brand          string `json:"brand"`
}

const redacted = "[REDACTED]"

// String renders the card with the CVC redacted.
func (c Card) String() string {
	return fmt.Sprintf("%s card ending %s (%02d/%d) for %s, cvc %s",
		c.Brand, c.Last4, c.ExpiryMonth, c.ExpiryYear, c.CardholderName, redacted)
}

// GoString keeps %#v from printing the CVC.
func (c Card) GoString() string {
	return fmt.Sprintf("model.Card{CardholderName:%q, Last4:%q, ExpiryMonth:%d, ExpiryYear:%d, CVC:%q, Brand:%q}",
		c.CardholderName, c.Last4, c.ExpiryMonth, c.ExpiryYear, redacted, c.Brand)
}

// LogValue implements slog.LogValuer.
func (c Card) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("brand", c.Brand),
		slog.String("last4", c.Last4),
		slog.Int("expiry_month", c.ExpiryMonth),
		slog.Int("expiry_year", c.ExpiryYear),
	)
}
