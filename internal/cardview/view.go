// Package cardview presents the issued card and handles the card page actions.
package cardview

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/cardview-dev/cardview/internal/cvv"
	"github.com/cardview-dev/cardview/internal/model"
	"github.com/cardview-dev/cardview/internal/notify"
)

// Messages shown by the card page.
const (
	MsgFrozen    = "Card frozen successfully"
	MsgCancelled = "Card cancelled successfully"
	MsgReplaced  = "Card replacement requested"
	MsgCVVHidden = "CVV hidden for security"
)

var nameBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// FormatName inserts a space at every lowercase-to-uppercase boundary:
// "JohnSmith" becomes "John Smith".
func FormatName(name string) string {
	return nameBoundary.ReplaceAllString(name, "$1 $2")
}

// MaskedNumber renders the card number with only the last four digits.
func MaskedNumber(last4 string) string {
	return "•••• •••• •••• " + last4
}

// ExpiryShort renders MM/YY as printed on the card face.
func ExpiryShort(month, year int) string {
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

// ExpiryLong renders MM/YYYY as shown in the details list.
func ExpiryLong(month, year int) string {
	return fmt.Sprintf("%02d/%d", month, year)
}

// View owns the fetched card, its CVV reveal and the notifier that receives
// the page's messages. A View with no card renders empty fields.
type View struct {
	mu       sync.RWMutex
	card     *model.Card
	reveal   *cvv.Reveal
	notifier notify.Notifier
}

// New returns a View for card (nil while unavailable). Reveal options are
// passed through to cvv.NewReveal.
func New(card *model.Card, n notify.Notifier, opts ...cvv.Option) *View {
	if n == nil {
		n = notify.Discard
	}
	v := &View{card: card, notifier: n}
	v.reveal = cvv.NewReveal(func() {
		v.notifier.Notify(notify.New(notify.Info, MsgCVVHidden))
	}, opts...)
	return v
}

// SetCard replaces the card after a new fetch. The reveal state is kept.
func (v *View) SetCard(card *model.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.card = card
}

// Card returns the current card, or nil.
func (v *View) Card() *model.Card {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.card
}

// Loaded reports whether a card is available.
func (v *View) Loaded() bool {
	return v.Card() != nil
}

// Name returns the formatted cardholder name.
func (v *View) Name() string {
	c := v.Card()
	if c == nil {
		return ""
	}
	return FormatName(c.CardholderName)
}

// Number returns the masked card number.
func (v *View) Number() string {
	c := v.Card()
	if c == nil {
		return ""
	}
	return MaskedNumber(c.Last4)
}

// Expiry returns the card-face expiry (MM/YY).
func (v *View) Expiry() string {
	c := v.Card()
	if c == nil {
		return ""
	}
	return ExpiryShort(c.ExpiryMonth, c.ExpiryYear)
}

// ExpiryFull returns the detailed expiry (MM/YYYY).
func (v *View) ExpiryFull() string {
	c := v.Card()
	if c == nil {
		return ""
	}
	return ExpiryLong(c.ExpiryMonth, c.ExpiryYear)
}

// Brand returns the card brand.
func (v *View) Brand() string {
	c := v.Card()
	if c == nil {
		return ""
	}
	return c.Brand
}

// CVV returns the security code while revealed, the mask otherwise.
func (v *View) CVV() string {
	c := v.Card()
	if c == nil {
		return cvv.Mask
	}
	return v.reveal.Display(c.CVC)
}

// CVVRevealed reports whether the security code is visible.
func (v *View) CVVRevealed() bool {
	return v.reveal.Revealed()
}

// RevealTimeout is how long a reveal lasts.
func (v *View) RevealTimeout() int {
	return int(v.reveal.Timeout().Seconds())
}

// ToggleCVV reveals or hides the security code.
func (v *View) ToggleCVV() cvv.State {
	return v.reveal.Toggle()
}

// HideCVV hides the security code without a notification.
func (v *View) HideCVV() {
	v.reveal.Hide()
}

// Freeze reports the card as frozen. No remote state changes.
func (v *View) Freeze() {
	v.notifier.Notify(notify.New(notify.Success, MsgFrozen))
}

// Replace reports a replacement request. No remote state changes.
func (v *View) Replace() {
	v.notifier.Notify(notify.New(notify.Success, MsgReplaced))
}

// Cancel reports the card as cancelled. No remote state changes.
func (v *View) Cancel() {
	v.notifier.Notify(notify.New(notify.Success, MsgCancelled))
}

// Action runs the named card action: freeze, replace or cancel.
func (v *View) Action(name string) bool {
	switch name {
	case "freeze":
		v.Freeze()
	case "replace":
		v.Replace()
	case "cancel":
		v.Cancel()
	default:
		return false
	}
	return true
}

// Close cancels a pending CVV timer.
func (v *View) Close() {
	v.reveal.Close()
}
