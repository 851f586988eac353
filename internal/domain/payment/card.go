package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var (
	ErrInvalidCard    = errors.New("payment: invalid card details")
	ErrAmountMismatch = errors.New("payment: amount does not match order total")
)

// Card holds the fields of the payment stub. Validation is format-only;
// no gateway is involved.
type Card struct {
	Number      string
	CVV         string
	Holder      string
	ExpiryMonth int
	ExpiryYear  int
}

func (c Card) Validate(now time.Time) error {
	if !digitsOfLen(c.Number, 16) {
		return fmt.Errorf("%w: card number must be 16 digits", ErrInvalidCard)
	}
	if !digitsOfLen(c.CVV, 3) {
		return fmt.Errorf("%w: cvv must be 3 digits", ErrInvalidCard)
	}
	if c.ExpiryMonth < 1 || c.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month out of range", ErrInvalidCard)
	}
	if c.ExpiryYear < now.Year() {
		return fmt.Errorf("%w: card expired", ErrInvalidCard)
	}
	if !alphabetic(c.Holder) {
		return fmt.Errorf("%w: card holder must be alphabetic", ErrInvalidCard)
	}
	return nil
}

func digitsOfLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func alphabetic(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
