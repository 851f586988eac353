package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valid() Card {
	return Card{
		Number:      "4242424242424242",
		CVV:         "123",
		Holder:      "Jane Doe",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 1,
	}
}

func TestValidateAcceptsWellFormedCard(t *testing.T) {
	require.NoError(t, valid().Validate(time.Now().UTC()))
}

func TestValidateRejections(t *testing.T) {
	now := time.Now().UTC()

	cases := []struct {
		name   string
		mutate func(*Card)
	}{
		{"ShortNumber", func(c *Card) { c.Number = "4242" }},
		{"AlphaNumber", func(c *Card) { c.Number = "424242424242424x" }},
		{"ShortCVV", func(c *Card) { c.CVV = "12" }},
		{"AlphaCVV", func(c *Card) { c.CVV = "12a" }},
		{"MonthZero", func(c *Card) { c.ExpiryMonth = 0 }},
		{"MonthThirteen", func(c *Card) { c.ExpiryMonth = 13 }},
		{"ExpiredYear", func(c *Card) { c.ExpiryYear = now.Year() - 1 }},
		{"EmptyHolder", func(c *Card) { c.Holder = "  " }},
		{"NumericHolder", func(c *Card) { c.Holder = "Jane D0e" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := valid()
			tc.mutate(&card)
			assert.ErrorIs(t, card.Validate(now), ErrInvalidCard)
		})
	}
}

func TestValidateCurrentYearIsAccepted(t *testing.T) {
	card := valid()
	card.ExpiryYear = time.Now().Year()
	assert.NoError(t, card.Validate(time.Now().UTC()))
}
