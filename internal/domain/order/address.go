package order

import (
	"errors"
	"strings"
)

var ErrInvalidAddress = errors.New("order: shipping address is incomplete")

type Address struct {
	FullName     string
	AddressLine1 string
	AddressLine2 string
	City         string
	Country      string
	PostalCode   string
}

// Validate checks the fields a carrier cannot do without.
func (a Address) Validate() error {
	required := []string{a.FullName, a.AddressLine1, a.City, a.Country, a.PostalCode}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}
