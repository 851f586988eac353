package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the environment-driven runtime configuration.
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	ServiceName string        `envconfig:"SERVICE_NAME" default:"minishop-orders"`
	Env         string        `envconfig:"ENV" default:"dev"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"dev-secret"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	Currency    string        `envconfig:"CURRENCY" default:"USD"`

	// TaxRate is applied to the order subtotal; ShippingFee is a flat fee.
	// Both default to zero so totals equal the cart subtotal out of the box.
	TaxRate     float64 `envconfig:"TAX_RATE" default:"0"`
	ShippingFee float64 `envconfig:"SHIPPING_FEE" default:"0"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
