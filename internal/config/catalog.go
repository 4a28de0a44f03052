package config

import (
	"fmt"
	"os"

	"yield-advisor/internal/encoding"
)

const (
	EnvCatalogSource = "YIELD_CATALOG_SOURCE"
	EnvCatalogFile   = "YIELD_CATALOG_FILE"
	EnvCatalogOrder  = "YIELD_CATALOG_ORDER"

	CatalogSourceBuiltin  = "builtin"
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

// CatalogConfig selects where categorical domains come from and how they are indexed.
type CatalogConfig struct {
	Source string `toml:"source"`
	File   string `toml:"file"`
	Order  string `toml:"order"`
}

// EncodingOrder returns Order parsed. Finalize has already rejected bad values.
func (c *CatalogConfig) EncodingOrder() encoding.Order {
	o, _ := encoding.ParseOrder(c.Order)
	return o
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CatalogConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CatalogConfig) Merge(overlay *CatalogConfig) {
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
	if overlay.File != "" {
		c.File = overlay.File
	}
	if overlay.Order != "" {
		c.Order = overlay.Order
	}
}

func (c *CatalogConfig) loadDefaults() {
	if c.Source == "" {
		c.Source = CatalogSourceBuiltin
	}
	if c.Order == "" {
		c.Order = string(encoding.OrderSorted)
	}
}

func (c *CatalogConfig) loadEnv() {
	if v := os.Getenv(EnvCatalogSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvCatalogFile); v != "" {
		c.File = v
	}
	if v := os.Getenv(EnvCatalogOrder); v != "" {
		c.Order = v
	}
}

func (c *CatalogConfig) validate() error {
	switch c.Source {
	case CatalogSourceBuiltin, CatalogSourcePostgres:
	case CatalogSourceFile:
		if c.File == "" {
			return fmt.Errorf("source %q requires a file path", c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if _, err := encoding.ParseOrder(c.Order); err != nil {
		return err
	}
	return nil
}
