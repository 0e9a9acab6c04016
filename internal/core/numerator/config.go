// Package numerator provides domain contracts for document and lot numbering.
package numerator

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "SO", "RMA", or a product SKU)
	Prefix string

	// DateLayout is the Go time layout of the period segment ("2006", "20060102").
	// Empty means no period segment.
	DateLayout string

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "day", "month", "year", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YYYY-NNNNN numbering reset every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		DateLayout:  "2006",
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// LotConfig returns the finished-goods lot layout {sku}-{YYYYMMDD}-{NNN}.
func LotConfig(sku string) Config {
	return Config{
		Prefix:      sku,
		DateLayout:  "20060102",
		PadWidth:    3,
		ResetPeriod: "day",
	}
}

// Document prefixes.
const (
	PrefixOrder          = "SO"
	PrefixReturn         = "RMA"
	PrefixSupplierReturn = "SRMA"
	PrefixCreditNote     = "CN"
	PrefixInvoice        = "INV"
	PrefixAdjustment     = "ADJ"
)
