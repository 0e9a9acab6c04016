// Package numerator provides document auto-numbering on top of a transactional sequence store.
package numerator

import (
	"context"
	"fmt"
	"time"

	"erpledger/internal/core/numerator"
)

// Sequencer atomically increments a named counter and returns the new value.
// The memory store implements it so sequence bumps roll back with the transaction.
type Sequencer interface {
	NextValue(ctx context.Context, key string) (int64, error)
}

// Service provides document numbering functionality.
type Service struct {
	seq Sequencer
}

// New creates a new numerator service.
func New(seq Sequencer) *Service {
	return &Service{seq: seq}
}

// GetNextNumber generates the next document number.
// Pattern with DefaultConfig: PREFIX-YEAR-XXXXX (e.g., INV-2024-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg numerator.Config, period time.Time) (string, error) {
	if s == nil || s.seq == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	num, err := s.seq.NextValue(ctx, BuildKey(cfg, period))
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", cfg.Prefix, err)
	}

	return FormatNumber(cfg, period, num), nil
}

// BuildKey creates the sequence key based on config and period.
func BuildKey(cfg numerator.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "day":
		return fmt.Sprintf("seq:%s_%s", cfg.Prefix, period.Format("2006_01_02"))
	case "month":
		return fmt.Sprintf("seq:%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("seq:%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return "seq:" + cfg.Prefix
	}
}

// FormatNumber creates the final number string.
func FormatNumber(cfg numerator.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.DateLayout != "" {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format(cfg.DateLayout), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the trailing numeric part from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := -1
	for i := len(formatted) - 1; i >= 0; i-- {
		if formatted[i] == '-' {
			idx = i
			break
		}
	}
	var num int64
	if _, err := fmt.Sscanf(formatted[idx+1:], "%d", &num); err != nil {
		return -1
	}
	return num
}

var _ numerator.Generator = (*Service)(nil)
