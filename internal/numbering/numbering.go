// Package numbering issues human-readable document numbers of the form
// PREFIX/YYMM/NNNN.
//
// The serial comes from a counter row keyed by (kind, period) that is
// incremented inside the caller's transaction. The row stays locked until
// that transaction ends, so concurrent issuers queue on it, and a rollback
// returns the serial.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BAHUBALISID/smj/internal/clock"

	"gorm.io/gorm"
)

// Kind is a document type with its own sequence.
type Kind string

const (
	Bill     Kind = "bill"
	Payment  Kind = "payment"
	Exchange Kind = "exchange"
)

// Reset selects how often serials restart.
type Reset string

const (
	Yearly  Reset = "yearly"
	Monthly Reset = "monthly"
)

// ParseReset accepts "yearly" (default when empty) or "monthly".
func ParseReset(s string) (Reset, error) {
	switch Reset(strings.ToLower(strings.TrimSpace(s))) {
	case "", Yearly:
		return Yearly, nil
	case Monthly:
		return Monthly, nil
	}
	return "", fmt.Errorf("unknown numbering reset %q", s)
}

// Period is the counter key for t.
func Period(t time.Time, r Reset) string {
	if r == Monthly {
		return t.Format("2006-01")
	}
	return t.Format("2006")
}

// Format renders PREFIX/YYMM/NNNN. Serials past 9999 widen.
func Format(prefix string, t time.Time, serial int64) string {
	return fmt.Sprintf("%s/%s/%04d", prefix, t.Format("0601"), serial)
}

// Counter atomically increments and returns the serial for (kind, period).
type Counter interface {
	Next(ctx context.Context, tx *gorm.DB, kind Kind, period string) (int64, error)
}

// Config holds prefixes per kind and the reset policy.
type Config struct {
	Prefixes map[Kind]string
	Reset    Reset
}

// DefaultConfig is SMJ / PAY / EX with yearly serials.
func DefaultConfig() Config {
	return Config{
		Prefixes: map[Kind]string{Bill: "SMJ", Payment: "PAY", Exchange: "EX"},
		Reset:    Yearly,
	}
}

// Numberer issues document numbers.
type Numberer struct {
	counter Counter
	clock   clock.Clock
	cfg     Config
}

func New(counter Counter, clk clock.Clock, cfg Config) *Numberer {
	if cfg.Reset == "" {
		cfg.Reset = Yearly
	}
	return &Numberer{counter: counter, clock: clk, cfg: cfg}
}

// Next issues the next number of kind inside tx.
func (n *Numberer) Next(ctx context.Context, tx *gorm.DB, kind Kind) (string, error) {
	prefix, ok := n.cfg.Prefixes[kind]
	if !ok || prefix == "" {
		return "", fmt.Errorf("numbering: no prefix for %s", kind)
	}
	now := n.clock.Now()
	serial, err := n.counter.Next(ctx, tx, kind, Period(now, n.cfg.Reset))
	if err != nil {
		return "", err
	}
	return Format(prefix, now, serial), nil
}

// Skip consumes one serial of kind outside any transaction. It is used after
// a collision with a number that already exists in storage.
func (n *Numberer) Skip(ctx context.Context, kind Kind) error {
	_, err := n.counter.Next(ctx, nil, kind, Period(n.clock.Now(), n.cfg.Reset))
	return err
}
