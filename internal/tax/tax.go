// Package tax splits a taxable value into Indian GST components.
package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Regime selects how GST is levied on a bill.
type Regime string

const (
	None       Regime = "none"
	IntraState Regime = "intra_state" // CGST + SGST
	InterState Regime = "inter_state" // IGST
)

var (
	hundred    = decimal.NewFromInt(100)
	twoHundred = decimal.NewFromInt(200)
)

// ParseRegime accepts the stored regime names; empty means None.
func ParseRegime(s string) (Regime, error) {
	switch Regime(strings.ToLower(strings.TrimSpace(s))) {
	case "", None:
		return None, nil
	case IntraState:
		return IntraState, nil
	case InterState:
		return InterState, nil
	}
	return "", fmt.Errorf("unknown gst regime %q", s)
}

// Split holds the computed tax components of one line.
type Split struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
	IGST decimal.Decimal
}

// Total is cgst + sgst + igst.
func (s Split) Total() decimal.Decimal {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

// Compute applies percent to taxable under regime. Intra-state halves the
// nominal rate into equal CGST and SGST amounts, each rounded on its own.
func Compute(taxable, percent decimal.Decimal, regime Regime) Split {
	out := Split{CGST: decimal.Zero, SGST: decimal.Zero, IGST: decimal.Zero}
	switch regime {
	case IntraState:
		half := taxable.Mul(percent).Div(twoHundred).Round(2)
		out.CGST, out.SGST = half, half
	case InterState:
		out.IGST = taxable.Mul(percent).Div(hundred).Round(2)
	}
	return out
}
