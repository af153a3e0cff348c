// Package purity models metal families and their fineness grades.
//
// A purity token is only meaningful together with its metal: "22K" is a gold
// grade, "925" a silver grade. Parse turns the loose (metal, token) pair into a
// Purity value that knows its canonical token and, when the grade is numeric,
// its fineness. Rate derivation between grades of the same metal is the ratio
// of their fineness values.
package purity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Metal is an upper-cased metal code. The four well-known families are
// declared below; any other non-empty code is a custom metal.
type Metal string

const (
	Gold     Metal = "GOLD"
	Silver   Metal = "SILVER"
	Platinum Metal = "PLATINUM"
	Diamond  Metal = "DIAMOND"
)

var (
	ErrInvalidMetal  = errors.New("invalid metal type")
	ErrInvalidPurity = errors.New("invalid purity")
	ErrNotNumeric    = errors.New("purity has no numeric fineness")
)

var (
	metalPattern   = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	karatPattern   = regexp.MustCompile(`^([0-9]{1,2})K?$`)
	millesPattern  = regexp.MustCompile(`^([0-9]{3,4})$`)
	leadingPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)`)
)

// ParseMetal normalises a metal code ("gold " → GOLD).
func ParseMetal(s string) (Metal, error) {
	m := strings.ToUpper(strings.TrimSpace(s))
	if !metalPattern.MatchString(m) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMetal, s)
	}
	return Metal(m), nil
}

// Known reports whether m is one of the built-in families.
func (m Metal) Known() bool {
	switch m {
	case Gold, Silver, Platinum, Diamond:
		return true
	}
	return false
}

// Purity is a validated grade of a specific metal.
type Purity struct {
	metal    Metal
	token    string
	fineness decimal.Decimal
	numeric  bool
}

// Parse validates token against the grading scheme of metal.
//
//	GOLD               karats 1..24, "22", "22k" and "22K" all become "22K"
//	SILVER, PLATINUM   millesimal fineness in (0, 1000], e.g. "925"
//	DIAMOND            any grade label, never numeric
//	custom metals      any label; the leading number, if present, is the fineness
func Parse(metal Metal, token string) (Purity, error) {
	t := strings.ToUpper(strings.TrimSpace(token))
	if t == "" {
		return Purity{}, fmt.Errorf("%w: empty purity for %s", ErrInvalidPurity, metal)
	}

	switch metal {
	case Gold:
		m := karatPattern.FindStringSubmatch(t)
		if m == nil {
			return Purity{}, fmt.Errorf("%w: %q is not a karat grade", ErrInvalidPurity, token)
		}
		k, _ := strconv.Atoi(m[1])
		if k < 1 || k > 24 {
			return Purity{}, fmt.Errorf("%w: %dK out of range", ErrInvalidPurity, k)
		}
		return Purity{metal: metal, token: strconv.Itoa(k) + "K", fineness: decimal.NewFromInt(int64(k)), numeric: true}, nil

	case Silver, Platinum:
		m := millesPattern.FindStringSubmatch(t)
		if m == nil {
			return Purity{}, fmt.Errorf("%w: %q is not a millesimal grade", ErrInvalidPurity, token)
		}
		n, _ := strconv.Atoi(m[1])
		if n < 1 || n > 1000 {
			return Purity{}, fmt.Errorf("%w: %d out of range", ErrInvalidPurity, n)
		}
		return Purity{metal: metal, token: strconv.Itoa(n), fineness: decimal.NewFromInt(int64(n)), numeric: true}, nil

	case Diamond:
		return Purity{metal: metal, token: t}, nil
	}

	if metal == "" {
		return Purity{}, ErrInvalidMetal
	}
	p := Purity{metal: metal, token: t}
	if m := leadingPattern.FindStringSubmatch(t); m != nil {
		if f, err := decimal.NewFromString(m[1]); err == nil && f.IsPositive() {
			p.fineness, p.numeric = f, true
		}
	}
	return p, nil
}

// MustParse is Parse for package-level tables; it panics on error.
func MustParse(metal Metal, token string) Purity {
	p, err := Parse(metal, token)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Purity) Metal() Metal {
	return p.metal
}

// Token is the normalised grade, e.g. 22K or 925.
func (p Purity) Token() string {
	return p.token
}

func (p Purity) String() string {
	return string(p.metal) + " " + p.token
}

func (p Purity) IsZero() bool {
	return p.token == ""
}

// Numeric reports whether the grade carries a fineness usable in ratios.
func (p Purity) Numeric() bool {
	return p.numeric
}

// Fineness returns the numeric grade used in rate ratios.
func (p Purity) Fineness() (decimal.Decimal, bool) {
	return p.fineness, p.numeric
}

// DerivedRate computes round(baseRate × fineness(p) / fineness(base), 2).
func DerivedRate(baseRate decimal.Decimal, p, base Purity) (decimal.Decimal, error) {
	num, ok := p.Fineness()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNotNumeric, p)
	}
	den, ok := base.Fineness()
	if !ok || den.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNotNumeric, base)
	}
	return baseRate.Mul(num).Div(den).Round(2), nil
}
