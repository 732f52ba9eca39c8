// Package ptdecimal provides the exact fixed-point numeric primitive used
// throughout the P&L engine: signed quantity (scale <= 12) and
// price/cost (scale <= 6) as they arrive from a caller or from storage.
// Addition, subtraction, negation and multiplication are exact; only
// DivExact (used for average cost) rounds, to 18 decimal places. The
// scale budget is a validation rule on external input, not a ceiling
// re-checked on every intermediate result: a sum or
// product of in-budget values is still exact, just possibly of larger
// scale (a quantity times a price is a cost, by construction), and
// rejecting that would make ordinary matching arithmetic impossible.
package ptdecimal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrArithmeticOverflow is returned when a value parsed from external
// input exceeds its declared scale budget, or when DivExact is given a
// zero divisor.
var ErrArithmeticOverflow = errors.New("ptdecimal: arithmetic overflow")

// Kind distinguishes the two scale budgets the engine cares about.
type Kind int

const (
	// Quantity values (signed trade/lot sizes) carry scale <= 12.
	Quantity Kind = iota
	// Money values (price, cost, realized) carry scale <= 6.
	Money
)

func (k Kind) maxScale() int32 {
	if k == Quantity {
		return 12
	}
	return 6
}

// Decimal wraps shopspring/decimal.Decimal, tagging the value with the
// scale budget its *inputs* were validated against.
type Decimal struct {
	d    decimal.Decimal
	kind Kind
}

// Zero returns the additive identity for the given kind.
func Zero(kind Kind) Decimal {
	return Decimal{d: decimal.Zero, kind: kind}
}

// NewFromInt builds a Decimal from an integer.
func NewFromInt(v int64, kind Kind) Decimal {
	return Decimal{d: decimal.NewFromInt(v), kind: kind}
}

// NewFromString parses a decimal literal ("103.25", "-6"), rejecting
// values whose scale exceeds the budget for kind.
func NewFromString(s string, kind Kind) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("ptdecimal: parse %q: %w", s, err)
	}
	out := Decimal{d: d, kind: kind}
	if err := out.checkScale(); err != nil {
		return Decimal{}, err
	}
	return out, nil
}

func (a Decimal) checkScale() error {
	if -a.d.Exponent() > a.kind.maxScale() {
		return fmt.Errorf("%w: scale %d exceeds budget %d", ErrArithmeticOverflow, -a.d.Exponent(), a.kind.maxScale())
	}
	return nil
}

func (a Decimal) resultKind(b Decimal) Kind {
	// Money contaminates Quantity: a quantity multiplied by a price is a
	// money value (cost), and the only place kinds mix is exactly there.
	if a.kind == Money || b.kind == Money {
		return Money
	}
	return a.kind
}

// Add returns a+b, exact.
func (a Decimal) Add(b Decimal) Decimal {
	return Decimal{d: a.d.Add(b.d), kind: a.resultKind(b)}
}

// Sub returns a-b, exact.
func (a Decimal) Sub(b Decimal) Decimal {
	return Decimal{d: a.d.Sub(b.d), kind: a.resultKind(b)}
}

// Neg returns -a.
func (a Decimal) Neg() Decimal {
	return Decimal{d: a.d.Neg(), kind: a.kind}
}

// Mul returns a*b, exact. Used for quantity*price -> cost, so the
// result is tagged Money regardless of the operand kinds.
func (a Decimal) Mul(b Decimal) Decimal {
	return Decimal{d: a.d.Mul(b.d), kind: Money}
}

// DivExact divides a by b, rounding the quotient to 18 decimal places:
// enough precision for deterministic comparisons even when the quotient
// (e.g. an average cost) does not terminate exactly. Used only by
// analytics, never inside the matching algorithm.
func (a Decimal) DivExact(b Decimal) (Decimal, error) {
	if b.d.IsZero() {
		return Decimal{}, fmt.Errorf("%w: division by zero", ErrArithmeticOverflow)
	}
	return Decimal{d: a.d.DivRound(b.d, 18), kind: Money}, nil
}

// Abs returns |a|.
func (a Decimal) Abs() Decimal {
	return Decimal{d: a.d.Abs(), kind: a.kind}
}

// Sign returns -1, 0, or 1.
func (a Decimal) Sign() int {
	return a.d.Sign()
}

// IsZero reports whether a is bit-exact zero.
func (a Decimal) IsZero() bool {
	return a.d.IsZero()
}

// Equal reports exact equality.
func (a Decimal) Equal(b Decimal) bool {
	return a.d.Equal(b.d)
}

// GreaterThan reports a > b.
func (a Decimal) GreaterThan(b Decimal) bool {
	return a.d.GreaterThan(b.d)
}

// LessThan reports a < b.
func (a Decimal) LessThan(b Decimal) bool {
	return a.d.LessThan(b.d)
}

// Kind reports the scale budget this value's inputs were validated
// against.
func (a Decimal) Kind() Kind {
	return a.kind
}

// String renders the exact decimal value.
func (a Decimal) String() string {
	return a.d.String()
}

// Raw exposes the underlying shopspring decimal for storage-layer
// marshaling (e.g. binding to a DECIMAL(p,s) SQL column).
func (a Decimal) Raw() decimal.Decimal {
	return a.d
}

// FromRaw wraps an existing shopspring decimal with a scale budget,
// validating it. Used when reading values back out of storage.
func FromRaw(d decimal.Decimal, kind Kind) (Decimal, error) {
	out := Decimal{d: d, kind: kind}
	if err := out.checkScale(); err != nil {
		return Decimal{}, err
	}
	return out, nil
}

// jsonRepr is the wire shape for a Decimal: the exact literal plus the
// kind it was tagged with, so a round trip through JSON (WAL entries,
// snapshots) preserves scale-budget provenance.
type jsonRepr struct {
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// MarshalJSON renders the decimal as an exact literal alongside its kind.
func (a Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonRepr{Value: a.d.String(), Kind: a.kind})
}

// UnmarshalJSON parses the wire shape written by MarshalJSON, skipping
// the scale-budget check: a value already accepted once should not be
// re-rejected when read back from the engine's own storage.
func (a *Decimal) UnmarshalJSON(data []byte) error {
	var repr jsonRepr
	if err := json.Unmarshal(data, &repr); err != nil {
		return fmt.Errorf("ptdecimal: unmarshal: %w", err)
	}
	d, err := decimal.NewFromString(repr.Value)
	if err != nil {
		return fmt.Errorf("ptdecimal: unmarshal value %q: %w", repr.Value, err)
	}
	a.d = d
	a.kind = repr.Kind
	return nil
}
