// Package core provides amount coercion and currency formatting.
//
// Stored amounts keep the decimal literal they were written with. They are
// coerced to float64 only when the engine aggregates them, so a malformed
// stored value surfaces as a data error at read time instead of being dropped.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a non-negative decimal literal as stored with a record.
type Amount string

// rupees renders whole-rupee values the way generated text shows them: the
// ₹ glyph, no fraction digits and no thousands separator.
var rupees = money.NewFormatter(0, ".", "", money.GetCurrency(money.INR).Grapheme, "$1")

// NewAmount builds an Amount from a float.
func NewAmount(v float64) Amount {
	return Amount(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float64 coerces the amount. An empty amount counts as zero.
//
// Examples:
//   Amount("12.50").Float64() -> 12.5, nil
//   Amount("1e3").Float64()   -> 1000, nil
//   Amount("abc").Float64()   -> 0, ErrInvalidAmount
func (a Amount) Float64() (float64, error) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, string(a))
	}
	f, _ := d.Float64()
	return f, nil
}

// Validate rejects empty, non-numeric and negative amounts.
func (a Amount) Validate() error {
	if strings.TrimSpace(string(a)) == "" {
		return ErrInvalidAmount
	}
	f, err := a.Float64()
	if err != nil {
		return err
	}
	if f < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// UnmarshalJSON accepts a JSON number or a string holding one.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, data)
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON emits a number. Values that cannot be coerced are emitted as the
// original string so listing endpoints still show what is stored.
func (a Amount) MarshalJSON() ([]byte, error) {
	f, err := a.Float64()
	if err != nil {
		return json.Marshal(string(a))
	}
	return json.Marshal(f)
}

// FormatRupees formats v rounded to whole rupees, e.g. 1234.5 -> "₹1234".
// Rounding is half-to-even, matching %.0f. Values outside the int64 range
// are printed by strconv.
func FormatRupees(v float64) string {
	r := math.RoundToEven(v)
	if math.IsNaN(r) || math.Abs(r) >= math.MaxInt64 {
		s := rupees.Grapheme + strconv.FormatFloat(math.Abs(r), 'f', 0, 64)
		if r < 0 {
			s = "-" + s
		}
		return s
	}
	return rupees.Format(int64(r))
}

// FormatPercent formats a ratio already scaled to 100 with no decimals.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64) + "%"
}
