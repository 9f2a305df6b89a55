package util

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// decimals is the number of fractional digits a Fixed8 value carries.
const decimals = 100000000

// Fixed8 represents a fixed-point number with precision 10^-8, used for GAS
// amounts throughout the core (NeoToken rewards, PolicyContract fees,
// transaction system/network fees).
type Fixed8 int64

// String implements the Stringer interface.
func (f Fixed8) String() string {
	buf := strconv.FormatInt(int64(f)/decimals, 10)
	val := int64(f) % decimals
	if val == 0 {
		return buf
	}
	if val < 0 {
		val = -val
	}
	frac := strconv.FormatInt(decimals+val, 10)[1:]
	frac = strings.TrimRight(frac, "0")
	return buf + "." + frac
}

// Int64Value returns the original int64 value (truncating the fraction).
func (f Fixed8) Int64Value() int64 {
	return int64(f) / decimals
}

// FloatValue returns the float64 value of f.
func (f Fixed8) FloatValue() float64 {
	return float64(f) / decimals
}

// Value returns the raw integer representation.
func (f Fixed8) Value() int64 {
	return int64(f)
}

// Satoshi returns the smallest unit representable by Fixed8.
func Satoshi() Fixed8 {
	return Fixed8(1)
}

// Fixed8FromInt64 returns a new Fixed8 from the given int64 value.
func Fixed8FromInt64(val int64) Fixed8 {
	return Fixed8(decimals * val)
}

// Fixed8FromFloat returns a new Fixed8 from the given float64 value.
func Fixed8FromFloat(val float64) Fixed8 {
	return Fixed8(int64(math.Round(val * decimals)))
}

// Fixed8FromString converts a string to a Fixed8, preserving maximal
// precision (8 fractional digits).
func Fixed8FromString(s string) (Fixed8, error) {
	parts := strings.SplitN(s, ".", 2)
	ip, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, err
	}
	sign := int64(1)
	if ip < 0 || (ip == 0 && strings.HasPrefix(parts[0], "-")) {
		sign = -1
	}
	val := ip * decimals
	if len(parts) == 2 {
		fs := parts[1]
		if len(fs) > 8 {
			fs = fs[:8]
		}
		for len(fs) < 8 {
			fs += "0"
		}
		fp, err := strconv.ParseInt(fs, 10, 64)
		if err != nil {
			return 0, err
		}
		val += sign * fp
	}
	return Fixed8(val), nil
}

// Add returns f + g.
func (f Fixed8) Add(g Fixed8) Fixed8 {
	return f + g
}

// Sub returns f - g.
func (f Fixed8) Sub(g Fixed8) Fixed8 {
	return f - g
}

// LessThan reports whether f < g.
func (f Fixed8) LessThan(g Fixed8) bool {
	return f < g
}

// GreaterThan reports whether f > g.
func (f Fixed8) GreaterThan(g Fixed8) bool {
	return f > g
}

// MarshalJSON implements the json.Marshaler interface.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.FloatValue())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	var fl float64
	if err := json.Unmarshal(data, &fl); err != nil {
		return err
	}
	*f = Fixed8FromFloat(fl)
	return nil
}
