package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a numeric leaf that remembers whether it was ever filled in.
// The zero value is "not filled".
type Number struct {
	Value float64
	Set   bool
}

// Num returns a filled Number.
func Num(v float64) Number { return Number{Value: v, Set: true} }

// Positive reports whether the number is filled and strictly greater than zero.
func (n Number) Positive() bool { return n.Set && n.Value > 0 }

// Negative reports whether the number is filled and below zero.
func (n Number) Negative() bool { return n.Set && n.Value < 0 }

// Float returns the value, or 0 when unset.
func (n Number) Float() float64 {
	if !n.Set {
		return 0
	}
	return n.Value
}

func (n Number) String() string {
	if !n.Set {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// MarshalJSON encodes an unset number as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a JSON number, null, or a numeric string. An empty
// string clears the value, mirroring a form input that was emptied.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("number expected, got %s", b)
	}
	*n = Num(v)
	return nil
}

// ParseNumber parses user input. Blank input yields an unset Number.
func ParseNumber(s string) (Number, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}, fmt.Errorf("%q is not a finite number", s)
	}
	return Num(v), nil
}
