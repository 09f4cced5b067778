package trainings

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// maxInt bounds Int values, whether they come as JSON numbers or strings.
const maxInt = math.MaxInt32

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Int is an optional integer field. Empty strings, nulls, missing keys and
// values without a leading number are all treated as absent.
type Int struct {
	Value int
	Valid bool
}

func IntOf(v int) Int {
	return Int{Value: v, Valid: true}
}

// Or returns the value, or def when absent.
func (i Int) Or(def int) int {
	if !i.Valid {
		return def
	}
	return i.Value
}

// Ptr returns nil when absent.
func (i Int) Ptr() *int {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

func (i Int) String() string {
	if !i.Valid {
		return ""
	}
	return strconv.Itoa(i.Value)
}

func (i Int) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte(`""`), nil
	}
	return []byte(strconv.Itoa(i.Value)), nil
}

func (i *Int) UnmarshalJSON(b []byte) error {
	*i = Int{}
	raw, isNumber, ok := rawScalar(b)
	if !ok {
		return nil
	}
	if isNumber {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxInt {
			return nil
		}
		*i = IntOf(int(f))
		return nil
	}
	*i = ParseInt(raw)
	return nil
}

// ParseInt reads the leading base 10 integer of s, ignoring whatever follows it ("10kg" is 10).
func ParseInt(s string) Int {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return Int{}
	}
	v, err := strconv.Atoi(m)
	if err != nil || v > maxInt || v < -maxInt {
		return Int{}
	}
	return IntOf(v)
}

// Float is an optional decimal field, with the same absent rules as Int.
type Float struct {
	Value float64
	Valid bool
}

func FloatOf(v float64) Float {
	return Float{Value: v, Valid: true}
}

func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

func (f Float) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte(`""`), nil
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(b []byte) error {
	*f = Float{}
	raw, _, ok := rawScalar(b)
	if !ok {
		return nil
	}
	*f = ParseFloat(raw)
	return nil
}

// ParseFloat reads the leading decimal number of s, ignoring whatever follows it.
// A comma is accepted as the decimal separator.
func ParseFloat(s string) Float {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	m := floatPrefix.FindString(s)
	if m == "" {
		return Float{}
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Float{}
	}
	return FloatOf(v)
}

// rawScalar unwraps a json string or number. Anything else (null, bools, objects) is reported as absent.
func rawScalar(b []byte) (raw string, isNumber bool, ok bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false, false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, false
		}
		if strings.TrimSpace(s) == "" {
			return "", false, false
		}
		return s, false, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(b), true, true
	default:
		return "", false, false
	}
}
