package remoteconfig

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the value types a design-token scalar may hold.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scalar is a closed union over the mixed-type JSON values the config
// endpoint emits for typography and spacing tokens. Decoding fails on any
// value outside the four kinds (objects, arrays, null) rather than degrading
// to an empty string.
type Scalar struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
}

// StringScalar returns a Scalar holding a string.
func StringScalar(v string) Scalar { return Scalar{kind: KindString, s: v} }

// BoolScalar returns a Scalar holding a bool.
func BoolScalar(v bool) Scalar { return Scalar{kind: KindBool, b: v} }

// IntScalar returns a Scalar holding an integer.
func IntScalar(v int64) Scalar { return Scalar{kind: KindInt, i: v} }

// FloatScalar returns a Scalar holding a float.
func FloatScalar(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }

// Kind reports which variant the scalar holds.
func (s Scalar) Kind() Kind { return s.kind }

// StringValue returns the string variant; ok is false for other kinds.
func (s Scalar) StringValue() (string, bool) { return s.s, s.kind == KindString }

// BoolValue returns the bool variant; ok is false for other kinds.
func (s Scalar) BoolValue() (bool, bool) { return s.b, s.kind == KindBool }

// IntValue returns the integer variant; ok is false for other kinds.
func (s Scalar) IntValue() (int64, bool) { return s.i, s.kind == KindInt }

// FloatValue returns the float variant. An integer scalar converts; ok is
// false only for strings and bools.
func (s Scalar) FloatValue() (float64, bool) {
	switch s.kind {
	case KindFloat:
		return s.f, true
	case KindInt:
		return float64(s.i), true
	default:
		return 0, false
	}
}

// UnmarshalJSON decodes a JSON string, bool, or number. Numbers without a
// fraction or exponent become KindInt, all others KindFloat.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("scalar: empty value")
	}

	switch trimmed[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("scalar: %w", err)
		}
		*s = StringScalar(v)
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("scalar: %w", err)
		}
		*s = BoolScalar(v)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("scalar: unsupported value %s", trimmed)
	}
	if !strings.ContainsAny(num.String(), ".eE") {
		i, err := num.Int64()
		if err == nil {
			*s = IntScalar(i)
			return nil
		}
	}
	f, err := num.Float64()
	if err != nil {
		return fmt.Errorf("scalar: %w", err)
	}
	*s = FloatScalar(f)
	return nil
}

// MarshalJSON encodes the held variant.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindString:
		return json.Marshal(s.s)
	case KindBool:
		return json.Marshal(s.b)
	case KindInt:
		return []byte(strconv.FormatInt(s.i, 10)), nil
	case KindFloat:
		return json.Marshal(s.f)
	default:
		return nil, fmt.Errorf("scalar: unknown kind %v", s.kind)
	}
}
