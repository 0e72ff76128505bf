package yahoo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FuzzyFloat is an optional float64 that tolerates Yahoo's habit of encoding
// non-finite numbers as the strings "Infinity", "-Infinity" and "NaN"
// (any case). JSON null and an absent field both leave Valid false.
type FuzzyFloat struct {
	Float64 float64
	Valid   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FuzzyFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = FuzzyFloat{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch {
		case strings.EqualFold(s, "infinity"):
			*f = FuzzyFloat{Float64: math.Inf(1), Valid: true}
		case strings.EqualFold(s, "-infinity"):
			*f = FuzzyFloat{Float64: math.Inf(-1), Valid: true}
		case strings.EqualFold(s, "nan"):
			*f = FuzzyFloat{Float64: math.NaN(), Valid: true}
		default:
			return fmt.Errorf("invalid numeric string %q", s)
		}
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*f = FuzzyFloat{Float64: v, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler. Non-finite values round-trip
// through their string form.
func (f FuzzyFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	switch {
	case math.IsInf(f.Float64, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f.Float64, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f.Float64):
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(f.Float64)
}
