package yahoo

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFuzzyFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		valid bool
	}{
		{"plain number", `42.5`, 42.5, true},
		{"integer", `7`, 7, true},
		{"negative", `-0.25`, -0.25, true},
		{"null", `null`, 0, false},
		{"infinity string", `"Infinity"`, math.Inf(1), true},
		{"negative infinity string", `"-Infinity"`, math.Inf(-1), true},
		{"lowercase infinity", `"infinity"`, math.Inf(1), true},
		{"mixed case", `"INFINITY"`, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FuzzyFloat
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v", f.Valid, tt.valid)
			}
			if tt.valid && f.Float64 != tt.want {
				t.Errorf("Float64 = %v, want %v", f.Float64, tt.want)
			}
		})
	}

	t.Run("nan string", func(t *testing.T) {
		var f FuzzyFloat
		if err := json.Unmarshal([]byte(`"NaN"`), &f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.Valid || !math.IsNaN(f.Float64) {
			t.Errorf("got (%v, %v), want NaN", f.Float64, f.Valid)
		}
	})

	t.Run("arbitrary string rejected", func(t *testing.T) {
		var f FuzzyFloat
		if err := json.Unmarshal([]byte(`"hello"`), &f); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("absent field stays invalid", func(t *testing.T) {
		var s struct {
			Price FuzzyFloat `json:"price"`
		}
		if err := json.Unmarshal([]byte(`{}`), &s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Price.Valid {
			t.Error("absent field should not be valid")
		}
	})
}

func TestFuzzyFloatMarshal(t *testing.T) {
	tests := []struct {
		name string
		f    FuzzyFloat
		want string
	}{
		{"number", FuzzyFloat{Float64: 1.5, Valid: true}, `1.5`},
		{"invalid", FuzzyFloat{}, `null`},
		{"positive infinity", FuzzyFloat{Float64: math.Inf(1), Valid: true}, `"Infinity"`},
		{"negative infinity", FuzzyFloat{Float64: math.Inf(-1), Valid: true}, `"-Infinity"`},
		{"nan", FuzzyFloat{Float64: math.NaN(), Valid: true}, `"NaN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}
