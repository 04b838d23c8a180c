package folio

import (
	"encoding/json"
	"testing"
)

func TestPercentOf(t *testing.T) {
	testCases := []struct {
		name     string
		num, den float64
		want     Percent
		defined  bool
	}{
		{"half", 1, 2, 50, true},
		{"gain", 120, 100, 120, true},
		{"zero numerator", 0, 5, 0, true},
		{"zero denominator", 5, 0, UndefinedPercent, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := percentOf(D(tc.num), D(tc.den))
			if got.IsDefined() != tc.defined {
				t.Fatalf("percentOf(%v, %v).IsDefined() = %v", tc.num, tc.den, got.IsDefined())
			}
			if !got.Equal(tc.want) {
				t.Errorf("percentOf(%v, %v) = %v want %v", tc.num, tc.den, got, tc.want)
			}
		})
	}
}

func TestPercent_Undefined(t *testing.T) {
	if got := UndefinedPercent.String(); got != "n/a" {
		t.Errorf("String() = %q want n/a", got)
	}
	b, err := json.Marshal(struct{ P Percent }{UndefinedPercent})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(b) != `{"P":null}` {
		t.Errorf("json.Marshal() = %s", b)
	}
	if got := Percent(12.345).String(); got != "12.35%" {
		t.Errorf("String() = %q want 12.35%%", got)
	}
	if got := Percent(-3).SignedString(); got != "-3.00%" {
		t.Errorf("SignedString() = %q", got)
	}
}
