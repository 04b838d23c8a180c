package folio

import "testing"

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(10), "$10.00"},
		{M(1000, "JPY"), "¥1,000"},
	}
	for _, tc := range testCases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("%#v.String() = %q want %q", tc.m, got, tc.want)
		}
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	if got := M(1, "").Add(EUR(2)); !got.Equal(EUR(3)) {
		t.Errorf("NO(1)+EUR(2) = %v want %v", got, EUR(3))
	}
	defer func() {
		if recover() == nil {
			t.Errorf("EUR+USD did not panic")
		}
	}()
	EUR(1).Add(USD(1))
}

func TestMoney_MarshalJSON(t *testing.T) {
	got, err := EUR(10.126).MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if want := `{"currency":"EUR","amount":"10.13"}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s want %s", got, want)
	}
}

func TestIsCurrency(t *testing.T) {
	for code, want := range map[string]bool{"EUR": true, "USD": true, "CZK": true, "XYZ": false, "": false} {
		if got := IsCurrency(code); got != want {
			t.Errorf("IsCurrency(%q) = %v, want %v", code, got, want)
		}
	}
}
