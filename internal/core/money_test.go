package core

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.50", true},
		{"-1", "-1.00", true},
		{"0", "0.00", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyValidateNonNegative(t *testing.T) {
	if err := MustMoney("0").ValidateNonNegative(); err != nil {
		t.Fatalf("zero is allowed, got %v", err)
	}
	if err := (Money{}).ValidateNonNegative(); err != ErrMissingAmount {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}
	if err := MustMoney("-0.01").ValidateNonNegative(); err != ErrNegativeAmount {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if (Money{}).String() != "" {
		t.Fatalf("missing money should render empty")
	}
}
