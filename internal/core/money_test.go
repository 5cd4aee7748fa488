package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12", "12", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"12.345", "12.35", true},
		{"12.344", "12.34", true},
		{" 0.5 ", "0.5", true},
		{".75", "0.75", true},
		{"0", "", false},
		{"0.001", "", false},
		{"-1", "", false},
		{"+1", "", false},
		{"1e3", "", false},
		{"1.234,56", "", false},
		{"abc", "", false},
		{"", "", false},
		{".", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("%q: got %s want %s", tc.in, got, tc.want)
			}
			continue
		}
		if err != ErrInvalidAmount {
			t.Fatalf("%q: expected ErrInvalidAmount, got %v (%s)", tc.in, err, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("1234.5"), "usd"); got != "$1,234.50" {
		t.Fatalf("got %q", got)
	}
	if got, want := FormatAmount(decimal.NewFromInt(3), "???"), FormatAmount(decimal.NewFromInt(3), DefaultCurrency); got != want {
		t.Fatalf("unknown currency should fall back: %q vs %q", got, want)
	}
}

func TestBalances(t *testing.T) {
	var b Balances
	b.Add(Salary, decimal.NewFromInt(800))
	b.Add(Cash, decimal.NewFromInt(150))
	b.Add("bank", decimal.NewFromInt(999))
	if !b.Of(Salary).Equal(decimal.NewFromInt(800)) || !b.Of(Savings).IsZero() {
		t.Fatalf("unexpected balances %+v", b)
	}
	if !b.Total().Equal(decimal.NewFromInt(950)) {
		t.Fatalf("total = %s", b.Total())
	}
	if !b.Of("bank").IsZero() {
		t.Fatalf("unknown account should read zero")
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory("  Food & Dining "); got != CategoryFood {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeCategory("pets"); got != "pets" {
		t.Fatalf("case should be preserved, got %q", got)
	}
}
