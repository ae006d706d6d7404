package pipeline

import (
	"testing"

	"carvan/internal"
)

func TestVariantPriceTiers(t *testing.T) {
	cases := []struct {
		name   string
		amount any
		want   string
	}{
		// 20000 * 1.21/1.19 ≈ 20336.13, tier <25000 → ×1.095
		{name: "first tier", amount: 20000.0, want: "22268.07"},
		// 100000 * 1.21/1.19 ≈ 101680.67, tier <250000 → ×1.045
		{name: "fifth tier", amount: 100000.0, want: "106256.30"},
		// 300000 * 1.21/1.19 ≈ 305042.02, top tier → ×1.035
		{name: "top tier", amount: 300000.0, want: "315718.49"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := internal.RawRecord{"price": map[string]any{"amount": tc.amount}}
			got, ok := variantPrice(rec)
			if !ok {
				t.Fatal("expected a price")
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestVariantPriceSources(t *testing.T) {
	rec := internal.RawRecord{"price": map[string]any{"total": map[string]any{"amount": "20000"}}}
	if got, ok := variantPrice(rec); !ok || got != "22268.07" {
		t.Fatalf("nested total: got %q ok=%v", got, ok)
	}

	rec = internal.RawRecord{"price/total/amount": "20000 EUR"}
	if got, ok := variantPrice(rec); !ok || got != "22268.07" {
		t.Fatalf("flat key: got %q ok=%v", got, ok)
	}
}

func TestVariantPriceInvalid(t *testing.T) {
	for _, rec := range []internal.RawRecord{
		{},
		{"price": "call us"},
		{"price": map[string]any{"amount": "0"}},
		{"price": map[string]any{"amount": "-100"}},
	} {
		if got, ok := variantPrice(rec); ok {
			t.Fatalf("expected no price for %v, got %q", rec, got)
		}
	}
}
