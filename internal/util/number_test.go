package util

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{name: "plain", input: "20000", want: 20000, ok: true},
		{name: "us thousands", input: "20,000.50", want: 20000.50, ok: true},
		{name: "decimal comma", input: "15,5", want: 15.5, ok: true},
		{name: "currency suffix", input: "20000 EUR", want: 20000, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "no leading digit", input: "EUR 100", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseAmount(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok=%v want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestRoundHalfUp2(t *testing.T) {
	if got := RoundHalfUp2(1.125); got != 1.13 {
		t.Fatalf("half up: got %v", got)
	}
	if got := RoundHalfUp2(2.344); got != 2.34 {
		t.Fatalf("down: got %v", got)
	}
	if got := RoundHalfUp2(2.346); got != 2.35 {
		t.Fatalf("up: got %v", got)
	}
	if got := FormatAmount(22268.07); got != "22268.07" {
		t.Fatalf("format: got %q", got)
	}
}
