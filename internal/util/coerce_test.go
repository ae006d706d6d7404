package util

import "testing"

func TestCoerceToList(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  []string
	}{
		{name: "nil", input: nil, want: []string{}},
		{name: "json array string", input: `["a","b"]`, want: []string{"a", "b"}},
		{name: "json object string", input: `{"name":"Power"}`, want: []string{`{"name":"Power"}`}},
		{name: "semicolon delimited", input: "a; b; c", want: []string{"a", "b", "c"}},
		{name: "comma delimited", input: "a,b", want: []string{"a", "b"}},
		{name: "plain string", input: "  single  ", want: []string{"single"}},
		{name: "blank string", input: "   ", want: []string{}},
		{name: "scalar", input: 12.0, want: []string{"12"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceToList(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("len=%d want %d (%v)", len(got), len(tc.want), got)
			}
			for i := range got {
				if Stringify(got[i]) != tc.want[i] {
					t.Fatalf("item %d: got %q want %q", i, Stringify(got[i]), tc.want[i])
				}
			}
		})
	}
}

func TestCoerceToListPassesArraysThrough(t *testing.T) {
	in := []any{map[string]any{"url": "x"}, "y"}
	got := CoerceToList(in)
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if m, ok := got[0].(map[string]any); !ok || m["url"] != "x" {
		t.Fatalf("first element mangled: %v", got[0])
	}
}

func TestExtractDigits(t *testing.T) {
	cases := []struct {
		input any
		want  string
	}{
		{input: "1,969 ccm", want: "1969"},
		{input: nil, want: ""},
		{input: "no digits", want: ""},
		{input: "ab12cd34", want: "1234"},
		{input: 190.0, want: "190"},
	}
	for _, tc := range cases {
		if got := ExtractDigits(tc.input); got != tc.want {
			t.Fatalf("ExtractDigits(%v)=%q want %q", tc.input, got, tc.want)
		}
	}
}

func TestExtractPower(t *testing.T) {
	if got := ExtractPower("195 kW (265 hp)", PowerMetric); got != "195" {
		t.Fatalf("metric=%q", got)
	}
	if got := ExtractPower("195 kW (265 hp)", PowerImperial); got != "265" {
		t.Fatalf("imperial=%q", got)
	}
	if got := ExtractPower("195 kW (265 CP)", PowerImperial); got != "265" {
		t.Fatalf("cp unit=%q", got)
	}
	if got := ExtractPower("265 hp", PowerMetric); got != "" {
		t.Fatalf("absent metric=%q", got)
	}
	if got := ExtractPower("195 kW", PowerImperial); got != "" {
		t.Fatalf("absent imperial=%q", got)
	}
	if got := ExtractPower(nil, PowerMetric); got != "" {
		t.Fatalf("nil=%q", got)
	}
}

func TestStringify(t *testing.T) {
	if got := Stringify(map[string]any{"a": 1.0}); got != `{"a":1}` {
		t.Fatalf("map=%q", got)
	}
	if got := Stringify(true); got != "true" {
		t.Fatalf("bool=%q", got)
	}
	if got := Stringify(nil); got != "" {
		t.Fatalf("nil=%q", got)
	}
}
