package util

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name  string
		title string
		id    string
		want  string
	}{
		{name: "basic", title: "BMW Seria 3 2.0d", id: "abc123", want: "bmw-seria-3-2-0d-abc123"},
		{name: "punctuation collapses", title: "Audi A4!! (S-Line)", id: "9", want: "audi-a4-s-line-9"},
		{name: "empty title", title: "", id: "42", want: "42"},
		{name: "symbols only", title: "???", id: "42", want: "42"},
		{name: "leading trailing", title: "--Golf--", id: "7", want: "golf-7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Slugify(tc.title, tc.id)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if again := Slugify(tc.title, tc.id); again != got {
				t.Fatalf("not idempotent: %q vs %q", got, again)
			}
		})
	}
}

func TestFirstWord(t *testing.T) {
	if got := FirstWord("  Used vehicle "); got != "Used" {
		t.Fatalf("got %q", got)
	}
	if got := FirstWord(""); got != "" {
		t.Fatalf("got %q", got)
	}
}
