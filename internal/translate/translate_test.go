package translate

import "testing"

func TestAttributeName(t *testing.T) {
	if got := AttributeName("Fuel type"); got != "Combustibil" {
		t.Fatalf("got %q", got)
	}
	if got := AttributeName("Unknown attribute"); got != "Unknown attribute" {
		t.Fatalf("fallback: got %q", got)
	}
}

func TestValue(t *testing.T) {
	if got := Value("Used"); got != "Utilizat" {
		t.Fatalf("got %q", got)
	}
	if got := Value("Petrol"); got != "Benzina" {
		t.Fatalf("got %q", got)
	}
	if got := Value("Alpine White III"); got != "Alpine White III" {
		t.Fatalf("fallback: got %q", got)
	}
	if !HasValue("Automatic") || HasValue("definitely-not-a-value") {
		t.Fatal("HasValue misreports")
	}
}

func TestIsColourAttribute(t *testing.T) {
	if !IsColourAttribute("Colour") || !IsColourAttribute("exterior colour") {
		t.Fatal("colour attribute not recognized")
	}
	if IsColourAttribute("Gearbox") {
		t.Fatal("Gearbox flagged as colour")
	}
}
