package domain

import "testing"

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  chicken  ", want: "chicken"},
		{name: "lowercase", input: "Greek Yogurt", want: "greek yogurt"},
		{name: "compress inner spaces", input: "brown   rice", want: "brown rice"},
		{name: "tabs and newlines", input: "\tbrown\n rice\t", want: "brown rice"},
		{name: "diacritics preserved", input: "Crème Fraîche", want: "crème fraîche"},
		{name: "hyphens preserved", input: "Sun-Dried Tomato", want: "sun-dried tomato"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: " \t ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeQuery(tt.input); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFallbackID(t *testing.T) {
	t.Parallel()

	if got := FallbackID("Chicken  Breast"); got != "chicken-breast" {
		t.Errorf("FallbackID = %q, want %q", got, "chicken-breast")
	}
	if got := FallbackID("banana"); got != "banana" {
		t.Errorf("FallbackID = %q, want %q", got, "banana")
	}
}
