package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"2024-01-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-1-1", false},
		{"01/01/2024", false},
		{"", false},
	}
	for _, c := range cases {
		_, got := IsValidDate(c.input)
		if got != c.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidCurrency(t *testing.T) {
	valid := []string{"UGX", "USD", "KES"}
	invalid := []string{"ugx", "US", "USDT", "U1X", ""}
	for _, c := range valid {
		if !IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = false, want true", c)
		}
	}
	for _, c := range invalid {
		if IsValidCurrency(c) {
			t.Errorf("IsValidCurrency(%q) = true, want false", c)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Message: "is required"},
		{Field: "end_date", Message: "must be on or after start_date"},
	}

	if got, want := errs.Error(), "name: is required; end_date: must be on or after start_date"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	m := errs.ToMap()
	if len(m) != 2 || m["name"] != "is required" {
		t.Errorf("ToMap() = %v", m)
	}
}
