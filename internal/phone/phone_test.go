package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already canonical", "+34612345678", "+34612345678"},
		{"bare country code", "34612345678", "+34612345678"},
		{"national mobile 6", "612345678", "+34612345678"},
		{"national mobile 7", "712345678", "+34712345678"},
		{"spaces and dashes", "612 34-56 78", "+34612345678"},
		{"canonical with spaces", "+34 612 345 678", "+34612345678"},
		{"parentheses", "(34) 612345678", "+34612345678"},
		{"foreign number kept", "+49151234567", "+49151234567"},
		{"unknown shape stripped only", "91234", "91234"},
		{"letters dropped", "tel:612345678", "+34612345678"},
		{"plus not at start dropped", "34+612345678", "+34612345678"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// Every spelling of the same physical number must collapse to one canonical
// key, otherwise phone-keyed provisioning would create duplicate accounts.
func TestNormalizeVariantsCollapse(t *testing.T) {
	variants := []string{
		"+34612345678",
		"34612345678",
		"612345678",
		"612 345 678",
		"+34 612-345-678",
	}

	want := Normalize(variants[0])

	for _, v := range variants {
		if got := Normalize(v); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"+34612345678", "612345678", "91234", "", "+49151234567"}

	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}
