package randstr

import (
	"strings"
	"testing"
)

func TestNewLength(t *testing.T) {
	for _, length := range []int{0, 1, 16, SecretLen, PasswordLen, 100} {
		if got := len(New(length)); got != length {
			t.Errorf("len(New(%d)) = %d", length, got)
		}
	}
}

func TestNewAlphabet(t *testing.T) {
	s := New(512)

	for _, r := range s {
		if !strings.ContainsRune(string(chars), r) {
			t.Fatalf("New() produced %q outside the alphabet", r)
		}
	}
}

func TestSecretsDiffer(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 64; i++ {
		s := Secret()

		if len(s) != SecretLen {
			t.Fatalf("len(Secret()) = %d, want %d", len(s), SecretLen)
		}

		if seen[s] {
			t.Fatal("Secret() returned a duplicate value")
		}

		seen[s] = true
	}
}

func TestPasswordLength(t *testing.T) {
	if got := len(Password()); got != PasswordLen {
		t.Errorf("len(Password()) = %d, want %d", got, PasswordLen)
	}
}
