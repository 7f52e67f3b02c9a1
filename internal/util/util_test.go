package util

import (
	"testing"
)

func TestRandomString(t *testing.T) {
	a, err := RandomString(32)
	if err != nil {
		t.Fatalf("RandomString: %v", err)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 characters, got %d", len(a))
	}
	b, _ := RandomString(32)
	if a == b {
		t.Errorf("two random strings should differ")
	}
}

func TestGenUUID(t *testing.T) {
	id := GenUUID()
	if len(id) != 32 {
		t.Errorf("expected 32 hex characters, got %q", id)
	}
	if id == GenUUID() {
		t.Errorf("two uuids should differ")
	}
}

func TestIsDigits(t *testing.T) {
	cases := map[string]bool{
		"10":  true,
		"007": true,
		"":    false,
		"1a":  false,
		"-1":  false,
		"١٢":  false,
	}
	for in, want := range cases {
		if got := IsDigits(in); got != want {
			t.Errorf("IsDigits(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCasefold(t *testing.T) {
	if Casefold("ÉTÉ") != Casefold("été") {
		t.Errorf("accented capitals should fold to lowercase")
	}
}

func TestOptionalInt32(t *testing.T) {
	if OptionalInt32(" 12 ") != 12 {
		t.Errorf("expected 12")
	}
	if OptionalInt32("") != 0 || OptionalInt32("x") != 0 {
		t.Errorf("invalid input should give 0")
	}
}

func TestIsBalanced(t *testing.T) {
	cases := map[string]bool{
		"":          true,
		"p.1-5":     true,
		"p(1)-2":    true,
		"(a (b))":   true,
		"p(1)-2(":   false,
		")(":        false,
		"trad. (fr": false,
	}
	for in, want := range cases {
		if got := IsBalanced(in); got != want {
			t.Errorf("IsBalanced(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHasSpace(t *testing.T) {
	cases := map[string]bool{
		"1":     false,
		"1 bis": true,
		"1\tB":  true,
		"":      false,
	}
	for in, want := range cases {
		if got := HasSpace(in); got != want {
			t.Errorf("HasSpace(%q) = %v, want %v", in, got, want)
		}
	}
}
