package tier

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/liquiditick/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{"pro", Pro},
		{"PRO", Pro},
		{" pro ", Pro},
		{"free", Free},
		{"", Free},
		{"enterprise", Free},
	}
	for _, tc := range tests {
		if got := Parse(tc.in); got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseStrict(t *testing.T) {
	if got, err := ParseStrict("Pro"); err != nil || got != Pro {
		t.Fatalf("ParseStrict(Pro) = %q, %v", got, err)
	}
	if got, err := ParseStrict("free"); err != nil || got != Free {
		t.Fatalf("ParseStrict(free) = %q, %v", got, err)
	}

	_, err := ParseStrict("gold")
	if !errors.Is(err, domain.ErrInvalidTier) {
		t.Fatalf("expected ErrInvalidTier, got %v", err)
	}
}

func TestIsPro(t *testing.T) {
	if !Pro.IsPro() {
		t.Error("Pro.IsPro() = false")
	}
	if Free.IsPro() {
		t.Error("Free.IsPro() = true")
	}
}
