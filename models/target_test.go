package models

import (
	"errors"
	"testing"
)

func TestURLTarget(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"https://example.com/page", false},
		{"http://example.com", false},
		{"ftp://example.com/file", true},
		{"/relative/only", true},
		{"example.com", true},
		{"", true},
		{"https://", true},
	}

	for _, tt := range tests {
		target, err := URLTarget(tt.in)
		if tt.wantErr {
			var se *ScrapeError
			if !errors.As(err, &se) || se.Code != ErrCodeInvalidTarget {
				t.Errorf("URLTarget(%q) error = %v, want INVALID_TARGET", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("URLTarget(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if target.Kind != TargetURL || target.Value != tt.in {
			t.Errorf("URLTarget(%q) = %+v", tt.in, target)
		}
	}
}

func TestKeywordTarget(t *testing.T) {
	target, err := KeywordTarget("  golang testing  ")
	if err != nil {
		t.Fatalf("KeywordTarget: %v", err)
	}
	if target.Kind != TargetKeyword || target.Value != "golang testing" {
		t.Errorf("KeywordTarget trimmed = %+v", target)
	}

	for _, bad := range []string{"", "   ", "\t\n"} {
		if _, err := KeywordTarget(bad); err == nil {
			t.Errorf("KeywordTarget(%q) accepted blank input", bad)
		}
	}
}

func TestScrapeError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := NewScrapeError(ErrCodeNavigation, "load failed", inner)

	if !errors.Is(err, inner) {
		t.Error("Unwrap lost the inner error")
	}
	if err.Error() != "NAVIGATION_FAILED: load failed: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}

	bare := NewScrapeError(ErrCodeInternal, "oops", nil)
	if bare.Error() != "INTERNAL_ERROR: oops" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
