package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionHasDefault(t *testing.T) {
	if Version == "" {
		t.Fatalf("Version should have a default value")
	}
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	tests := []struct {
		in, want string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"dev", "dev"},
		{"1.2", "1.2"},
	}
	for _, tt := range tests {
		if got := Colored(tt.in); got != tt.want {
			t.Fatalf("Colored(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColoredHighlightsParts(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	got := Colored("2.0.1")
	if got == "2.0.1" {
		t.Fatalf("expected escapes around version parts")
	}
}
