package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// setupColor applies --color globally and reports whether stdout is
// colored.
func setupColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var on bool
	switch strings.ToLower(mode) {
	case "auto":
		on = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	case "on":
		on = true
	case "off":
		on = false
	default:
		return false, fmt.Errorf("invalid color mode %q (must be auto, on or off)", mode)
	}
	color.NoColor = !on
	return on, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
