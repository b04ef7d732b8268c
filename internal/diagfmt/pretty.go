package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"decc/internal/diag"
)

var (
	severityColor = color.New(color.FgRed, color.Bold)
	codeColor     = color.New(color.FgYellow)
	fileColor     = color.New(color.Bold)
	causeColor    = color.New(color.FgHiBlack)
)

// Pretty writes one diagnostic per line in bag order:
//
//	<file>: error[<CODE>]: <title>: <message>
//
// Callers sort the bag first for stable output.
func Pretty(w io.Writer, items []*diag.Error, opts PrettyOpts) {
	paint := func(c *color.Color, s string) string {
		if !opts.Color {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}
	for _, d := range limit(items, opts.Max) {
		line := ""
		if d.File != "" {
			line = paint(fileColor, d.File) + ": "
		}
		line += paint(severityColor, "error") + "[" + paint(codeColor, d.Code.ID()) + "]: " + d.Code.Title()
		if d.Message != "" {
			line += ": " + d.Message
		}
		if d.Err != nil && !opts.ShowCause {
			line += ": " + d.Err.Error()
		}
		fmt.Fprintln(w, line)
		if d.Err != nil && opts.ShowCause {
			fmt.Fprintf(w, "  %s %s\n", paint(causeColor, "caused by:"), d.Err.Error())
		}
	}
	if n := len(items) - len(limit(items, opts.Max)); n > 0 {
		fmt.Fprintf(w, "... %d more\n", n)
	}
}

func limit(items []*diag.Error, max int) []*diag.Error {
	if max > 0 && max < len(items) {
		return items[:max]
	}
	return items
}
