package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// ShowCause prints the wrapped cause on its own indented line instead
	// of appending it to the message.
	ShowCause bool
	Max       int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // truncates the output, not the Bag
	IncludeCause bool
}
