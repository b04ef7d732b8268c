package diagfmt

import (
	"encoding/json"
	"io"

	"decc/internal/diag"
)

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Class    string `json:"class,omitempty"`
	Title    string `json:"title"`
	Message  string `json:"message,omitempty"`
	File     string `json:"file,omitempty"`
	Cause    string `json:"cause,omitempty"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Total       int              `json:"total"`
}

// BuildDiagnosticsOutput builds the JSON document without encoding it.
func BuildDiagnosticsOutput(items []*diag.Error, opts JSONOpts) DiagnosticsOutput {
	kept := limit(items, opts.Max)
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, len(kept)),
		Count:       len(kept),
		Total:       len(items),
	}
	for _, d := range kept {
		dj := DiagnosticJSON{
			Severity: "error",
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			File:     d.File,
		}
		if class := d.Code.Class(); class != nil {
			dj.Class = class.Error()
		}
		if opts.IncludeCause && d.Err != nil {
			dj.Cause = d.Err.Error()
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes the diagnostics as one indented JSON document.
func JSON(w io.Writer, items []*diag.Error, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(items, opts))
}
