package diagfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"decc/internal/diag"
)

func sample() []*diag.Error {
	unresolved := diag.Errorf(diag.UnresolvedName, "missing")
	unresolved.File = "main"
	decode := diag.Wrap(diag.InputDecode, errors.New("unexpected EOF"), "read broken.toml")
	return []*diag.Error{unresolved, decode}
}

func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample(), PrettyOpts{})
	got := buf.String()
	want := "main: error[" + diag.UnresolvedName.ID() + "]: " + diag.UnresolvedName.Title() + ": missing\n"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("got %q, want prefix %q", got, want)
	}
	if !strings.Contains(got, "read broken.toml: unexpected EOF\n") {
		t.Fatalf("cause should follow the message: %q", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Fatalf("plain output has escapes: %q", got)
	}
}

func TestPrettyCauseAndLimit(t *testing.T) {
	var buf bytes.Buffer
	items := sample()
	Pretty(&buf, []*diag.Error{items[1], items[0]}, PrettyOpts{ShowCause: true, Max: 1})
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if lines[1] != "  caused by: unexpected EOF" || lines[2] != "... 1 more" {
		t.Fatalf("unexpected lines %q", lines)
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sample()[:1], PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("colored output lacks escapes: %q", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sample(), JSONOpts{Max: 5, IncludeCause: true}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || out.Total != 2 {
		t.Fatalf("counts = %d/%d", out.Count, out.Total)
	}
	first := out.Diagnostics[0]
	if first.Code != diag.UnresolvedName.ID() || first.File != "main" || first.Class != diag.ErrLookup.Error() {
		t.Fatalf("unexpected first diagnostic %+v", first)
	}
	if out.Diagnostics[1].Cause != "unexpected EOF" {
		t.Fatalf("cause missing: %+v", out.Diagnostics[1])
	}
}

func TestBuildDiagnosticsOutputTruncates(t *testing.T) {
	out := BuildDiagnosticsOutput(sample(), JSONOpts{Max: 1})
	if out.Count != 1 || out.Total != 2 || out.Diagnostics[0].Cause != "" {
		t.Fatalf("unexpected output %+v", out)
	}
}
