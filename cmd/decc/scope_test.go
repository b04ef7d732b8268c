package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"decc/internal/driver"
	"decc/internal/graph"
	"decc/internal/pretty"
)

const nestedFixture = `
name = "main"

[[node]]
kind = "fn"
name = "outer"
returns = "u8"

[[node.body]]
kind = "fn"
name = "inner"
params = [{ name = "ß", type = "u16" }]
returns = "u16"
body = [{ kind = "return", expr = { var = "ß" } }]

[[node.body]]
kind = "return"
expr = { lit = "1u8" }
`

func loadSession(t *testing.T, src string) (*driver.Session, graph.Visible) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.toml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fixtures, err := driver.LoadFixtures(context.Background(), []string{path}, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := driver.NewSession(driver.Options{})
	app, err := s.Collect(context.Background(), fixtures)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	root := s.Graph.Children(app.Files[0], graph.FileContents)[0]
	return s, graph.Visible{Node: root}
}

func TestResolveScopeAndTable(t *testing.T) {
	s, root := loadSession(t, nestedFixture)
	scope, err := resolveScope(s, root.Node, "outer")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	visible, err := graph.VisibleDeclarations(s.Graph, s.Decls, scope)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	var out bytes.Buffer
	if err := writeScopeTable(&out, pretty.New(s.Types, s.Decls, s.Graph, false), visible); err != nil {
		t.Fatalf("table: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], "NAME") {
		t.Fatalf("unexpected table:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "inner  function  (ß: u16) -> u16") {
		t.Fatalf("inner should be listed with its signature:\n%s", out.String())
	}

	if _, err := resolveScope(s, root.Node, "outer/missing"); err == nil {
		t.Fatalf("unknown path segment should fail")
	}
}

func TestPrintSummaryReportsDiagnostics(t *testing.T) {
	var out, errOut bytes.Buffer
	sum := driver.Summary{
		Files:       []driver.FileSummary{{Name: "main", Declarations: []driver.DeclSummary{{Kind: "function", Name: "id", Type: "T", Instances: []string{"u8"}}}}},
		Diagnostics: []driver.DiagnosticSummary{{Code: "LKP2001", Message: "b: boom"}},
	}
	err := printSummary(&out, &errOut, sum)
	if !errors.Is(err, errDiagnostics) {
		t.Fatalf("diagnostics should fail the command, got %v", err)
	}
	if !strings.Contains(out.String(), "function   id: T") || !strings.Contains(errOut.String(), "b: boom") {
		t.Fatalf("out:\n%s\nerr:\n%s", out.String(), errOut.String())
	}
}
