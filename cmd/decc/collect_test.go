package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"decc/internal/diag"
)

func TestPrintDiagnosticsFormats(t *testing.T) {
	e := diag.Errorf(diag.UnresolvedName, "only_in_a")
	e.File = "b"
	items := []*diag.Error{e}

	var pretty bytes.Buffer
	if err := printDiagnostics(&pretty, items, false); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.HasPrefix(pretty.String(), "b: error[") || !strings.Contains(pretty.String(), "only_in_a") {
		t.Fatalf("pretty output %q", pretty.String())
	}

	collectDiagFormat = "json"
	defer func() { collectDiagFormat = "pretty" }()
	var raw bytes.Buffer
	if err := printDiagnostics(&raw, items, false); err != nil {
		t.Fatalf("json: %v", err)
	}
	var doc struct {
		Count       int `json:"count"`
		Diagnostics []struct {
			Code string `json:"code"`
			File string `json:"file"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(raw.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, raw.String())
	}
	if doc.Count != 1 || doc.Diagnostics[0].Code != diag.UnresolvedName.ID() || doc.Diagnostics[0].File != "b" {
		t.Fatalf("unexpected document %+v", doc)
	}
}
