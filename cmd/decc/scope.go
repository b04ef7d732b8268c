package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"decc/internal/driver"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/pretty"
)

var scopePath string

func init() {
	scopeCmd.Flags().StringVar(&scopePath, "path", "", "function path below the file scope, e.g. main/inner")
}

var scopeCmd = &cobra.Command{
	Use:   "scope FILE",
	Short: "List the declarations visible from a scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		colored, cleanup, err := withSetup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		fixtures, err := driver.LoadFixtures(cmd.Context(), args, 1)
		if err != nil {
			return err
		}
		s := driver.NewSession(driver.Options{})
		app, err := s.Collect(cmd.Context(), fixtures)
		if err != nil {
			return err
		}
		scope, err := resolveScope(s, s.Graph.Children(app.Files[0], graph.FileContents)[0], scopePath)
		if err != nil {
			return err
		}
		visible, err := graph.VisibleDeclarations(s.Graph, s.Decls, scope)
		if err != nil {
			return err
		}
		return writeScopeTable(cmd.OutOrStdout(), pretty.New(s.Types, s.Decls, s.Graph, colored), visible)
	},
}

// resolveScope descends from the file scope through nested function
// bodies named by the slash-separated path.
func resolveScope(s *driver.Session, scope ids.CollectionIndex, path string) (ids.CollectionIndex, error) {
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		v, ok, err := graph.LookupFunc(s.Graph, s.Decls, scope, func(v graph.Visible) bool {
			return v.Name == name && v.Decl.Kind == ids.DeclFunction
		})
		if err != nil {
			return ids.NoCollectionIndex, err
		}
		if !ok {
			return ids.NoCollectionIndex, fmt.Errorf("no function %q visible from this scope", name)
		}
		fn, err := s.Decls.GetFunction(v.Decl)
		if err != nil {
			return ids.NoCollectionIndex, err
		}
		scope = fn.BodyScope
	}
	return scope, nil
}

func writeScopeTable(w io.Writer, p *pretty.Printer, visible []graph.Visible) error {
	rows := [][3]string{{"NAME", "KIND", "DETAIL"}}
	for _, v := range visible {
		detail, err := scopeDetail(p, v)
		if err != nil {
			return err
		}
		rows = append(rows, [3]string{v.Name, v.Decl.Kind.String(), detail})
	}
	var widths [2]int
	for _, r := range rows {
		widths[0] = max(widths[0], runewidth.StringWidth(r[0]))
		widths[1] = max(widths[1], runewidth.StringWidth(r[1]))
	}
	for _, r := range rows {
		line := runewidth.FillRight(r[0], widths[0]) + "  " + runewidth.FillRight(r[1], widths[1]) + "  " + r[2]
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func scopeDetail(p *pretty.Printer, v graph.Visible) (string, error) {
	switch v.Decl.Kind {
	case ids.DeclFunction:
		fn, err := p.Decls.GetFunction(v.Decl)
		if err != nil {
			return "", err
		}
		return p.Signature(fn), nil
	case ids.DeclStruct:
		st, err := p.Decls.GetStruct(v.Decl)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d field(s)", len(st.Fields)), nil
	case ids.DeclTraitImpl:
		impl, err := p.Decls.GetTraitImpl(v.Decl)
		if err != nil {
			return "", err
		}
		return "for " + p.Type(impl.TypeImplementingFor), nil
	default:
		return "", nil
	}
}
