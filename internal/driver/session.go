package driver

import (
	"context"
	"strings"

	"decc/internal/ast"
	"decc/internal/collect"
	"decc/internal/decl"
	"decc/internal/diag"
	"decc/internal/graph"
	"decc/internal/ids"
	"decc/internal/observ"
	"decc/internal/trace"
	"decc/internal/ty"
	"decc/internal/typeres"
	"decc/internal/types"
)

// Options configures a session.
type Options struct {
	// MaxDiagnostics caps the bag; <= 0 uses the bag default.
	MaxDiagnostics int
	// Capacity pre-sizes the declaration engine and the graph.
	Capacity uint32
	// Progress receives one collect event per fixture; nil disables it.
	Progress ProgressSink
}

// Session owns one type engine, one declaration engine and one graph.
// Collection is single-threaded; a session must not be shared between
// goroutines.
type Session struct {
	Types     *types.Engine
	Decls     *decl.Engine
	Graph     *graph.Graph
	Collector *collect.Collector
	Bag       *diag.Bag
	Timer     *observ.Timer
	Progress  ProgressSink

	app       ty.Application
	collected bool
}

func NewSession(opts Options) *Session {
	te := types.NewEngine()
	de := decl.NewEngine(opts.Capacity)
	g := graph.New(opts.Capacity)
	return &Session{
		Types:     te,
		Decls:     de,
		Graph:     g,
		Collector: collect.New(te, de, g, typeres.New(te, de)),
		Bag:       diag.NewBag(opts.MaxDiagnostics),
		Timer:     observ.NewTimer(),
		Progress:  opts.Progress,
	}
}

// Collect runs the collector over fixtures in order. Failing files are
// recorded in the bag and left out of the application; the returned error
// joins everything the bag holds.
func (s *Session) Collect(ctx context.Context, fixtures []Fixture) (ty.Application, error) {
	ctx, span := trace.Start(ctx, trace.ScopeSession, "session")
	defer span.End("")

	in := ast.Application{Files: make([]ast.File, len(fixtures))}
	for i, fx := range fixtures {
		in.Files[i] = fx.File
	}
	emit(s.Progress, Event{Stage: StageCollect, Status: StatusWorking})
	var app ty.Application
	_ = s.Timer.Time("collect", func() error {
		var err error
		app, err = s.Collector.CollectApplication(ctx, in)
		s.Bag.AddAll(err)
		return err
	})
	s.Bag.Sort()
	s.app, s.collected = app, true
	s.reportFiles(fixtures)
	return app, s.Bag.Err()
}

// reportFiles emits the collect outcome of every fixture, matching bag
// entries by compilation unit name.
func (s *Session) reportFiles(fixtures []Fixture) {
	if s.Progress == nil {
		return
	}
	failed := make(map[string]error)
	for _, d := range s.Bag.Items() {
		if _, seen := failed[d.File]; !seen {
			failed[d.File] = d
		}
	}
	for _, fx := range fixtures {
		err := failed[fx.File.Name]
		emit(s.Progress, Event{File: fx.Path, Stage: StageCollect, Status: statusOf(err), Err: err})
	}
	emit(s.Progress, Event{Stage: StageCollect, Status: statusOf(s.Bag.Err())})
}

// Application is the result of the last Collect.
func (s *Session) Application() (ty.Application, bool) {
	return s.app, s.collected
}

// Summary is the cacheable digest of a collection run.
type Summary struct {
	Files        []FileSummary       `msgpack:"files"`
	Diagnostics  []DiagnosticSummary `msgpack:"diagnostics"`
	Types        int                 `msgpack:"types"`
	Declarations int                 `msgpack:"declarations"`
	Nodes        int                 `msgpack:"nodes"`
	Instances    int                 `msgpack:"instances"`
}

// FileSummary lists the top-level declarations of one collected file.
type FileSummary struct {
	Name         string        `msgpack:"name"`
	Declarations []DeclSummary `msgpack:"declarations"`
}

// DeclSummary describes one declaration. Type is the ascription of a
// variable, the return type of a function or the implementing type of an
// impl.
type DeclSummary struct {
	Kind      string   `msgpack:"kind"`
	Name      string   `msgpack:"name"`
	Type      string   `msgpack:"type,omitempty"`
	Instances []string `msgpack:"instances,omitempty"`
}

type DiagnosticSummary struct {
	Code    string `msgpack:"code"`
	File    string `msgpack:"file,omitempty"`
	Message string `msgpack:"message"`
}

// Summary digests the last Collect.
func (s *Session) Summary() (Summary, error) {
	out := Summary{
		Types:        s.Types.Len(),
		Declarations: s.Decls.Len(),
		Nodes:        s.Graph.Len(),
	}
	for _, f := range s.app.Files {
		fs := FileSummary{Name: s.Graph.Node(f).Label}
		for _, scope := range s.Graph.Children(f, graph.FileContents) {
			for _, n := range s.Graph.Children(scope, graph.NodeContents) {
				d, ok, err := s.declSummary(n)
				if err != nil {
					return Summary{}, err
				}
				if ok {
					fs.Declarations = append(fs.Declarations, d)
				}
			}
		}
		out.Files = append(out.Files, fs)
	}
	for i := 1; i <= s.Graph.Len(); i++ {
		out.Instances += len(s.Graph.Instances(ids.CollectionIndex(i)))
	}
	for _, e := range s.Bag.Items() {
		out.Diagnostics = append(out.Diagnostics, DiagnosticSummary{
			Code:    e.Code.ID(),
			File:    e.File,
			Message: e.Error(),
		})
	}
	return out, nil
}

func (s *Session) declSummary(idx ids.CollectionIndex) (DeclSummary, bool, error) {
	n := s.Graph.Node(idx).Syntax
	if n.Kind != ty.NodeDeclaration {
		return DeclSummary{}, false, nil
	}
	d := n.Decl
	out := DeclSummary{Kind: d.Kind.String()}
	switch d.Kind {
	case ty.DeclVariable:
		out.Name = d.Variable.Name
		out.Type = s.Types.Display(d.Variable.TypeAscription)
	case ty.DeclFunction:
		fn, err := s.Decls.GetFunction(d.Ref.ID)
		if err != nil {
			return DeclSummary{}, false, err
		}
		out.Name = fn.Name
		out.Type = s.Types.Display(fn.ReturnType)
	case ty.DeclTraitImpl:
		impl, err := s.Decls.GetTraitImpl(d.Ref.ID)
		if err != nil {
			return DeclSummary{}, false, err
		}
		out.Name = impl.TraitName
		out.Type = s.Types.Display(impl.TypeImplementingFor)
	case ty.DeclGenericParam:
		return DeclSummary{}, false, nil
	default:
		out.Name = d.Ref.Name
	}
	for _, in := range s.Graph.Instances(idx) {
		parts := make([]string, len(in.Args))
		for i, a := range in.Args {
			parts[i] = s.Types.Display(a)
		}
		out.Instances = append(out.Instances, strings.Join(parts, ", "))
	}
	return out, true, nil
}
