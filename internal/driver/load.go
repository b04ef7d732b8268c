package driver

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"decc/internal/ast"
	"decc/internal/diag"
	"decc/internal/trace"
)

// Digest is the SHA-256 of fixture contents.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Fixture is one decoded input file.
type Fixture struct {
	Path   string
	Digest Digest
	File   ast.File
}

// LoadFixtures reads and decodes paths in parallel. The result keeps the
// order of paths. jobs <= 0 means GOMAXPROCS.
func LoadFixtures(ctx context.Context, paths []string, jobs int) ([]Fixture, error) {
	return LoadFixturesProgress(ctx, paths, jobs, nil)
}

// LoadFixturesProgress is LoadFixtures reporting each path to sink.
func LoadFixturesProgress(ctx context.Context, paths []string, jobs int, sink ProgressSink) ([]Fixture, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "load fixtures")
	defer span.End("")

	for _, path := range paths {
		emit(sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}
	// every goroutine owns one slot
	out := make([]Fixture, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
			start := time.Now()
			fx, err := loadFixture(path)
			emit(sink, Event{File: path, Stage: StageLoad, Status: statusOf(err), Err: err, Elapsed: time.Since(start)})
			if err != nil {
				return err
			}
			out[i] = fx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func loadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, diag.Wrap(diag.InputDecode, err, "read %s", path)
	}
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	file, err := DecodeFixture(data, fallback)
	if err != nil {
		return Fixture{}, err
	}
	return Fixture{Path: path, Digest: sha256.Sum256(data), File: file}, nil
}

// CombineDigest keys a summary: the fixture digests and file names in
// order plus the diagnostics cap, since all of them shape the summary.
// The same inputs given in a different order key a different summary.
func CombineDigest(fixtures []Fixture, maxDiagnostics int) Digest {
	h := sha256.New()
	buf := binary.BigEndian.AppendUint16(nil, summarySchemaVersion)
	buf = strconv.AppendInt(buf, int64(maxDiagnostics), 10)
	_, _ = h.Write(append(buf, ';'))
	for _, fx := range fixtures {
		_, _ = h.Write(fx.Digest[:])
		buf = strconv.AppendInt(buf[:0], int64(len(fx.File.Name)), 10)
		buf = append(append(buf, ':'), fx.File.Name...)
		_, _ = h.Write(buf)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
