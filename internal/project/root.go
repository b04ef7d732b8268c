package project

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// ManifestName is the file that marks a decc project root.
const ManifestName = "decc.toml"

// FindManifest returns the decc.toml that governs start. start may be the
// manifest itself, a fixture file or a directory; files are searched from
// their own directory. The nearest manifest wins.
func FindManifest(start string) (path string, ok bool, err error) {
	if start == "" {
		start = "."
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", false, fmt.Errorf("project: resolve %q: %w", start, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false, fmt.Errorf("project: %w", err)
	}
	if !info.IsDir() {
		if info.Name() == ManifestName {
			return abs, true, nil
		}
		abs = filepath.Dir(abs)
	}
	for dir := range ancestors(abs) {
		candidate := filepath.Join(dir, ManifestName)
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			return candidate, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("project: stat %s: %w", candidate, err)
		}
	}
	return "", false, nil
}

// ancestors yields dir and each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}
