package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase  // session and passes: load, collect
	LevelDetail // plus one span per fixture file
	LevelDebug  // plus declarations and instantiations
)

var levelNames = []string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest scope recorded at each level; error records only failure points
var levelScopes = []Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeDecl,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts off|error|phase|detail|debug in any case.
func ParseLevel(s string) (Level, error) {
	return parseName[Level]("trace level", levelNames, s)
}

// ShouldEmit reports whether events of scope pass at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScopes) {
		return false
	}
	return scope <= levelScopes[l]
}

// parseName looks s up in a table indexed by value. Empty entries are
// holes in the enumeration.
func parseName[T ~uint8](what string, names []string, s string) (T, error) {
	valid := make([]string, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		if strings.EqualFold(name, s) {
			return T(i), nil
		}
		valid = append(valid, name)
	}
	return 0, fmt.Errorf("unknown %s %q (want %s)", what, s, strings.Join(valid, "|"))
}
