package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesCodeAndClass(t *testing.T) {
	err := fmt.Errorf("collect: %w", Errorf(UnresolvedName, "name %q", "foo"))
	if !errors.Is(err, UnresolvedName) {
		t.Fatalf("expected code match")
	}
	if !errors.Is(err, ErrLookup) {
		t.Fatalf("expected class match")
	}
	if errors.Is(err, ErrNarrowing) || errors.Is(err, UnresolvedType) {
		t.Fatalf("unexpected match")
	}
	if code, ok := CodeOf(err); !ok || code != UnresolvedName {
		t.Fatalf("CodeOf = %v, %v", code, ok)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(InputDecode, cause, "file %s", "a.toml")
	if !errors.Is(err, cause) || !errors.Is(err, ErrInput) {
		t.Fatalf("wrap lost its chain: %v", err)
	}
}

func TestInFileStampsOnce(t *testing.T) {
	err := InFile(Errorf(NotAVariable, "x"), "main")
	err = InFile(err, "other")
	var de *Error
	if !errors.As(err, &de) || de.File != "main" {
		t.Fatalf("file = %q", de.File)
	}
}

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(&Error{Code: UnresolvedType, File: "b"})
	b.Add(&Error{Code: UnresolvedName, File: "a"})
	if b.Add(errors.New("dropped")) {
		t.Fatalf("expected limit to drop the third error")
	}
	b.Sort()
	if b.Items()[0].File != "a" {
		t.Fatalf("sort by file failed")
	}
	if !errors.Is(b.Err(), UnresolvedType) {
		t.Fatalf("joined error should match members")
	}
}

func TestBagAddAllFlattensJoins(t *testing.T) {
	b := NewBag(3)
	err := errors.Join(
		Errorf(UnresolvedName, "x"),
		errors.Join(Errorf(NoMethod, "m"), errors.New("plain")),
	)
	if !b.AddAll(err) {
		t.Fatalf("three errors fit a bag of three")
	}
	if b.Len() != 3 || b.Items()[2].Code != UnknownCode {
		t.Fatalf("unexpected items %v", b.Items())
	}
	if b.AddAll(errors.Join(Errorf(ArgCount, "a"))) {
		t.Fatalf("a full bag should report the drop")
	}
}
