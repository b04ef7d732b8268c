package diag

import (
	"errors"
	"fmt"
)

// Code is a compact identifier of a failure. Codes implement error so they
// can be used as errors.Is targets.
type Code uint16

const (
	UnknownCode Code = 0

	// Narrowing
	NarrowInfo       Code = 1000
	DeclKindMismatch Code = 1001
	NotAVariable     Code = 1002
	NotAFunction     Code = 1003
	NotAStruct       Code = 1004
	NotATrait        Code = 1005
	NotATraitImpl    Code = 1006
	NotAGenericParam Code = 1007
	NotAType         Code = 1008

	// Lookup
	LookupInfo     Code = 2000
	UnresolvedName Code = 2001
	UnresolvedType Code = 2002
	DeclNotFound   Code = 2003
	NotCallable    Code = 2004
	TypeArgCount   Code = 2005
	ArgCount       Code = 2006
	UnknownField   Code = 2007
	MissingField   Code = 2008
	NoMethod       Code = 2009

	// Unsupported
	UnsupportedInfo        Code = 3000
	UnsupportedGenericImpl Code = 3001

	// Driver input
	InputInfo    Code = 4000
	InputDecode  Code = 4001
	InputInvalid Code = 4002
)

var (
	// ErrNarrowing matches every narrowing failure.
	ErrNarrowing = errors.New("narrowing failed")
	// ErrLookup matches every lookup failure.
	ErrLookup = errors.New("lookup failed")
	// ErrUnsupported matches every unsupported-feature failure.
	ErrUnsupported = errors.New("unsupported feature")
	// ErrInput matches malformed driver input.
	ErrInput = errors.New("invalid input")
)

var codeDescription = map[Code]string{
	UnknownCode:            "unknown error",
	NarrowInfo:             "narrowing information",
	DeclKindMismatch:       "declaration kind mismatch",
	NotAVariable:           "not a variable declaration",
	NotAFunction:           "not a function declaration",
	NotAStruct:             "not a struct declaration",
	NotATrait:              "not a trait declaration",
	NotATraitImpl:          "not a trait implementation",
	NotAGenericParam:       "not a generic type parameter",
	NotAType:               "name does not denote a type",
	LookupInfo:             "lookup information",
	UnresolvedName:         "unresolved name",
	UnresolvedType:         "unresolved type",
	DeclNotFound:           "declaration not found",
	NotCallable:            "name is not callable",
	TypeArgCount:           "wrong number of type arguments",
	ArgCount:               "wrong number of arguments",
	UnknownField:           "unknown struct field",
	MissingField:           "missing struct field",
	NoMethod:               "no such method",
	UnsupportedInfo:        "unsupported feature information",
	UnsupportedGenericImpl: "generic trait implementations are not supported",
	InputInfo:              "input information",
	InputDecode:            "cannot decode input",
	InputInvalid:           "malformed input tree",
}

// Class returns the class sentinel of c, or nil for UnknownCode.
func (c Code) Class() error {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return ErrNarrowing
	case ic >= 2000 && ic < 3000:
		return ErrLookup
	case ic >= 3000 && ic < 4000:
		return ErrUnsupported
	case ic >= 4000 && ic < 5000:
		return ErrInput
	}
	return nil
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("NAR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("LKP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("UNS%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("INP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

func (c Code) Error() string { return c.String() }
