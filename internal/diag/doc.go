// Package diag defines the error taxonomy shared by every phase of the
// semantic core.
//
// # Classes
//
//   - Narrowing – a polymorphic handle or declaration was asked to be a kind
//     it is not ("not a variable declaration"). Callers decide whether to
//     propagate or recover.
//   - Lookup – an unresolved name or type, a missing declaration, a wrong
//     arity. The collector aborts the current unit and returns the error;
//     the session arenas stay consistent.
//   - Unsupported – input the core deliberately does not handle, e.g.
//     generic trait implementations.
//
// Internal-consistency failures are not modelled here: they are pipeline
// bugs and panic at the point of detection.
//
// # Matching
//
// Every *Error matches its Code and its class sentinel with errors.Is:
//
//	errors.Is(err, diag.UnresolvedName) // exact code
//	errors.Is(err, diag.ErrLookup)      // any lookup failure
//
// Bag accumulates errors per session, with a limit, for the driver.
package diag
