// Package decl is the declaration engine: an append-only arena storing
// every named declaration of a session once, behind a stable handle.
package decl

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"decc/internal/diag"
	"decc/internal/ids"
	"decc/internal/ty"
)

type entry struct {
	kind      ids.DeclarationKind
	function  *ty.FunctionDecl
	structure *ty.StructDecl
	trait     *ty.TraitDecl
	traitImpl *ty.TraitImpl
	traitFn   *ty.TraitFn
}

func (e *entry) name() string {
	switch e.kind {
	case ids.DeclFunction:
		return e.function.Name
	case ids.DeclStruct:
		return e.structure.Name
	case ids.DeclTrait:
		return e.trait.Name
	case ids.DeclTraitImpl:
		return e.traitImpl.TraitName
	case ids.DeclTraitFn:
		return e.traitFn.Name
	default:
		return ""
	}
}

// Engine stores declarations. Entries are never overwritten or mutated.
type Engine struct {
	data []entry
}

// NewEngine creates an engine with an optional capacity hint.
func NewEngine(capacity uint32) *Engine {
	if capacity == 0 {
		capacity = 64
	}
	return &Engine{
		data: make([]entry, 1, capacity+1), // index 0 reserved for NoDeclarationID
	}
}

func (e *Engine) push(en entry) ids.DeclarationID {
	value, err := safecast.Conv[uint32](len(e.data))
	if err != nil {
		panic(fmt.Errorf("declaration arena overflow: %w", err))
	}
	e.data = append(e.data, en)
	return ids.DeclarationID{Index: value, Kind: en.kind}
}

// Len reports the number of stored declarations.
func (e *Engine) Len() int { return len(e.data) - 1 }

func (e *Engine) get(id ids.DeclarationID, want ids.DeclarationKind) (*entry, error) {
	if id.Index == 0 || int(id.Index) >= len(e.data) {
		return nil, diag.Errorf(diag.DeclNotFound, "%s", id)
	}
	en := &e.data[id.Index]
	if en.kind != want || id.Kind != want {
		return nil, diag.Errorf(diag.DeclKindMismatch, "%s is a %s, expected %s", id, en.kind, want)
	}
	return en, nil
}

// NameAs returns the display name of id after checking that both the
// handle and the stored entry are of kind want.
func (e *Engine) NameAs(id ids.DeclarationID, want ids.DeclarationKind) (string, error) {
	en, err := e.get(id, want)
	if err != nil {
		return "", err
	}
	return en.name(), nil
}

// Name returns the display name of any declaration.
func (e *Engine) Name(id ids.DeclarationID) (string, error) {
	if id.Index == 0 || int(id.Index) >= len(e.data) {
		return "", diag.Errorf(diag.DeclNotFound, "%s", id)
	}
	en := &e.data[id.Index]
	if en.kind != id.Kind {
		return "", diag.Errorf(diag.DeclKindMismatch, "%s is a %s", id, en.kind)
	}
	return en.name(), nil
}

// Ref builds a ty.Ref with the cached display name.
func (e *Engine) Ref(id ids.DeclarationID) (ty.Ref, error) {
	name, err := e.Name(id)
	if err != nil {
		return ty.Ref{}, err
	}
	return ty.Ref{ID: id, Name: name}, nil
}

// Functions -------------------------------------------------------------------

func (e *Engine) InsertFunction(fn ty.FunctionDecl) ids.DeclarationID {
	c := cloneFunction(fn)
	return e.push(entry{kind: ids.DeclFunction, function: &c})
}

func (e *Engine) GetFunction(id ids.DeclarationID) (ty.FunctionDecl, error) {
	en, err := e.get(id, ids.DeclFunction)
	if err != nil {
		return ty.FunctionDecl{}, err
	}
	return cloneFunction(*en.function), nil
}

// Structs ---------------------------------------------------------------------

func (e *Engine) InsertStruct(st ty.StructDecl) ids.DeclarationID {
	c := cloneStruct(st)
	return e.push(entry{kind: ids.DeclStruct, structure: &c})
}

func (e *Engine) GetStruct(id ids.DeclarationID) (ty.StructDecl, error) {
	en, err := e.get(id, ids.DeclStruct)
	if err != nil {
		return ty.StructDecl{}, err
	}
	return cloneStruct(*en.structure), nil
}

// Traits ----------------------------------------------------------------------

func (e *Engine) InsertTrait(tr ty.TraitDecl) ids.DeclarationID {
	c := tr
	c.InterfaceSurface = slices.Clone(tr.InterfaceSurface)
	return e.push(entry{kind: ids.DeclTrait, trait: &c})
}

func (e *Engine) GetTrait(id ids.DeclarationID) (ty.TraitDecl, error) {
	en, err := e.get(id, ids.DeclTrait)
	if err != nil {
		return ty.TraitDecl{}, err
	}
	out := *en.trait
	out.InterfaceSurface = slices.Clone(out.InterfaceSurface)
	return out, nil
}

func (e *Engine) InsertTraitFn(fn ty.TraitFn) ids.DeclarationID {
	c := fn
	c.Parameters = slices.Clone(fn.Parameters)
	return e.push(entry{kind: ids.DeclTraitFn, traitFn: &c})
}

func (e *Engine) GetTraitFn(id ids.DeclarationID) (ty.TraitFn, error) {
	en, err := e.get(id, ids.DeclTraitFn)
	if err != nil {
		return ty.TraitFn{}, err
	}
	out := *en.traitFn
	out.Parameters = slices.Clone(out.Parameters)
	return out, nil
}

// Trait implementations -------------------------------------------------------

func (e *Engine) InsertTraitImpl(impl ty.TraitImpl) ids.DeclarationID {
	c := cloneTraitImpl(impl)
	return e.push(entry{kind: ids.DeclTraitImpl, traitImpl: &c})
}

func (e *Engine) GetTraitImpl(id ids.DeclarationID) (ty.TraitImpl, error) {
	en, err := e.get(id, ids.DeclTraitImpl)
	if err != nil {
		return ty.TraitImpl{}, err
	}
	return cloneTraitImpl(*en.traitImpl), nil
}

func cloneFunction(fn ty.FunctionDecl) ty.FunctionDecl {
	out := fn
	out.TypeParameters = slices.Clone(fn.TypeParameters)
	out.Parameters = slices.Clone(fn.Parameters)
	out.Body = slices.Clone(fn.Body)
	return out
}

func cloneStruct(st ty.StructDecl) ty.StructDecl {
	out := st
	out.TypeParameters = slices.Clone(st.TypeParameters)
	out.Fields = slices.Clone(st.Fields)
	return out
}

func cloneTraitImpl(impl ty.TraitImpl) ty.TraitImpl {
	out := impl
	out.TypeParameters = slices.Clone(impl.TypeParameters)
	out.Methods = slices.Clone(impl.Methods)
	return out
}
