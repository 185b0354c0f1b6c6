// Copyright 2018 The Jadep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package types models the language's type system as a closed tagged
// union, per the single-match-site design used throughout this module
// instead of open polymorphism over a visitor hierarchy.
package types

import "github.com/gojvm/hdrc/symbol"

// Kind tags which variant a Type holds.
type Kind int

const (
	KindClass Kind = iota
	KindArray
	KindTyVar
	KindPrim
	KindWild
	KindVoid
	KindIntersection
	KindError
)

// PrimKind enumerates the primitive type kinds.
type PrimKind int

const (
	Boolean PrimKind = iota
	Byte
	Short
	Char
	Int
	Long
	Float
	Double
)

// Descriptor returns the single-character erased descriptor of a
// primitive kind, e.g. Boolean -> "Z".
func (p PrimKind) Descriptor() string {
	return [...]string{"Z", "B", "S", "C", "I", "J", "F", "D"}[p]
}

// WildKind enumerates the three wildcard shapes.
type WildKind int

const (
	Unbounded WildKind = iota
	UpperBounded
	LowerBounded
)

// ClassPart is one simple class part of a ClassTy: the symbol of one
// enclosing (or the innermost) class, its type arguments, and any
// type-use annotations on this part.
type ClassPart struct {
	Sym         symbol.Class
	Args        []Type
	Annotations []Annotation
}

// Type is a closed tagged union. Exactly one of
// the *-prefixed fields is meaningful, selected by Kind.
type Type struct {
	Kind Kind

	// KindClass: non-empty, outermost to innermost.
	ClassParts []ClassPart

	// KindArray
	Elem        *Type
	ArrayAnnos  []Annotation

	// KindTyVar
	TyVar     symbol.TyVar
	TyVarAnno []Annotation

	// KindPrim
	Prim     PrimKind
	PrimAnno []Annotation

	// KindWild
	Wild     WildKind
	Bound    *Type // nil for Unbounded
	WildAnno []Annotation

	// KindIntersection: only appears as a type-parameter bound.
	Bounds []Type
}

// Void is the singleton VoidTy.
var Void = Type{Kind: KindVoid}

// Error is the sentinel for an unresolved name. It propagates through
// later stages without panicking; anything consuming it must treat it
// as a class with no members.
var Error = Type{Kind: KindError}

// Prim builds a PrimTy.
func Prim(k PrimKind) Type { return Type{Kind: KindPrim, Prim: k} }

// Class builds a ClassTy with a single, non-nested part and no type
// arguments, e.g. Class("java/util/List").
func Class(sym symbol.Class) Type {
	return Type{Kind: KindClass, ClassParts: []ClassPart{{Sym: sym}}}
}

// ClassArgs builds a ClassTy with a single part and type arguments.
func ClassArgs(sym symbol.Class, args ...Type) Type {
	return Type{Kind: KindClass, ClassParts: []ClassPart{{Sym: sym, Args: args}}}
}

// Array builds an ArrayTy wrapping elem.
func Array(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// Var builds a TyVar type referencing sym.
func Var(sym symbol.TyVar) Type { return Type{Kind: KindTyVar, TyVar: sym} }

// WildcardUnbounded builds the unbounded wildcard.
func WildcardUnbounded() Type { return Type{Kind: KindWild, Wild: Unbounded} }

// WildcardUpper builds an upper-bounded wildcard (? extends bound).
func WildcardUpper(bound Type) Type {
	b := bound
	return Type{Kind: KindWild, Wild: UpperBounded, Bound: &b}
}

// WildcardLower builds a lower-bounded wildcard (? super bound).
func WildcardLower(bound Type) Type {
	b := bound
	return Type{Kind: KindWild, Wild: LowerBounded, Bound: &b}
}

// Intersection builds an IntersectionTy from its member ClassTys.
func Intersection(bounds ...Type) Type {
	return Type{Kind: KindIntersection, Bounds: bounds}
}

// IsError reports whether t is the ErrorTy sentinel.
func (t Type) IsError() bool { return t.Kind == KindError }

// IsGeneric reports whether t uses any type variable or parameterized
// class, which the signature writer uses to decide whether a signature
// is needed at all: omitted entirely when a declaration
// uses no generics and no parameterized/variable types.
func (t Type) IsGeneric() bool {
	switch t.Kind {
	case KindTyVar:
		return true
	case KindArray:
		return t.Elem.IsGeneric()
	case KindWild:
		return true
	case KindIntersection:
		return true
	case KindClass:
		for _, p := range t.ClassParts {
			if len(p.Args) > 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// InnermostClass returns the symbol of the innermost class part of a
// ClassTy. Panics if t is not KindClass; callers must check Kind first.
func (t Type) InnermostClass() symbol.Class {
	return t.ClassParts[len(t.ClassParts)-1].Sym
}

// Annotation is a type-use or declaration annotation attached to a
// type, carried alongside it so the lowerer can emit
// RuntimeVisible/InvisibleTypeAnnotations. The evaluated contents live
// in AnnoInfo (see const.go); Annotation here is the raw reference used
// while binding types, before element values are evaluated.
type Annotation struct {
	Sym symbol.Class
}
