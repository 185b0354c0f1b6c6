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

package tree

// TypeRefKind tags which variant a TypeRef holds.
type TypeRefKind int

const (
	// RefSimple is a single identifier, e.g. `String` or `T`; whether it
	// names a type variable, a same-package type, or an imported type
	// is decided later by scope resolution, not by the parser.
	RefSimple TypeRefKind = iota
	// RefQualified is a dotted name, e.g. `java.util.List`.
	RefQualified
	// RefParameterized is a (possibly qualified) name applied to type
	// arguments, e.g. `List<String>` or `Outer<A>.Inner<B>`.
	RefParameterized
	RefWildcard
	RefArray
	RefPrimitive
	RefVoid
)

// TypeRef is an unresolved type reference as written in source: a
// closed union mirroring types.Type's shape but keyed by name rather
// than by symbol.Class.
type TypeRef struct {
	Kind TypeRefKind

	// RefSimple/RefQualified/RefParameterized: dot-separated name parts.
	Names []string

	// RefParameterized: type arguments, parallel to a nested
	// application when Names crosses an Outer.Inner boundary is instead
	// represented as a chain via Qualifier.
	TypeArgs []TypeRef

	// Qualifier, when non-nil, is the enclosing parameterized type of a
	// member type reference, e.g. the `Outer<A>` in `Outer<A>.Inner<B>`.
	Qualifier *TypeRef

	// RefArray
	Elem *TypeRef

	// RefPrimitive: one of "boolean", "byte", "short", "char", "int",
	// "long", "float", "double".
	Prim string

	// RefWildcard
	WildKind    WildRefKind
	Bound       *TypeRef
	Annotations []AnnotationDecl

	Pos Pos
}

// WildRefKind enumerates wildcard shapes at the syntax level.
type WildRefKind int

const (
	WildRefUnbounded WildRefKind = iota
	WildRefUpper
	WildRefLower
)
