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

// Package tree defines the parse-tree shape the binder consumes.
// Source parsing is an external collaborator; this package only
// fixes the interface: a closed tagged union per node category
// (declarations, type references, expressions, module directives)
// rather than an open visitor hierarchy, per the "no open polymorphism"
// design note.
package tree

// Pos is a 1-based source position, used only for diagnostics.
type Pos struct {
	Line, Col int
}

// CompilationUnit is one parsed source file.
type CompilationUnit struct {
	Path    string
	Package []string // dot-separated package name parts, nil for the unnamed package
	Imports []Import
	Decls   []*ClassDecl
	Module  *ModuleDecl // non-nil only for a module-info.java unit
}

// Import is one import directive.
type Import struct {
	// Names is the dotted name being imported. For an on-demand
	// import ("import a.b.*;") it names the package/type whose
	// members are imported; the last element of a single-type import
	// is the simple type name.
	Names    []string
	Static   bool
	OnDemand bool
	Pos      Pos
}

// DeclKind tags the kind of a declared type.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclEnum
	DeclAnnotation
	DeclRecord
)

// ClassDecl is one class/interface/enum/annotation/record declaration,
// top-level or nested.
type ClassDecl struct {
	Kind DeclKind
	Name string

	// Modifiers are the raw source modifier keywords ("public",
	// "final", "abstract", ...); the hierarchy/member binders turn
	// these into the appropriate flag bitset.
	Modifiers []string

	TypeParams []TypeParamDecl
	Extends    *TypeRef // nil means implicit java.lang.Object (or no superclass, for an interface)
	Implements []TypeRef

	Fields  []FieldDecl
	Methods []MethodDecl
	Nested  []*ClassDecl

	Annotations []AnnotationDecl

	// RecordComponents is non-empty only for DeclRecord.
	RecordComponents []ParamDecl

	// PermittedSubclasses is non-empty only for a sealed declaration.
	PermittedSubclasses []TypeRef

	Pos Pos
}

// TypeParamDecl is one declared type parameter, e.g. `<T extends Comparable<T>>`.
type TypeParamDecl struct {
	Name   string
	Bounds []TypeRef // first entry determines erasure
	Pos    Pos
}

// FieldDecl is one field declaration. A single source line such as
// `int a = 1, b = 2;` produces two FieldDecls sharing Modifiers/Type.
type FieldDecl struct {
	Modifiers   []string
	Type        TypeRef
	Name        string
	Init        Expr // zero value (ExprKind == 0 / ExprNone) if absent
	Annotations []AnnotationDecl
	Pos         Pos
}

// MethodDecl is one method, constructor, or annotation-element
// declaration.
type MethodDecl struct {
	Modifiers   []string
	TypeParams  []TypeParamDecl
	Return      TypeRef // VoidTy for a constructor
	Name        string
	Params      []ParamDecl
	Variadic    bool // last parameter is declared with `...`
	Thrown      []TypeRef
	HasBody     bool
	DefaultValue *Expr // non-nil only for an annotation element with `default`
	Annotations []AnnotationDecl
	Pos         Pos
}

// ParamDecl is one formal parameter (or record component, which shares
// the same shape).
type ParamDecl struct {
	Modifiers   []string
	Type        TypeRef
	Name        string
	Annotations []AnnotationDecl
	Pos         Pos
}

// AnnotationDecl is one `@Anno(...)` usage, before its element values
// are evaluated into a types.AnnoInfo.
type AnnotationDecl struct {
	Type     TypeRef
	Elements []ElementValue
	Pos      Pos
}

// ElementValue is one `name = value` pair inside an annotation usage.
// Name is empty for the shorthand single-element form `@Anno(value)`,
// which binds to the element named "value".
type ElementValue struct {
	Name  string
	Value Expr
}
