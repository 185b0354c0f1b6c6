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

// ExprKind tags which variant an Expr holds. The zero value, ExprNone,
// marks an absent expression (e.g. a field with no initializer).
type ExprKind int

const (
	ExprNone ExprKind = iota
	ExprLiteral
	ExprUnary
	ExprBinary
	ExprConditional // cond ? then : else
	ExprCast
	ExprParen
	ExprNameRef  // a bare or dotted identifier chain, resolved later
	ExprEnumRef  // Type.CONSTANT, disambiguated from ExprNameRef by the constant evaluator
	ExprClassLit // Type.class
	ExprArrayInit
	ExprAnnotationLit // a nested annotation used as an element value
)

// LiteralKind tags which kind of literal token an ExprLiteral holds.
type LiteralKind int

const (
	LitBoolean LiteralKind = iota
	LitChar
	LitInt
	LitLong
	LitFloat
	LitDouble
	LitString
	LitNull
)

// Expr is an expression appearing where only a constant expression is
// legal: field initializers, annotation element values, and
// annotation-method defaults. Full executable-statement expressions
// are out of scope.
type Expr struct {
	Kind ExprKind
	Pos  Pos

	// ExprLiteral
	LitKind LiteralKind
	Bool    bool
	Int64   int64 // int/long/char, sign-extended
	Float32 float32
	Float64 float64
	Str     string

	// ExprUnary: Op is one of "+", "-", "~", "!".
	// ExprBinary: Op is one of the Java binary operators, e.g. "+", "&",
	// "<<", "instanceof" is never produced here (not a constant
	// expression form).
	// ExprCast: Op is unused; CastType names the target type.
	Op string

	// ExprUnary uses A; ExprBinary uses A and B; ExprConditional uses A
	// (condition), B (then), C (else); ExprCast/ExprParen use A as the
	// sole operand.
	A, B, C *Expr

	CastType *TypeRef

	// ExprNameRef/ExprEnumRef: dotted identifier chain as written.
	Names []string

	// ExprClassLit
	ClassLitType *TypeRef

	// ExprArrayInit
	Elems []Expr

	// ExprAnnotationLit
	Anno *AnnotationDecl
}
