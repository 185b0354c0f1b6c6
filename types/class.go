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

package types

import "github.com/gojvm/hdrc/symbol"

// Kind of a declared class.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindEnum
	ClassKindAnnotation
	ClassKindRecord
)

// ClassFlag is a bit in a class's access_flags, kept in its own
// enumeration rather than shared with method/field/module flags: class,
// method, field, and module flags each get their own distinct type.
type ClassFlag uint32

const (
	ClassPublic ClassFlag = 1 << iota
	ClassFinal
	ClassSuper
	ClassInterface
	ClassAbstract
	ClassSynthetic
	ClassAnnotation
	ClassEnum
	ClassModule

	// ClassLocalOrAnonymous marks a class declared inside a method body
	// or as an anonymous class expression, as opposed to an ordinary
	// member class declared directly inside its enclosing class's body.
	// It carries no access_flags bit of its own; lower consults it to
	// decide whether to emit EnclosingMethod, since that attribute
	// applies only to local and anonymous classes (JVMS §4.7.7), never
	// to a class whose Outer is merely its lexically enclosing member
	// class.
	ClassLocalOrAnonymous
)

// MethodFlag is a bit in a method's access_flags.
type MethodFlag uint32

const (
	MethodPublic MethodFlag = 1 << iota
	MethodPrivate
	MethodProtected
	MethodStatic
	MethodFinal
	MethodSynchronized
	MethodBridge
	MethodVarargs
	MethodNative
	MethodAbstract
	MethodStrict
	MethodSynthetic
)

// FieldFlag is a bit in a field's access_flags.
type FieldFlag uint32

const (
	FieldPublic FieldFlag = 1 << iota
	FieldPrivate
	FieldProtected
	FieldStatic
	FieldFinal
	FieldVolatile
	FieldTransient
	FieldSynthetic
	FieldEnum
)

// Stage is one of the three monotonic stages a TypeBoundClass
// progresses through.
type Stage int

const (
	StageHeaderBound Stage = iota
	StageMemberBound
	StageConstBound
)

// TypeParam is one entry of a class's or method's ordered type
// parameter list: its symbol and its bound, always represented as an
// IntersectionTy (possibly of length 1).
type TypeParam struct {
	Sym   symbol.TyVar
	Bound Type // Kind == KindIntersection
}

// Field is one class field, fully bound.
type Field struct {
	Sym         symbol.Field
	Type        Type
	Flags       FieldFlag
	Annotations []AnnoInfo

	// ConstValue is set only for a `static final` field with a
	// primitive or String type whose initializer the constant
	// evaluator could fold; nil otherwise.
	ConstValue *Const
}

// Param is one method parameter.
type Param struct {
	Name  string
	Type  Type
	Flags MethodFlag // only MethodFinal/MethodSynthetic meaningfully apply
}

// Method is one class method, fully bound.
type Method struct {
	Sym         symbol.Method
	Return      Type
	Params      []Param
	Thrown      []Type
	TypeParams  []TypeParam
	Flags       MethodFlag
	Annotations []AnnoInfo
	ParamAnnos  [][]AnnoInfo // per-parameter, parallel to Params

	// Default is the default-value expression's evaluated constant,
	// set only on annotation-element methods with a `default` clause.
	Default *Const
}

// Class is one declared type's fully-bound representation
// (a type-bound class).
type Class struct {
	Sym   symbol.Class
	Kind  ClassKind
	Flags ClassFlag
	Stage Stage

	Super      *Type // nil for java/lang/Object and for source-bound interfaces and annotation types
	Interfaces []Type

	TypeParams []TypeParam

	Fields  []Field
	Methods []Method

	// Nested is the ordered list of nested class symbols; their own
	// Class values live in the same Env under their own symbol.
	Nested []symbol.Class

	// Outer is the enclosing class symbol, if any.
	Outer *symbol.Class

	Annotations []AnnoInfo

	// RecordComponents is non-nil only for ClassKindRecord.
	RecordComponents []Field

	PermittedSubclasses []symbol.Class
}
