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

// ConstKind tags which variant a Const holds. Modeled loosely on
// go/constant.Kind, but with the two opaque Java-specific variants
// (enum constant, class literal) that no general-purpose constant
// representation needs.
type ConstKind int

const (
	ConstBoolean ConstKind = iota
	ConstByte
	ConstShort
	ConstChar
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstString
	ConstEnum
	ConstClass
	ConstAnno
	ConstArray
)

// Const is a compile-time constant or annotation element value: a
// closed union over primitive/boxed values, strings, opaque enum and
// class references, nested annotations, and arrays of Const.
type Const struct {
	Kind ConstKind

	Bool   bool
	Int64  int64 // holds byte/short/char/int/long, sign-extended
	Float  float32
	Double float64
	Str    string

	// ConstEnum: the enum class and constant name, left opaque; the
	// evaluator produces EnumConst/ClassConst without evaluating further.
	EnumType symbol.Class
	EnumName string

	// ConstClass: the class literal's type, e.g. `Foo.class` or
	// `int[].class`.
	ClassLit *Type

	// ConstAnno: a nested annotation literal.
	Anno *AnnoInfo

	// ConstArray
	Elems []Const
}

// ConstInt builds an int constant.
func ConstInt(v int32) Const { return Const{Kind: ConstInt, Int64: int64(v)} }

// ConstLongVal builds a long constant.
func ConstLongVal(v int64) Const { return Const{Kind: ConstLong, Int64: v} }

// ConstBool builds a boolean constant.
func ConstBool(v bool) Const { return Const{Kind: ConstBoolean, Bool: v} }

// ConstStr builds a string constant.
func ConstStr(v string) Const { return Const{Kind: ConstString, Str: v} }

// AsArray wraps a single Const in a length-1 array, used to implement
// the coercion of a single value to a length-1 array when the
// declared type is an array.
func AsArray(c Const) Const { return Const{Kind: ConstArray, Elems: []Const{c}} }

// AnnoInfo is a fully-evaluated annotation: the annotation class and a
// map from declared element name to its evaluated value.
type AnnoInfo struct {
	Type     symbol.Class
	Elements map[string]Const

	// ElementOrder preserves source order for debugging/diagnostics;
	// it never affects semantics.
	ElementOrder []string
}
