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

// Package sig writes generic signature strings for types, classes, and
// methods in the class-file Signature attribute's grammar (JVMS
// §4.7.9.1). No corpus library covers this grammar (it is not a
// general-purpose serialization format, and even a full class-file
// library such as Jacobin only ever reads it); string concatenation
// via strings.Builder is all the format needs, so this package is
// implemented directly on the standard library rather than a
// third-party dependency.
package sig

import (
	"strings"

	"github.com/gojvm/hdrc/types"
)

// Type writes t's signature to sb.
func Type(sb *strings.Builder, t types.Type) {
	switch t.Kind {
	case types.KindVoid:
		sb.WriteByte('V')
	case types.KindPrim:
		sb.WriteString(t.Prim.Descriptor())
	case types.KindArray:
		sb.WriteByte('[')
		Type(sb, *t.Elem)
	case types.KindTyVar:
		sb.WriteByte('T')
		sb.WriteString(t.TyVar.Name)
		sb.WriteByte(';')
	case types.KindWild:
		writeWildcard(sb, t)
	case types.KindClass:
		writeClass(sb, t)
	case types.KindIntersection:
		// Only appears as a type-parameter bound; writeClassTypeParams
		// unpacks Bounds directly rather than calling Type on it.
		if len(t.Bounds) > 0 {
			Type(sb, t.Bounds[0])
		}
	default:
		sb.WriteString("Ljava/lang/Object;")
	}
}

func writeWildcard(sb *strings.Builder, t types.Type) {
	switch t.Wild {
	case types.Unbounded:
		sb.WriteByte('*')
	case types.UpperBounded:
		sb.WriteByte('+')
		Type(sb, *t.Bound)
	case types.LowerBounded:
		sb.WriteByte('-')
		Type(sb, *t.Bound)
	}
}

// writeClass implements the nested-class expansion rule: the flat
// `Louter$Inner;` form is used unless some part of the chain carries
// type arguments, in which case every part after the first is written
// with a leading `.` and only its simple name (the part after the
// last `$` in its binary name).
func writeClass(sb *strings.Builder, t types.Type) {
	anyParameterized := false
	for _, p := range t.ClassParts {
		if len(p.Args) > 0 {
			anyParameterized = true
			break
		}
	}

	sb.WriteByte('L')
	if !anyParameterized {
		// Flat form: outer$inner binary name, already how symbol.Class
		// stores nested classes, so the last part's Sym names the whole type.
		sb.WriteString(string(t.ClassParts[len(t.ClassParts)-1].Sym))
		sb.WriteByte(';')
		return
	}

	for i, p := range t.ClassParts {
		if i == 0 {
			sb.WriteString(string(p.Sym))
		} else {
			sb.WriteByte('.')
			sb.WriteString(simpleNameSuffix(string(p.Sym)))
		}
		if len(p.Args) > 0 {
			sb.WriteByte('<')
			for _, arg := range p.Args {
				Type(sb, arg)
			}
			sb.WriteByte('>')
		}
	}
	sb.WriteByte(';')
}

// simpleNameSuffix returns the part of a binary name after its last
// '$', used when expanding a parameterized nested-class chain so each
// inner part contributes only its own simple name.
func simpleNameSuffix(binary string) string {
	if i := strings.LastIndexByte(binary, '$'); i >= 0 {
		return binary[i+1:]
	}
	if i := strings.LastIndexByte(binary, '/'); i >= 0 {
		return binary[i+1:]
	}
	return binary
}

// ClassSignature writes a full ClassSignature for a class with the
// given type parameters, superclass, and interfaces, or returns ("",
// false) if the declaration uses no generics at all: the signature
// attribute is omitted entirely when a declaration uses no generics
// and no parameterized/variable types. isInterface decides whether a type
// parameter's first bound is a class or an interface bound.
func ClassSignature(tparams []types.TypeParam, super *types.Type, ifaces []types.Type, isInterface func(types.Type) bool) (string, bool) {
	generic := len(tparams) > 0
	if super != nil && super.IsGeneric() {
		generic = true
	}
	for _, i := range ifaces {
		if i.IsGeneric() {
			generic = true
		}
	}
	if !generic {
		return "", false
	}

	var sb strings.Builder
	writeClassTypeParams(&sb, tparams, isInterface)
	if super != nil {
		Type(&sb, *super)
	} else {
		sb.WriteString("Ljava/lang/Object;")
	}
	for _, i := range ifaces {
		Type(&sb, i)
	}
	return sb.String(), true
}

// writeClassTypeParams writes "<name:bound[:additional]…>…" for a
// class's or method's own type-parameter list, with the class bound
// left empty (producing the leading colon) when its first bound slot
// has no class bound (i.e. the first bound is itself an interface).
// isInterface may be nil, in which case every first bound is treated
// as a class bound (the common case of an explicit class upper bound,
// or no declared bound at all).
func writeClassTypeParams(sb *strings.Builder, tparams []types.TypeParam, isInterface func(types.Type) bool) {
	if len(tparams) == 0 {
		return
	}
	sb.WriteByte('<')
	for _, tp := range tparams {
		sb.WriteString(tp.Sym.Name)
		bounds := tp.Bound.Bounds
		if len(bounds) == 0 {
			sb.WriteString(":Ljava/lang/Object;")
			continue
		}
		firstIsInterface := isInterface != nil && bounds[0].Kind == types.KindClass && isInterface(bounds[0])
		if firstIsInterface {
			sb.WriteByte(':') // empty class bound
		} else {
			sb.WriteByte(':')
			Type(sb, bounds[0])
			bounds = bounds[1:]
		}
		for _, extra := range bounds {
			sb.WriteByte(':')
			Type(sb, extra)
		}
	}
	sb.WriteByte('>')
}

// MethodSignature writes a full MethodSignature, or returns ("",
// false) if the method uses no generics.
func MethodSignature(tparams []types.TypeParam, params []types.Type, ret types.Type, thrown []types.Type, isInterface func(types.Type) bool) (string, bool) {
	generic := len(tparams) > 0 || ret.IsGeneric()
	for _, p := range params {
		if p.IsGeneric() {
			generic = true
		}
	}
	needsThrows := false
	for _, t := range thrown {
		if t.IsGeneric() {
			generic = true
			needsThrows = true
		}
	}
	if !generic {
		return "", false
	}

	var sb strings.Builder
	writeClassTypeParams(&sb, tparams, isInterface)
	sb.WriteByte('(')
	for _, p := range params {
		Type(&sb, p)
	}
	sb.WriteByte(')')
	Type(&sb, ret)
	if needsThrows {
		for _, t := range thrown {
			sb.WriteByte('^')
			Type(&sb, t)
		}
	}
	return sb.String(), true
}

// FieldSignature writes a field's signature, or returns ("", false) if
// its type uses no generics.
func FieldSignature(t types.Type) (string, bool) {
	if !t.IsGeneric() {
		return "", false
	}
	var sb strings.Builder
	Type(&sb, t)
	return sb.String(), true
}
