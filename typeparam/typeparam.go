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

// Package typeparam binds a class's or method's ordered type-parameter
// list, including F-bounded declarations where a bound refers to a
// sibling parameter declared later in the same list (`<T extends
// Comparable<T>>`, or the mutually-referential `<A extends B, B
// extends A>`): every symbol in the list is created up front, before
// any bound is resolved, so a bound's reference to a sibling resolves
// to that sibling's TyVar symbol rather than failing.
package typeparam

import (
	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// Resolve turns one TypeRef into a bound Type, given a scope that
// already has every sibling type-parameter symbol registered.
type Resolve func(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error)

// Bind resolves decls (a class's or method's declared type parameters)
// owned by owner, returning them in declaration order.
func Bind(owner interface{}, decls []tree.TypeParamDecl, sc *scope.ClassScope, resolve Resolve, sink *diag.Sink, file string) []types.TypeParam {
	syms := make([]symbol.TyVar, len(decls))
	for i, d := range decls {
		syms[i] = symbol.TyVar{Owner: owner, Name: d.Name}
		sc.TypeParams[d.Name] = syms[i]
	}

	out := make([]types.TypeParam, len(decls))
	for i, d := range decls {
		var bounds []types.Type
		if len(d.Bounds) == 0 {
			bounds = []types.Type{types.Class(javaLangObject)}
		}
		for _, ref := range d.Bounds {
			t, err := resolve(ref, sc)
			if err != nil {
				sink.Report(diag.CannotResolveToType, file, d.Pos, "%v", err)
				t = types.Error
			}
			bounds = append(bounds, t)
		}
		out[i] = types.TypeParam{Sym: syms[i], Bound: types.Intersection(bounds...)}
	}
	return out
}

// Erasure returns the class a type parameter erases to: the class
// determined by chasing the first bound transitively until a class
// (not a further type variable) is reached, falling back to the root
// object type if the chase exceeds 64 steps (guards against a
// malformed bound list escaping detection elsewhere).
func Erasure(tp types.TypeParam, lookupVar func(symbol.TyVar) (types.TypeParam, bool)) symbol.Class {
	b := tp.Bound
	for step := 0; step < 64; step++ {
		if len(b.Bounds) == 0 {
			return javaLangObject
		}
		first := b.Bounds[0]
		switch first.Kind {
		case types.KindClass:
			return first.InnermostClass()
		case types.KindTyVar:
			next, ok := lookupVar(first.TyVar)
			if !ok {
				return javaLangObject
			}
			b = next.Bound
		default:
			return javaLangObject
		}
	}
	return javaLangObject
}

const javaLangObject = symbol.Class("java/lang/Object")
