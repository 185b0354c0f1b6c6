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

package scope

import (
	"fmt"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// ClassLookup resolves a class symbol to its bound representation,
// whichever stage it has reached; member resolution only needs the
// declared supertype list and the member names, both available from
// the header-bound stage onward.
type ClassLookup interface {
	ClassOf(sym symbol.Class) (*types.Class, bool)
}

// ClassScope layers two extra resolution phases on top of a Chain:
// ResolveTypeVarOrClass checks the class's own (and its enclosing
// classes') type parameters before falling through to the
// compilation-unit import Chain, and LookupMember resolves field and
// method names through its own and inherited members. Nested member
// types are not consulted when resolving a type name.
type ClassScope struct {
	*Chain
	Self       symbol.Class
	TypeParams map[string]symbol.TyVar // visible type-parameter names, own and enclosing
	Classes    ClassLookup
}

// NewClassScope builds a ClassScope for self, given the names of type
// parameters visible at this point (own type parameters plus those of
// every lexically enclosing class/method, innermost first so a
// shadowing inner declaration wins the map write).
func NewClassScope(chain *Chain, self symbol.Class, visibleTypeParams []symbol.TyVar, classes ClassLookup) *ClassScope {
	m := make(map[string]symbol.TyVar, len(visibleTypeParams))
	for _, tv := range visibleTypeParams {
		if _, ok := m[tv.Name]; !ok {
			m[tv.Name] = tv
		}
	}
	return &ClassScope{Chain: chain, Self: self, TypeParams: m, Classes: classes}
}

// ResolveTypeVarOrClass resolves a single identifier: a declared
// type parameter first, else falls
// through to Chain's import-scope lookup for a type name. Exactly one
// of the two return values is valid, selected by isTypeVar.
func (cs *ClassScope) ResolveTypeVarOrClass(name string) (tv symbol.TyVar, sym symbol.Class, isTypeVar bool, err error) {
	if v, ok := cs.TypeParams[name]; ok {
		return v, "", true, nil
	}
	sym, err = cs.LookupSimple(name)
	return symbol.TyVar{}, sym, false, err
}

// LookupMember resolves a simple member name (field or method group)
// by walking cs.Self's own members, then its declared supertype chain
// transitively, own members before the declared supertype chain;
// the first class in the walk that
// declares a field or method with this name wins, and all of that
// class's same-named fields and methods are returned. Nested classes
// are not considered.
func (cs *ClassScope) LookupMember(name string) (owner symbol.Class, fields []types.Field, methods []types.Method, found bool) {
	visited := make(map[symbol.Class]bool)
	var walk func(sym symbol.Class) bool
	walk = func(sym symbol.Class) bool {
		if visited[sym] {
			return false
		}
		visited[sym] = true
		cls, ok := cs.Classes.ClassOf(sym)
		if !ok {
			return false
		}
		for _, f := range cls.Fields {
			if f.Sym.Name == name {
				fields = append(fields, f)
			}
		}
		for _, m := range cls.Methods {
			if m.Sym.Name == name {
				methods = append(methods, m)
			}
		}
		if len(fields) > 0 || len(methods) > 0 {
			owner = sym
			return true
		}
		if cls.Super != nil && cls.Super.Kind == types.KindClass {
			if walk(cls.Super.InnermostClass()) {
				return true
			}
		}
		for _, iface := range cls.Interfaces {
			if iface.Kind == types.KindClass {
				if walk(iface.InnermostClass()) {
					return true
				}
			}
		}
		return false
	}
	found = walk(cs.Self)
	return owner, fields, methods, found
}

// errAmbiguousMember is returned by callers that need a single method
// overload resolved by arity/descriptor rather than by name alone;
// LookupMember intentionally returns every overload sharing a name and
// leaves overload disambiguation to the member binder, since only it
// knows the call-site argument descriptors.
var errAmbiguousMember = fmt.Errorf("member name resolves to more than one overload")
