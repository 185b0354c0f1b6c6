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

// Package hierarchy binds each class's extends/implements clauses into
// its header-bound supertypes, using only header scope: type
// parameters are visible, but no member of the class itself is
// consulted, since resolving a class's own members can require its
// supertypes to already be known.
package hierarchy

import (
	"github.com/gojvm/hdrc/cycle"
	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// javaLangObject is the language's root object type, used as the
// superclass when a class has no extends clause and when the cycle
// guard fires. An unresolvable superclass reference becomes
// types.Error instead.
const javaLangObject = symbol.Class("java/lang/Object")

// Binder resolves TypeRefs naming a supertype into types.Type values.
// Its cycle guard only catches a Bind call for a symbol whose own Bind
// is still in progress; Resolve does not call Bind, so an inheritance
// cycle through several classes (C extends D extends C) is not
// detected.
type Binder struct {
	Resolve func(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error)
	Sink    *diag.Sink
	guard   *cycle.Guard[symbol.Class]
}

// NewBinder returns a Binder. resolve turns one TypeRef into a bound
// Type, consulting sc for simple-name resolution; it is supplied by
// the caller because resolving a TypeRef's own type arguments may in
// turn require binding further classes' headers.
func NewBinder(resolve func(tree.TypeRef, *scope.ClassScope) (types.Type, error), sink *diag.Sink) *Binder {
	return &Binder{Resolve: resolve, Sink: sink, guard: cycle.NewGuard[symbol.Class]()}
}

// Bind resolves decl's extends/implements clauses for sym. If Bind is
// entered for sym while an earlier Bind for sym has not returned, it
// reports a CyclicHierarchy diagnostic and returns javaLangObject as
// the superclass; cycles formed through other classes' extends
// clauses are not detected (see Binder). file is the source path
// carried on any reported diagnostic.
func (b *Binder) Bind(sym symbol.Class, file string, decl *tree.ClassDecl, sc *scope.ClassScope) (super *types.Type, ifaces []types.Type) {
	if b.guard.Enter(sym) {
		b.Sink.Report(diag.CyclicHierarchy, file, decl.Pos, "cyclic inheritance involving %s: %v", sym, b.guard.Stack())
		obj := types.Class(javaLangObject)
		return &obj, nil
	}
	defer b.guard.Leave(sym)

	if decl.Kind == tree.DeclInterface || decl.Kind == tree.DeclAnnotation {
		// Interfaces have no superclass; their "extends" list names
		// superinterfaces instead and is handled via Implements by the
		// parser's convention for this tree shape.
		for _, ref := range decl.Implements {
			ifaces = append(ifaces, b.resolveOrError(ref, sc, file))
		}
		return nil, ifaces
	}

	if decl.Extends == nil {
		if sym == javaLangObject {
			return nil, nil
		}
		obj := types.Class(javaLangObject)
		return &obj, nil
	}
	t := b.resolveOrError(*decl.Extends, sc, file)
	for _, ref := range decl.Implements {
		ifaces = append(ifaces, b.resolveOrError(ref, sc, file))
	}
	return &t, ifaces
}

func (b *Binder) resolveOrError(ref tree.TypeRef, sc *scope.ClassScope, file string) types.Type {
	t, err := b.Resolve(ref, sc)
	if err != nil {
		b.Sink.Report(diag.CannotResolveToType, file, ref.Pos, "%v", err)
		return types.Error
	}
	return t
}
