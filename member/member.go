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

// Package member binds a class's own fields and methods inside its
// class scope (header-bound supertypes, own type parameters, and the
// type parameters of any lexically enclosing class), producing the
// member-bound stage of a types.Class. Nested classes are bound in
// dependency order by the caller (outer before inner), since a nested
// class's own member binding may need its enclosing class's type
// parameters already registered in scope.
package member

import (
	"strings"

	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// Resolve turns one TypeRef into a bound Type.
type Resolve func(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error)

// Binder binds the fields and methods of one class.
type Binder struct {
	Resolve Resolve
	Sink    *diag.Sink
}

// BindFields binds decl's own field declarations. Initializers are
// neither evaluated nor stored on the returned Fields; the binder
// collects static final initializers separately for the constant
// evaluator.
func (b *Binder) BindFields(sym symbol.Class, file string, decls []tree.FieldDecl, sc *scope.ClassScope) []types.Field {
	var out []types.Field
	for _, d := range decls {
		ty, err := b.Resolve(d.Type, sc)
		if err != nil {
			b.Sink.Report(diag.CannotResolveToType, file, d.Pos, "field %s: %v", d.Name, err)
			ty = types.Error
		}
		out = append(out, types.Field{
			Sym:   symbol.Field{Owner: sym, Name: d.Name},
			Type:  ty,
			Flags: fieldFlags(d.Modifiers),
		})
	}
	return out
}

// BindMethods binds decl's own method (and constructor) declarations.
// Erased descriptors are computed immediately, since a method's
// symbol identity depends on them and must be stable under later
// generic substitution.
func (b *Binder) BindMethods(sym symbol.Class, file string, decls []tree.MethodDecl, sc *scope.ClassScope, bindOwnTypeParams func(owner symbol.Method, decls []tree.TypeParamDecl, sc *scope.ClassScope) []types.TypeParam) []types.Method {
	var out []types.Method
	for _, d := range decls {
		params := make([]types.Param, len(d.Params))
		for i, p := range d.Params {
			ty, err := b.Resolve(p.Type, sc)
			if err != nil {
				b.Sink.Report(diag.CannotResolveToType, file, p.Pos, "parameter %s of %s: %v", p.Name, d.Name, err)
				ty = types.Error
			}
			params[i] = types.Param{Name: p.Name, Type: ty, Flags: paramFlags(p.Modifiers)}
		}
		if d.Variadic && len(params) > 0 {
			last := len(params) - 1
			params[last].Type = types.Array(params[last].Type)
		}

		ret, err := b.Resolve(d.Return, sc)
		if err != nil {
			b.Sink.Report(diag.CannotResolveToType, file, d.Pos, "return type of %s: %v", d.Name, err)
			ret = types.Error
		}

		desc := descriptor(params, ret)
		msym := symbol.Method{Owner: sym, Name: d.Name, Descriptor: desc}

		var tparams []types.TypeParam
		if bindOwnTypeParams != nil {
			tparams = bindOwnTypeParams(msym, d.TypeParams, sc)
		}

		var thrown []types.Type
		for _, t := range d.Thrown {
			ty, err := b.Resolve(t, sc)
			if err != nil {
				b.Sink.Report(diag.CannotResolveToType, file, d.Pos, "thrown type of %s: %v", d.Name, err)
				ty = types.Error
			}
			thrown = append(thrown, ty)
		}

		flags := methodFlags(d.Modifiers)
		if d.Variadic {
			flags |= types.MethodVarargs
		}

		out = append(out, types.Method{
			Sym:        msym,
			Return:     ret,
			Params:     params,
			Thrown:     thrown,
			TypeParams: tparams,
			Flags:      flags,
		})
	}
	return out
}

// descriptor computes the erased method descriptor from already-bound
// (but not yet generically-substituted) parameter and return types;
// since erasure of a class type ignores its type arguments entirely,
// this is stable regardless of whether generics were later attached
// via a Signature.
func descriptor(params []types.Param, ret types.Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(erasedDescriptor(p.Type))
	}
	sb.WriteByte(')')
	sb.WriteString(erasedDescriptor(ret))
	return sb.String()
}

func erasedDescriptor(t types.Type) string {
	switch t.Kind {
	case types.KindVoid:
		return "V"
	case types.KindPrim:
		return t.Prim.Descriptor()
	case types.KindArray:
		return "[" + erasedDescriptor(*t.Elem)
	case types.KindClass:
		return "L" + string(t.InnermostClass()) + ";"
	case types.KindTyVar:
		return "Ljava/lang/Object;" // erasure of an unbounded/chased var falls back to Object here; real erasure is computed by typeparam.Erasure when a precise bound class is needed
	case types.KindWild, types.KindIntersection:
		return "Ljava/lang/Object;"
	default:
		return "Ljava/lang/Object;"
	}
}

func fieldFlags(mods []string) types.FieldFlag {
	var f types.FieldFlag
	for _, m := range mods {
		switch m {
		case "public":
			f |= types.FieldPublic
		case "private":
			f |= types.FieldPrivate
		case "protected":
			f |= types.FieldProtected
		case "static":
			f |= types.FieldStatic
		case "final":
			f |= types.FieldFinal
		case "volatile":
			f |= types.FieldVolatile
		case "transient":
			f |= types.FieldTransient
		}
	}
	return f
}

func paramFlags(mods []string) types.MethodFlag {
	var f types.MethodFlag
	for _, m := range mods {
		if m == "final" {
			f |= types.MethodFinal
		}
	}
	return f
}

func methodFlags(mods []string) types.MethodFlag {
	var f types.MethodFlag
	for _, m := range mods {
		switch m {
		case "public":
			f |= types.MethodPublic
		case "private":
			f |= types.MethodPrivate
		case "protected":
			f |= types.MethodProtected
		case "static":
			f |= types.MethodStatic
		case "final":
			f |= types.MethodFinal
		case "synchronized":
			f |= types.MethodSynchronized
		case "native":
			f |= types.MethodNative
		case "abstract":
			f |= types.MethodAbstract
		case "strictfp":
			f |= types.MethodStrict
		}
	}
	return f
}
