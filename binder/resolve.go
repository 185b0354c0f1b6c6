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

package binder

import (
	"fmt"

	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// ResolveTypeRef turns one parsed TypeRef into a bound types.Type,
// consulting sc for every name it mentions. It is the single
// implementation of the Resolve function type each binder package
// (hierarchy, typeparam, member, modulebind) accepts as a parameter,
// so every stage agrees on how a name becomes a symbol.
func ResolveTypeRef(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error) {
	switch ref.Kind {
	case tree.RefVoid:
		return types.Void, nil
	case tree.RefPrimitive:
		return types.Prim(primFromKeyword(ref.Prim)), nil
	case tree.RefArray:
		elem, err := ResolveTypeRef(*ref.Elem, sc)
		if err != nil {
			return types.Error, err
		}
		return types.Array(elem), nil
	case tree.RefWildcard:
		switch ref.WildKind {
		case tree.WildRefUnbounded:
			return types.WildcardUnbounded(), nil
		case tree.WildRefUpper:
			b, err := ResolveTypeRef(*ref.Bound, sc)
			if err != nil {
				return types.Error, err
			}
			return types.WildcardUpper(b), nil
		case tree.WildRefLower:
			b, err := ResolveTypeRef(*ref.Bound, sc)
			if err != nil {
				return types.Error, err
			}
			return types.WildcardLower(b), nil
		}
		return types.Error, fmt.Errorf("unknown wildcard kind %d", ref.WildKind)
	case tree.RefSimple:
		if len(ref.Names) != 1 {
			return resolveQualified(ref.Names, sc)
		}
		tv, sym, isTypeVar, err := sc.ResolveTypeVarOrClass(ref.Names[0])
		if err != nil {
			return types.Error, err
		}
		if isTypeVar {
			return types.Var(tv), nil
		}
		return types.Class(sym), nil
	case tree.RefQualified:
		return resolveQualified(ref.Names, sc)
	case tree.RefParameterized:
		return resolveParameterized(ref, sc)
	default:
		return types.Error, fmt.Errorf("unknown type reference kind %d", ref.Kind)
	}
}

func resolveQualified(names []string, sc *scope.ClassScope) (types.Type, error) {
	root, tail, err := sc.LookupQualified(names)
	if err != nil {
		return types.Error, err
	}
	return types.Class(nestedSymbol(root, tail)), nil
}

// nestedSymbol appends a nested-class tail (simple names only) onto
// root, joined the way a binary name nests: with '$'.
func nestedSymbol(root symbol.Class, tail []string) symbol.Class {
	sym := root
	for _, t := range tail {
		sym = symbol.Class(string(sym) + "$" + t)
	}
	return sym
}

// resolveParameterized resolves a (possibly multi-level) parameterized
// type reference, e.g. `List<String>` or `Outer<A>.Inner<B>`, building
// one types.ClassPart per level of the Outer.Inner chain, outermost
// first, matching types.Type's documented ClassParts order.
func resolveParameterized(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error) {
	var chain []tree.TypeRef
	for cur := &ref; cur != nil; cur = cur.Qualifier {
		chain = append([]tree.TypeRef{*cur}, chain...)
	}

	first := chain[0]
	var root symbol.Class
	var tail []string
	var err error
	if len(first.Names) == 1 {
		root, err = sc.LookupSimple(first.Names[0])
	} else {
		root, tail, err = sc.LookupQualified(first.Names)
	}
	if err != nil {
		return types.Error, err
	}
	firstArgs, err := resolveArgs(first.TypeArgs, sc)
	if err != nil {
		return types.Error, err
	}
	parts := []types.ClassPart{{Sym: nestedSymbol(root, tail), Args: firstArgs}}

	for _, level := range chain[1:] {
		innerSym := nestedSymbol(parts[len(parts)-1].Sym, level.Names)
		args, err := resolveArgs(level.TypeArgs, sc)
		if err != nil {
			return types.Error, err
		}
		parts = append(parts, types.ClassPart{Sym: innerSym, Args: args})
	}

	return types.Type{Kind: types.KindClass, ClassParts: parts}, nil
}

func resolveArgs(targs []tree.TypeRef, sc *scope.ClassScope) ([]types.Type, error) {
	if len(targs) == 0 {
		return nil, nil
	}
	out := make([]types.Type, len(targs))
	for i, a := range targs {
		t, err := ResolveTypeRef(a, sc)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func primFromKeyword(kw string) types.PrimKind {
	switch kw {
	case "boolean":
		return types.Boolean
	case "byte":
		return types.Byte
	case "short":
		return types.Short
	case "char":
		return types.Char
	case "int":
		return types.Int
	case "long":
		return types.Long
	case "float":
		return types.Float
	case "double":
		return types.Double
	default:
		return types.Int
	}
}
