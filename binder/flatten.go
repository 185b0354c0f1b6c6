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
	"strings"

	"github.com/gojvm/hdrc/classenv"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// flatten walks every compilation unit's top-level declarations and
// their Nested lists, producing one declEntry per declared type, outer
// classes always ahead of their own nested classes so later stages can
// assume an entry's enclosing class is already present in classMap.
func flatten(units []*tree.CompilationUnit) []*declEntry {
	var out []*declEntry
	for _, cu := range units {
		pkg := dotToSlashJoin(cu.Package)
		for _, decl := range cu.Decls {
			walkDecl(cu, pkg, decl, nil, &out)
		}
	}
	return out
}

func walkDecl(cu *tree.CompilationUnit, pkgOrOuter string, decl *tree.ClassDecl, outer *symbol.Class, out *[]*declEntry) {
	var sym symbol.Class
	if outer == nil {
		if pkgOrOuter == "" {
			sym = symbol.Class(decl.Name)
		} else {
			sym = symbol.Class(pkgOrOuter + "/" + decl.Name)
		}
	} else {
		sym = symbol.Class(string(*outer) + "$" + decl.Name)
	}

	e := &declEntry{sym: sym, decl: decl, cu: cu, file: cu.Path, outer: outer}
	*out = append(*out, e)

	selfSym := sym
	for _, n := range decl.Nested {
		walkDecl(cu, pkgOrOuter, n, &selfSym, out)
	}
}

func dotToSlashJoin(parts []string) string {
	return strings.Join(parts, "/")
}

// typeIndex implements scope.TypeIndex against the flattened source
// declarations first, falling back to the classpath Env: a type
// declared in the current compilation always shadows a same-named
// classpath entry, matching the "same compilation unit" phase of name
// resolution being checked before any classpath phase.
type typeIndex struct {
	bySimple map[string]map[string]symbol.Class // pkg -> simple -> symbol
	env      classenv.Env
}

func newTypeIndex(entries []*declEntry, env classenv.Env) *typeIndex {
	idx := &typeIndex{bySimple: make(map[string]map[string]symbol.Class), env: env}
	for _, e := range entries {
		if e.outer != nil {
			continue // nested types are reached through their enclosing class, not the package index
		}
		pkg, simple := e.sym.Split()
		pkg = strings.ReplaceAll(pkg, "/", ".") // Exists is queried with dotted package names
		if idx.bySimple[pkg] == nil {
			idx.bySimple[pkg] = make(map[string]symbol.Class)
		}
		idx.bySimple[pkg][simple] = e.sym
	}
	return idx
}

func (t *typeIndex) Exists(pkg, simple string) (symbol.Class, bool) {
	if m, ok := t.bySimple[pkg]; ok {
		if sym, ok := m[simple]; ok {
			return sym, true
		}
	}
	if t.env == nil {
		return "", false
	}
	slashPkg := strings.ReplaceAll(pkg, ".", "/")
	var candidate symbol.Class
	if slashPkg == "" {
		candidate = symbol.Class(simple)
	} else {
		candidate = symbol.Class(slashPkg + "/" + simple)
	}
	if _, ok := t.env.Lookup(candidate); ok {
		return candidate, true
	}
	return "", false
}

// mapClassLookup implements scope.ClassLookup and lower.Env against
// the in-progress classMap, falling back to the classpath Env for any
// symbol the current compilation does not itself declare.
type mapClassLookup struct {
	classes map[symbol.Class]*types.Class
	env     classenv.Env
}

func (m *mapClassLookup) ClassOf(sym symbol.Class) (*types.Class, bool) {
	return m.Lookup(sym)
}

func (m *mapClassLookup) Lookup(sym symbol.Class) (*types.Class, bool) {
	if c, ok := m.classes[sym]; ok {
		return c, true
	}
	if m.env == nil {
		return nil, false
	}
	return m.env.Lookup(sym)
}

// enclosingTypeParams returns, innermost first, the type-parameter
// symbols of outer and every class enclosing it, for NewClassScope's
// visibleTypeParams argument.
func enclosingTypeParams(classes map[symbol.Class]*types.Class, outer *symbol.Class) []symbol.TyVar {
	var out []symbol.TyVar
	for outer != nil {
		cls, ok := classes[*outer]
		if !ok {
			break
		}
		for _, tp := range cls.TypeParams {
			out = append(out, tp.Sym)
		}
		outer = cls.Outer
	}
	return out
}

func nestedSymbols(decl *tree.ClassDecl, self symbol.Class) []symbol.Class {
	if len(decl.Nested) == 0 {
		return nil
	}
	out := make([]symbol.Class, len(decl.Nested))
	for i, n := range decl.Nested {
		out[i] = symbol.Class(string(self) + "$" + n.Name)
	}
	return out
}

func permittedSubclasses(refs []tree.TypeRef, sc *scope.ClassScope) []symbol.Class {
	if len(refs) == 0 {
		return nil
	}
	out := make([]symbol.Class, 0, len(refs))
	for _, ref := range refs {
		t, err := ResolveTypeRef(ref, sc)
		if err != nil || t.Kind != types.KindClass {
			continue
		}
		out = append(out, t.InnermostClass())
	}
	return out
}

func classKindOf(k tree.DeclKind) types.ClassKind {
	switch k {
	case tree.DeclInterface:
		return types.ClassKindInterface
	case tree.DeclEnum:
		return types.ClassKindEnum
	case tree.DeclAnnotation:
		return types.ClassKindAnnotation
	case tree.DeclRecord:
		return types.ClassKindRecord
	default:
		return types.ClassKindClass
	}
}

func classFlagsOf(mods []string, kind tree.DeclKind) types.ClassFlag {
	var f types.ClassFlag
	for _, m := range mods {
		switch m {
		case "public":
			f |= types.ClassPublic
		case "final":
			f |= types.ClassFinal
		case "abstract":
			f |= types.ClassAbstract
		}
	}
	if kind == tree.DeclInterface || kind == tree.DeclAnnotation {
		f |= types.ClassInterface
	}
	if kind == tree.DeclAnnotation {
		f |= types.ClassAnnotation
	}
	if kind == tree.DeclEnum {
		f |= types.ClassEnum
	}
	return f
}
