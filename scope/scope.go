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

// Package scope resolves simple and dotted names to class symbols
// using the chained compilation-unit scope: single-type imports,
// same-package top-level types, on-demand imports, and implicit root
// imports. It generalizes a stack-of-symbol-tables name resolver
// (innermost scope wins, one lookup per enclosing container) into the
// import-scope chain a header compiler needs, rather than a full
// expression/statement resolver.
//
// Phases (1) declared type parameters and (2) members of the lexically
// enclosing class and its supertypes are layered on top of a Chain by
// ClassScope: its caller supplies the visible type parameters and a
// ClassLookup for bound classes. Phase (2) covers fields and methods
// only; member types of the enclosing class and its supertypes are not
// consulted when resolving a type name.
package scope

import (
	"fmt"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
)

// TypeIndex reports which binary class names exist in a given
// package, consulting both the classpath Env and the set of
// compilation units being compiled together. It is the scope chain's
// only external dependency, so Chain itself never has to know whether
// a candidate type comes from source or from the classpath.
type TypeIndex interface {
	// Exists reports whether pkg (dot-separated, e.g. "java.util")
	// declares a top-level type named simple.
	Exists(pkg, simple string) (symbol.Class, bool)
}

// DefaultRootImports is the set of packages implicitly on-demand-imported
// into every compilation unit, ordered as they are consulted. A
// typical caller supplies {"java.lang"}.
var DefaultRootImports = []string{"java.lang"}

// Chain is one compilation unit's import scope.
type Chain struct {
	index TypeIndex

	singleType  map[string]symbol.Class // simple name -> resolved class, explicit single-type imports
	onDemand    []string                // packages/types named by on-demand imports, in source order
	samePackage string
	rootImports []string
}

// NewChain builds the scope chain for one compilation unit.
func NewChain(cu *tree.CompilationUnit, index TypeIndex, rootImports []string) *Chain {
	c := &Chain{
		index:       index,
		singleType:  make(map[string]symbol.Class),
		samePackage: dotJoin(cu.Package),
		rootImports: rootImports,
	}
	for _, imp := range cu.Imports {
		if imp.Static || len(imp.Names) == 0 {
			continue // static imports name members, not types; out of scope here
		}
		if imp.OnDemand {
			c.onDemand = append(c.onDemand, dotJoin(imp.Names))
			continue
		}
		simple := imp.Names[len(imp.Names)-1]
		c.singleType[simple] = symbol.Class(dotToSlash(dotJoin(imp.Names)))
	}
	for _, decl := range cu.Decls {
		// Phase (3): same compilation-unit top-level types shadow
		// same-package types found only via the index, since a
		// sibling type in the same file is visible even before the
		// index has been populated with it.
		bin := decl.Name
		if c.samePackage != "" {
			bin = c.samePackage + "/" + decl.Name
		}
		c.singleType[decl.Name] = symbol.Class(dotToSlash(bin))
	}
	return c
}

// LookupSimple resolves one simple (undotted) type name through, in
// order: same compilation unit, single-type imports, same-package,
// on-demand imports,
// implicit root imports. Ties within a single phase are reported as
// ambiguous; a later phase is never consulted once an earlier phase
// matches.
func (c *Chain) LookupSimple(simple string) (symbol.Class, error) {
	if sym, ok := c.singleType[simple]; ok {
		return sym, nil
	}
	if c.samePackage != "" {
		if sym, ok := c.index.Exists(c.samePackage, simple); ok {
			return sym, nil
		}
	} else if sym, ok := c.index.Exists("", simple); ok {
		return sym, nil
	}
	var matches []symbol.Class
	for _, pkg := range c.onDemand {
		if sym, ok := c.index.Exists(pkg, simple); ok {
			matches = append(matches, sym)
		}
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("%q is ambiguous among on-demand imports: %v", simple, matches)
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	for _, pkg := range c.rootImports {
		if sym, ok := c.index.Exists(pkg, simple); ok {
			return sym, nil
		}
	}
	return "", fmt.Errorf("cannot resolve %q", simple)
}

// LookupQualified resolves a dotted name. It first tries progressively
// shorter prefixes as a package-qualified type name (so
// "java.util.Map.Entry" resolves "java.util.Map" then treats "Entry"
// as a nested-class tail); the nested-class tail itself is resolved by
// the caller via the member env, since Chain has no notion of a
// class's members.
func (c *Chain) LookupQualified(names []string) (root symbol.Class, tail []string, err error) {
	if len(names) == 1 {
		sym, err := c.LookupSimple(names[0])
		return sym, nil, err
	}
	for split := len(names); split >= 1; split-- {
		pkg := dotJoin(names[:split-1])
		if sym, ok := c.index.Exists(pkg, names[split-1]); ok {
			return sym, names[split:], nil
		}
	}
	// Fall back to treating the whole dotted name as an
	// unqualified-simple lookup followed by a nested-class tail, e.g.
	// an imported outer type used as `Outer.Inner`.
	sym, err := c.LookupSimple(names[0])
	if err != nil {
		return "", nil, err
	}
	return sym, names[1:], nil
}

func dotJoin(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func dotToSlash(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out[i] = '/'
		} else {
			out[i] = s[i]
		}
	}
	return string(out)
}
