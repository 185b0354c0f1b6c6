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

// Package transitive collects, for a compiled set of output classes,
// the classpath entries that those classes actually reference: every
// superclass, interface, field type, method parameter/return/thrown
// type, and type-parameter bound drawn from outside the compilation
// unit itself, and copies the classpath bytes of every referenced
// symbol into the output, verbatim. Each class is loaded by symbol
// through the classenv Sources; this package does not open or list
// jars itself.
package transitive

import (
	"fmt"
	"sort"

	"github.com/gojvm/hdrc/classenv"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// Collector gathers the classpath symbols referenced by a set of bound
// classes and can resolve them back to raw class-file bytes for
// packaging alongside the compiler's own output.
type Collector struct {
	sources []classenv.Source
}

// NewCollector builds a Collector consulting sources in order, first
// match wins, the same precedence classenv.ChainEnv uses.
func NewCollector(sources ...classenv.Source) *Collector {
	return &Collector{sources: sources}
}

// Referenced returns the set of classpath symbols that bound, a
// just-compiled class, depends on: its direct superclass and
// interfaces, field and
// method signatures, and type-parameter bounds. Symbols belonging to
// the same compilation (present in ownSymbols) are excluded, since
// those are emitted by the lowerer itself rather than copied from the
// classpath.
func Referenced(bound *types.Class, ownSymbols map[symbol.Class]bool) []symbol.Class {
	seen := make(map[symbol.Class]bool)
	add := func(t types.Type) { collectClassSymbols(t, seen) }

	if bound.Super != nil {
		add(*bound.Super)
	}
	for _, i := range bound.Interfaces {
		add(i)
	}
	for _, f := range bound.Fields {
		add(f.Type)
	}
	for _, m := range bound.Methods {
		add(m.Return)
		for _, p := range m.Params {
			add(p.Type)
		}
		for _, t := range m.Thrown {
			add(t)
		}
		for _, tp := range m.TypeParams {
			add(tp.Bound)
		}
	}
	for _, tp := range bound.TypeParams {
		add(tp.Bound)
	}

	out := make([]symbol.Class, 0, len(seen))
	for sym := range seen {
		if ownSymbols[sym] {
			continue
		}
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// collectClassSymbols walks t's structure (through arrays, wildcards,
// intersections, and nested class parts with their own type
// arguments) and records every class symbol it mentions.
func collectClassSymbols(t types.Type, out map[symbol.Class]bool) {
	switch t.Kind {
	case types.KindClass:
		for _, part := range t.ClassParts {
			out[part.Sym] = true
			for _, arg := range part.Args {
				collectClassSymbols(arg, out)
			}
		}
	case types.KindArray:
		collectClassSymbols(*t.Elem, out)
	case types.KindWild:
		if t.Bound != nil {
			collectClassSymbols(*t.Bound, out)
		}
	case types.KindIntersection:
		for _, b := range t.Bounds {
			collectClassSymbols(b, out)
		}
	}
}

// Resolve copies the raw class-file bytes for every symbol in syms out
// of the Collector's sources, keyed by binary name, mirroring the
// teacher's listclassesinjar in the opposite direction: that package
// only lists names; this resolves named symbols back to bytes for
// repackaging. A symbol present in no source is a hard error, since it
// means a class depended on something missing from the classpath that
// somehow still bound successfully (e.g. via a stale Env).
func (c *Collector) Resolve(syms []symbol.Class) (map[string][]byte, error) {
	out := make(map[string][]byte, len(syms))
	for _, sym := range syms {
		found := false
		for _, src := range c.sources {
			data, ok, err := src.Load(sym)
			if err != nil {
				return nil, fmt.Errorf("resolving transitive dep %s: %w", sym, err)
			}
			if ok {
				out[string(sym)] = data
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("transitive dep %s not found in any classpath source", sym)
		}
	}
	return out, nil
}
