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

// Package modulebind binds one module-info compilation unit into a
// types.Module, resolving the type names mentioned in `uses` and
// `provides` through a scope built from the module's own declared
// on-demand imports.
package modulebind

import (
	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// Resolve turns one TypeRef into its class symbol (module directives
// never reference generics, arrays, or primitives).
type Resolve func(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error)

// Bind binds decl into a types.Module, using resolve/sc to look up the
// service and implementation types named in `uses`/`provides`.
// javaBaseVersion, if non-empty, is recorded on a synthesized
// `requires java.base` when source did not declare one.
func Bind(decl *tree.ModuleDecl, sc *scope.ClassScope, resolve Resolve, sink *diag.Sink, file string, javaBaseVersion string) types.Module {
	m := types.Module{Name: decl.Name}
	if decl.Open {
		m.Flags |= types.ModuleOpen
	}

	for _, r := range decl.Requires {
		var flags types.RequireFlag
		if r.Transitive {
			flags |= types.RequireTransitive
		}
		if r.Static {
			flags |= types.RequireStaticPhase
		}
		m.Requires = append(m.Requires, types.Require{Name: r.Name, Flags: flags})
	}

	for _, ex := range decl.Exports {
		m.Exports = append(m.Exports, types.Exports{Package: ex.Package, To: append([]string(nil), ex.To...)})
	}
	for _, op := range decl.Opens {
		m.Opens = append(m.Opens, types.Opens{Package: op.Package, To: append([]string(nil), op.To...)})
	}

	for _, u := range decl.Uses {
		t, err := resolve(u, sc)
		if err != nil {
			sink.Report(diag.ModuleNotFound, file, decl.Pos, "uses: %v", err)
			continue
		}
		if t.Kind == types.KindClass {
			m.Uses = append(m.Uses, t.InnermostClass())
		}
	}

	for _, p := range decl.Provides {
		svc, err := resolve(p.Service, sc)
		if err != nil {
			sink.Report(diag.ModuleNotFound, file, decl.Pos, "provides: %v", err)
			continue
		}
		if svc.Kind != types.KindClass {
			continue
		}
		var impls []symbol.Class
		for _, implRef := range p.Impls {
			it, err := resolve(implRef, sc)
			if err != nil {
				sink.Report(diag.ModuleNotFound, file, decl.Pos, "provides with: %v", err)
				continue
			}
			if it.Kind == types.KindClass {
				impls = append(impls, it.InnermostClass())
			}
		}
		m.Provides = append(m.Provides, types.Provides{Service: string(svc.InnermostClass()), Impls: impls})
	}

	return types.EnsureJavaBase(m, javaBaseVersion)
}
