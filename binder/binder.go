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

// Package binder orchestrates the whole pipeline: flattening parsed
// compilation units into a symbol table, driving the header/member/
// const binding stages in order, lowering the result to class-file
// bytes, and collecting the transitive classpath dependencies those
// bytes reference. It plays the role jadeplib's top-level resolver
// played for the dependency tool this one was adapted from: a single
// entry point a CLI driver calls once per invocation, timing each
// stage under vlog and returning a fully deterministic result.
package binder

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/gojvm/hdrc/classenv"
	"github.com/gojvm/hdrc/constant"
	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/hierarchy"
	"github.com/gojvm/hdrc/lower"
	"github.com/gojvm/hdrc/member"
	"github.com/gojvm/hdrc/modulebind"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/transitive"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/typeparam"
	"github.com/gojvm/hdrc/types"
	"github.com/gojvm/hdrc/vlog"
)

// Config holds everything one Compile call needs: the parsed input
// together with the classpath it binds against.
type Config struct {
	// Units is the set of compilation units to compile together; they
	// see each other's declarations as if on one classpath entry.
	Units []*tree.CompilationUnit

	// Classpath is consulted, in order, for any name Units does not
	// itself declare. A typical caller wraps several classenv.Source
	// values (an unpacked JDK jar, a dependency's jar, a directory of
	// already-compiled classes).
	Classpath []classenv.Source

	// RootImports overrides scope.DefaultRootImports when non-nil.
	RootImports []string

	// Release selects the emitted class-file major version ("8"
	// through "21"); empty defaults to whatever lower.Options.major
	// defaults to.
	Release string

	// ModulePackages and ModuleMainClass feed the ModulePackages/
	// ModuleMainClass attributes of a compiled module-info, if Units
	// contains one; both are optional.
	ModulePackages  []string
	ModuleMainClass string
}

// Result is everything Compile produced.
type Result struct {
	// Classes maps each compiled class's binary name to its lowered
	// class-file bytes.
	Classes map[string][]byte

	// ModuleInfo holds module-info.class's bytes, non-nil only if one
	// of Config.Units declared a module.
	ModuleInfo []byte

	// TransitiveDeps maps the binary name of every classpath class
	// referenced (directly or through a generic bound) by a compiled
	// class to its raw bytes, so a packaging step can ship them
	// alongside Classes without a second classpath scan.
	TransitiveDeps map[string][]byte

	// DepsBySource maps each classpath source's Name() to the sorted
	// binary names of the classes consumed from it, a plain-Go-struct
	// stand-in for the kind of per-jar dependency report a build
	// system would otherwise want as a serialized protobuf.
	DepsBySource map[string][]string

	Diagnostics []diag.Diagnostic
}

// declEntry is one flattened declaration: its resolved symbol, the
// parsed node, the compilation unit and source path it came from, and
// (for a nested type) the symbol of its immediately enclosing class.
type declEntry struct {
	sym   symbol.Class
	decl  *tree.ClassDecl
	cu    *tree.CompilationUnit
	file  string
	outer *symbol.Class
}

// Compile runs the full pipeline over cfg and returns the lowered
// output together with every diagnostic raised along the way. A
// non-nil error is returned only for a condition the pipeline cannot
// recover from by substituting an Error sentinel (e.g. a transitive
// dependency missing from the classpath); ordinary binding problems
// are reported through Result.Diagnostics instead.
func Compile(cfg Config) (*Result, error) {
	start := time.Now()
	sink := &diag.Sink{}
	cpEnv := classenv.NewChainEnv(cfg.Classpath...)

	rootImports := cfg.RootImports
	if rootImports == nil {
		rootImports = scope.DefaultRootImports
	}

	entries := flatten(cfg.Units)
	vlog.V(1).Printf("binder: flattened %d declarations from %d compilation units in %s", len(entries), len(cfg.Units), time.Since(start))

	idx := newTypeIndex(entries, cpEnv)
	classMap := make(map[symbol.Class]*types.Class, len(entries))
	lookup := &mapClassLookup{classes: classMap, env: cpEnv}

	type boundEntry struct {
		entry *declEntry
		sc    *scope.ClassScope
	}
	bound := make([]boundEntry, 0, len(entries))

	hierarchyStart := time.Now()
	hb := hierarchy.NewBinder(ResolveTypeRef, sink)
	for _, e := range entries {
		chain := scope.NewChain(e.cu, idx, rootImports)
		visible := enclosingTypeParams(classMap, e.outer)
		sc := scope.NewClassScope(chain, e.sym, visible, lookup)

		ownTP := typeparam.Bind(e.sym, e.decl.TypeParams, sc, ResolveTypeRef, sink, e.file)
		super, ifaces := hb.Bind(e.sym, e.file, e.decl, sc)

		cls := &types.Class{
			Sym:                 e.sym,
			Kind:                classKindOf(e.decl.Kind),
			Flags:               classFlagsOf(e.decl.Modifiers, e.decl.Kind),
			Stage:               types.StageHeaderBound,
			Super:               super,
			Interfaces:          ifaces,
			TypeParams:          ownTP,
			Nested:              nestedSymbols(e.decl, e.sym),
			Outer:               e.outer,
			PermittedSubclasses: permittedSubclasses(e.decl.PermittedSubclasses, sc),
		}
		classMap[e.sym] = cls
		bound = append(bound, boundEntry{entry: e, sc: sc})
	}
	vlog.V(1).Printf("binder: header-bound %d classes in %s", len(bound), time.Since(hierarchyStart))

	memberStart := time.Now()
	memberBinder := &member.Binder{Resolve: ResolveTypeRef, Sink: sink}
	fieldInits := make(map[symbol.Field]fieldInit)
	for _, b := range bound {
		cls := classMap[b.entry.sym]
		cls.Fields = memberBinder.BindFields(b.entry.sym, b.entry.file, b.entry.decl.Fields, b.sc)
		cls.Methods = memberBinder.BindMethods(b.entry.sym, b.entry.file, b.entry.decl.Methods, b.sc, func(owner symbol.Method, decls []tree.TypeParamDecl, sc *scope.ClassScope) []types.TypeParam {
			return typeparam.Bind(owner, decls, sc, ResolveTypeRef, sink, b.entry.file)
		})
		cls.Stage = types.StageMemberBound

		for i, fd := range b.entry.decl.Fields {
			if fd.Init.Kind != tree.ExprNone && isStaticFinal(fd.Modifiers) {
				fieldInits[cls.Fields[i].Sym] = fieldInit{typ: cls.Fields[i].Type, init: fd.Init, sc: b.sc}
			}
		}
	}
	vlog.V(1).Printf("binder: member-bound %d classes in %s", len(bound), time.Since(memberStart))

	constStart := time.Now()
	evaluator := constant.NewEvaluator(&fieldResolver{classes: classMap, inits: fieldInits}, sink)
	for _, b := range bound {
		cls := classMap[b.entry.sym]
		for i := range cls.Fields {
			if fi, ok := fieldInits[cls.Fields[i].Sym]; ok {
				if c, ok := evaluator.EvalField(cls.Fields[i].Sym, fi.typ, fi.init, fi.sc); ok {
					v := c
					cls.Fields[i].ConstValue = &v
				}
			}
			cls.Fields[i].Annotations = bindAnnotations(evaluator, b.entry.decl.Fields[i].Annotations, b.sc, sink, b.entry.file)
		}
		for i, md := range b.entry.decl.Methods {
			cls.Methods[i].Annotations = bindAnnotations(evaluator, md.Annotations, b.sc, sink, b.entry.file)
			if md.DefaultValue != nil {
				defaultSym := symbol.Field{Owner: b.entry.sym, Name: "$default$" + md.Name}
				if c, ok := evaluator.EvalField(defaultSym, cls.Methods[i].Return, *md.DefaultValue, b.sc); ok {
					cls.Methods[i].Default = &c
				}
			}
			perParam := make([][]types.AnnoInfo, len(md.Params))
			for pi, pd := range md.Params {
				perParam[pi] = bindAnnotations(evaluator, pd.Annotations, b.sc, sink, b.entry.file)
			}
			cls.Methods[i].ParamAnnos = perParam
		}
		cls.Annotations = bindAnnotations(evaluator, b.entry.decl.Annotations, b.sc, sink, b.entry.file)
		cls.Stage = types.StageConstBound
	}
	vlog.V(1).Printf("binder: const-bound %d classes in %s", len(bound), time.Since(constStart))

	var moduleBytes []byte
	for _, cu := range cfg.Units {
		if cu.Module == nil {
			continue
		}
		chain := scope.NewChain(cu, idx, rootImports)
		sc := scope.NewClassScope(chain, symbol.Class("module-info"), nil, lookup)
		m := modulebind.Bind(cu.Module, sc, ResolveTypeRef, sink, cu.Path, "")
		data, err := lower.Module(m, cfg.ModulePackages, cfg.ModuleMainClass, lower.Options{MajorVersion: majorVersionFor(cfg.Release)})
		if err != nil {
			return nil, fmt.Errorf("lowering module-info: %w", err)
		}
		moduleBytes = data
	}

	lowerStart := time.Now()
	lowerEnv := &mapClassLookup{classes: classMap, env: cpEnv}
	ownSyms := make(map[symbol.Class]bool, len(classMap))
	for sym := range classMap {
		ownSyms[sym] = true
	}

	syms := make([]symbol.Class, 0, len(classMap))
	for sym := range classMap {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })

	classesOut := make(map[string][]byte, len(syms))
	collector := transitive.NewCollector(cfg.Classpath...)
	var depSyms []symbol.Class
	depSeen := make(map[symbol.Class]bool)
	for _, sym := range syms {
		cls := classMap[sym]
		data, err := lower.Class(cls, lowerEnv, lower.Options{MajorVersion: majorVersionFor(cfg.Release)})
		if err != nil {
			return nil, fmt.Errorf("lowering %s: %w", sym, err)
		}
		classesOut[string(sym)] = data
		for _, ref := range transitive.Referenced(cls, ownSyms) {
			if !depSeen[ref] {
				depSeen[ref] = true
				depSyms = append(depSyms, ref)
			}
		}
	}
	sort.Slice(depSyms, func(i, j int) bool { return depSyms[i] < depSyms[j] })

	var depsOut map[string][]byte
	var depsBySource map[string][]string
	if len(depSyms) > 0 {
		resolved, err := collector.Resolve(depSyms)
		if err != nil {
			return nil, err
		}
		depsOut = resolved
		depsBySource = attributeToSources(depSyms, cfg.Classpath)
	}
	vlog.V(1).Printf("binder: lowered %d classes and resolved %d transitive deps in %s", len(classesOut), len(depsOut), time.Since(lowerStart))

	log.Printf("binder: compiled %d classes (%d diagnostics) in %s", len(classesOut), len(sink.All()), time.Since(start))

	return &Result{
		Classes:        classesOut,
		ModuleInfo:     moduleBytes,
		TransitiveDeps: depsOut,
		DepsBySource:   depsBySource,
		Diagnostics:    sink.All(),
	}, nil
}

// attributeToSources records, for each symbol in syms, the first
// classpath source (by Name()) that provides it, grouping the result
// the way a build system's per-jar dependency report would.
func attributeToSources(syms []symbol.Class, sources []classenv.Source) map[string][]string {
	out := make(map[string][]string)
	for _, sym := range syms {
		for _, src := range sources {
			if _, ok, err := src.Load(sym); ok && err == nil {
				out[src.Name()] = append(out[src.Name()], string(sym))
				break
			}
		}
	}
	for name := range out {
		sort.Strings(out[name])
	}
	return out
}

func majorVersionFor(release string) uint16 {
	switch release {
	case "8":
		return 52
	case "9":
		return 53
	case "10":
		return 54
	case "11":
		return 55
	case "12":
		return 56
	case "13":
		return 57
	case "14":
		return 58
	case "15":
		return 59
	case "16":
		return 60
	case "17":
		return 61
	case "18":
		return 62
	case "19":
		return 63
	case "20":
		return 64
	case "21":
		return 65
	default:
		return 0 // lower.Options.major defaults this to 61
	}
}

func isStaticFinal(mods []string) bool {
	var static, final bool
	for _, m := range mods {
		switch m {
		case "static":
			static = true
		case "final":
			final = true
		}
	}
	return static && final
}

type fieldInit struct {
	typ  types.Type
	init tree.Expr
	sc   *scope.ClassScope
}

// fieldResolver implements constant.FieldResolver against the
// in-progress classMap and the fieldInits gathered during member
// binding, letting a static final field's initializer reference
// another static final field (possibly on a different class) by name.
type fieldResolver struct {
	classes map[symbol.Class]*types.Class
	inits   map[symbol.Field]fieldInit
}

func (r *fieldResolver) ResolveField(owner symbol.Class, name string) (types.Type, *tree.Expr, *scope.ClassScope, bool) {
	cls, ok := r.classes[owner]
	if !ok {
		return types.Error, nil, nil, false
	}
	for _, f := range cls.Fields {
		if f.Sym.Name != name {
			continue
		}
		fi, ok := r.inits[f.Sym]
		if !ok {
			return types.Error, nil, nil, false
		}
		init := fi.init
		return fi.typ, &init, fi.sc, true
	}
	return types.Error, nil, nil, false
}

func bindAnnotations(ev *constant.Evaluator, decls []tree.AnnotationDecl, sc *scope.ClassScope, sink *diag.Sink, file string) []types.AnnoInfo {
	if len(decls) == 0 {
		return nil
	}
	out := make([]types.AnnoInfo, 0, len(decls))
	for _, d := range decls {
		info, err := ev.EvalAnnotation(d, sc)
		if err != nil {
			sink.Report(diag.InvalidAnnotationArgument, file, d.Pos, "%v", err)
			continue
		}
		out = append(out, info)
	}
	return out
}
