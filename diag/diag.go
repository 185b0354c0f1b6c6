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

// Package diag collects the binder's diagnostics. Every binding
// failure except an internal invariant violation is reported through a
// Sink and the pipeline keeps going with an Error sentinel substituted
// in place of the unresolved value; only InternalAssertion aborts
// the process.
package diag

import (
	"fmt"
	"log"

	"github.com/gojvm/hdrc/tree"
)

// Kind tags which diagnostic was raised. Closed, one match site per
// consumer, same style as the rest of this module's data model.
type Kind int

const (
	SymbolNotFound Kind = iota
	AmbiguousName
	CyclicHierarchy
	InvalidAnnotationArgument
	TypeMismatch
	ModuleNotFound
	DuplicateDeclaration
	IllegalModifier
	BadConstantExpression
	CannotResolveToType
	InternalAssertion
)

func (k Kind) String() string {
	switch k {
	case SymbolNotFound:
		return "symbol not found"
	case AmbiguousName:
		return "ambiguous name"
	case CyclicHierarchy:
		return "cyclic hierarchy"
	case InvalidAnnotationArgument:
		return "invalid annotation argument"
	case TypeMismatch:
		return "type mismatch"
	case ModuleNotFound:
		return "module not found"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case IllegalModifier:
		return "illegal modifier"
	case BadConstantExpression:
		return "bad constant expression"
	case CannotResolveToType:
		return "cannot resolve to a type"
	case InternalAssertion:
		return "internal assertion failed"
	default:
		return "unknown diagnostic"
	}
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind Kind
	File string
	Pos  tree.Pos
	// Msg is a human-readable detail, e.g. the unresolved name or the
	// two conflicting declarations.
	Msg string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Pos.Line, d.Pos.Col, d.Kind, d.Msg)
}

// Sink accumulates diagnostics raised over the course of one Compile
// call. It is not safe for concurrent use from multiple goroutines
// without external synchronization; the binder's pipeline runs each
// compilation single-threaded.
type Sink struct {
	diags []Diagnostic
}

// Report appends one diagnostic. Kind == InternalAssertion is fatal:
// it indicates the binder itself violated an invariant it relies on
// (not a problem with the input), so it is logged and the process
// exits rather than silently continuing with corrupt state.
func (s *Sink) Report(kind Kind, file string, pos tree.Pos, format string, args ...interface{}) {
	d := Diagnostic{Kind: kind, File: file, Pos: pos, Msg: fmt.Sprintf(format, args...)}
	if kind == InternalAssertion {
		log.Fatalf("%s", d)
	}
	s.diags = append(s.diags, d)
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic { return s.diags }

// HasErrors reports whether any diagnostic was reported.
func (s *Sink) HasErrors() bool { return len(s.diags) > 0 }
