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

package types

import "github.com/gojvm/hdrc/symbol"

// ModuleFlag is a bit in a module's own flags (open/mandated); kept
// distinct from RequireFlag, whose "static" bit names an unrelated
// concept despite sharing a source keyword with member "static".
type ModuleFlag uint32

const (
	ModuleOpen ModuleFlag = 1 << iota
	ModuleMandated
)

// RequireFlag is a bit on one requires-directive.
type RequireFlag uint32

const (
	RequireTransitive RequireFlag = 1 << iota
	RequireStaticPhase
	RequireMandated
)

// Require is one `requires` directive.
type Require struct {
	Name    string
	Flags   RequireFlag
	Version string // empty if unspecified
}

// Exports is one `exports` directive.
type Exports struct {
	Package string
	To      []string // empty means unqualified (exported to all)
}

// Opens is one `opens` directive.
type Opens struct {
	Package string
	To      []string
}

// Provides is one `provides` directive.
type Provides struct {
	Service string
	Impls   []symbol.Class
}

// Module is the fully-bound representation of a module-info unit
// (a module's bound form).
type Module struct {
	Name        string
	Version     string
	Flags       ModuleFlag
	Annotations []AnnoInfo

	Requires []Require
	Exports  []Exports
	Opens    []Opens
	Uses     []symbol.Class
	Provides []Provides
}

// javaBase is the name of the implicitly-required base module.
const javaBase = "java.base"

// EnsureJavaBase returns m with a synthesized `requires java.base`
// entry inserted if source did not declare one, satisfying the
// invariant that exactly one requires java.base exists after
// binding, and the testable property that Module
// synthesis"). version is taken from the module environment if known,
// and may be empty.
func EnsureJavaBase(m Module, version string) Module {
	for _, r := range m.Requires {
		if r.Name == javaBase {
			return m
		}
	}
	m.Requires = append([]Require{{Name: javaBase, Flags: RequireMandated, Version: version}}, m.Requires...)
	return m
}
