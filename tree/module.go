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

package tree

// ModuleDecl is the content of a module-info.java unit.
type ModuleDecl struct {
	Name        string
	Open        bool
	Annotations []AnnotationDecl

	Requires []RequireDecl
	Exports  []ExportsDecl
	Opens    []OpensDecl
	Uses     []TypeRef
	Provides []ProvidesDecl

	Pos Pos
}

// RequireDecl is one `requires [transitive] [static] name;` directive.
type RequireDecl struct {
	Name       string
	Transitive bool
	Static     bool
	Pos        Pos
}

// ExportsDecl is one `exports pkg [to m1, m2];` directive.
type ExportsDecl struct {
	Package string
	To      []string // empty means unqualified
	Pos     Pos
}

// OpensDecl is one `opens pkg [to m1, m2];` directive.
type OpensDecl struct {
	Package string
	To      []string
	Pos     Pos
}

// ProvidesDecl is one `provides Service with Impl1, Impl2;` directive.
type ProvidesDecl struct {
	Service TypeRef
	Impls   []TypeRef
	Pos     Pos
}
