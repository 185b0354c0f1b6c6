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

// Package symbol defines the stable identifiers the binder uses to key
// every named entity it produces. Symbols carry no resolved information;
// they are keys into an Env (see package classenv).
package symbol

import "strings"

// Class is a class's binary internal name, e.g. "java/util/List" or
// "test/Outer$Inner" for a nested class. Slash separates packages,
// dollar separates nesting.
type Class string

// Split returns the package portion and the simple (innermost) name
// portion of a binary name. For "test/Outer$Inner" it returns
// ("test", "Inner").
func (c Class) Split() (pkg, simple string) {
	s := string(c)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		pkg, s = s[:i], s[i+1:]
	}
	if i := strings.LastIndexByte(s, '$'); i >= 0 {
		simple = s[i+1:]
	} else {
		simple = s
	}
	return pkg, simple
}

// Binary returns the symbol as a class-file binary name string.
func (c Class) Binary() string { return string(c) }

// IsTopLevel reports whether the class has no enclosing class, i.e. its
// binary name has no '$'.
func (c Class) IsTopLevel() bool {
	return !strings.ContainsRune(string(c), '$')
}

// Outer returns the binary name of the class's immediately-enclosing
// class and true, or ("", false) if c is top-level.
func (c Class) Outer() (Class, bool) {
	s := string(c)
	i := strings.LastIndexByte(s, '$')
	if i < 0 {
		return "", false
	}
	return Class(s[:i]), true
}

// TyVar identifies a type parameter declared on a class or method.
// Equality is structural: two TyVars are the same iff they share an
// owner and a name.
type TyVar struct {
	Owner interface{} // either Class or Method, whichever declares it
	Name  string
}

// Field identifies a field declared on a class.
type Field struct {
	Owner Class
	Name  string
}

// Method identifies a method declared on a class. Descriptor is the
// erased descriptor (e.g. "(Ljava/lang/String;I)V"), which must be
// stable under later type-argument substitution so that it can serve
// as part of the symbol's identity before generics are fully bound.
type Method struct {
	Owner      Class
	Name       string
	Descriptor string
}

// String renders a human-readable form, useful in diagnostics.
func (m Method) String() string {
	return string(m.Owner) + "#" + m.Name + m.Descriptor
}

// String renders a human-readable form, useful in diagnostics.
func (f Field) String() string {
	return string(f.Owner) + "#" + f.Name
}
