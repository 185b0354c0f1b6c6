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

package sig

import (
	"strings"
	"testing"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

func TestTypeNonGeneric(t *testing.T) {
	cases := []struct {
		name string
		t    types.Type
		want string
	}{
		{"void", types.Void, "V"},
		{"prim int", types.Prim(types.Int), "I"},
		{"prim boolean", types.Prim(types.Boolean), "Z"},
		{"class", types.Class("java/lang/String"), "Ljava/lang/String;"},
		{"array of int", types.Array(types.Prim(types.Int)), "[I"},
		{"array of class", types.Array(types.Class("java/lang/String")), "[Ljava/lang/String;"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var sb strings.Builder
			Type(&sb, c.t)
			if got := sb.String(); got != c.want {
				t.Errorf("Type() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestTypeVariable(t *testing.T) {
	tv := symbol.TyVar{Owner: symbol.Class("test/Box"), Name: "T"}
	var sb strings.Builder
	Type(&sb, types.Var(tv))
	if want, got := "TT;", sb.String(); got != want {
		t.Errorf("Type(var) = %q, want %q", got, want)
	}
}

func TestTypeWildcards(t *testing.T) {
	cases := []struct {
		name string
		t    types.Type
		want string
	}{
		{"unbounded", types.WildcardUnbounded(), "*"},
		{"upper", types.WildcardUpper(types.Class("java/lang/Number")), "+Ljava/lang/Number;"},
		{"lower", types.WildcardLower(types.Class("java/lang/Integer")), "-Ljava/lang/Integer;"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var sb strings.Builder
			Type(&sb, c.t)
			if got := sb.String(); got != c.want {
				t.Errorf("Type() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestTypeParameterizedClass(t *testing.T) {
	// List<String>
	listOfString := types.ClassArgs("java/util/List", types.Class("java/lang/String"))
	var sb strings.Builder
	Type(&sb, listOfString)
	if want, got := "Ljava/util/List<Ljava/lang/String;>;", sb.String(); got != want {
		t.Errorf("Type(List<String>) = %q, want %q", got, want)
	}
}

func TestTypeNestedGenericFlatForm(t *testing.T) {
	// Outer$Inner with no part parameterized stays in flat form.
	nested := types.Type{Kind: types.KindClass, ClassParts: []types.ClassPart{
		{Sym: "test/Outer$Inner"},
	}}
	var sb strings.Builder
	Type(&sb, nested)
	if want, got := "Ltest/Outer$Inner;", sb.String(); got != want {
		t.Errorf("Type(Outer$Inner) = %q, want %q", got, want)
	}
}

func TestTypeNestedGenericExpandedForm(t *testing.T) {
	// Outer<Object>.Inner<Object>: both parts parameterized, so the
	// inner part is written with a leading '.' and its simple name only.
	nested := types.Type{Kind: types.KindClass, ClassParts: []types.ClassPart{
		{Sym: "test/Outer", Args: []types.Type{types.Class("java/lang/Object")}},
		{Sym: "test/Outer$Inner", Args: []types.Type{types.Class("java/lang/Object")}},
	}}
	var sb strings.Builder
	Type(&sb, nested)
	want := "Ltest/Outer<Ljava/lang/Object;>.Inner<Ljava/lang/Object;>;"
	if got := sb.String(); got != want {
		t.Errorf("Type(Outer<Object>.Inner<Object>) = %q, want %q", got, want)
	}
}

func TestClassSignatureOmittedWhenNotGeneric(t *testing.T) {
	got, ok := ClassSignature(nil, nil, nil, nil)
	if ok {
		t.Errorf("ClassSignature() ok = true for a fully non-generic class, want false (got %q)", got)
	}
}

func TestClassSignatureWithTypeParamAndSuper(t *testing.T) {
	tparams := []types.TypeParam{
		{Sym: symbol.TyVar{Name: "T"}, Bound: types.Intersection(types.Class("java/lang/Object"))},
	}
	super := types.Class("java/lang/Object")
	got, ok := ClassSignature(tparams, &super, nil, nil)
	if !ok {
		t.Fatalf("ClassSignature() ok = false, want true")
	}
	want := "<T:Ljava/lang/Object;>Ljava/lang/Object;"
	if got != want {
		t.Errorf("ClassSignature() = %q, want %q", got, want)
	}
}

func TestClassSignatureInterfaceFirstBound(t *testing.T) {
	// <T:Ljava/lang/Comparable<TT;>;> where the first (and only) bound
	// is an interface: the class-bound slot is left empty.
	comparableOfT := types.ClassArgs("java/lang/Comparable", types.Var(symbol.TyVar{Name: "T"}))
	tparams := []types.TypeParam{
		{Sym: symbol.TyVar{Name: "T"}, Bound: types.Intersection(comparableOfT)},
	}
	isInterface := func(types.Type) bool { return true }
	got, ok := ClassSignature(tparams, nil, nil, isInterface)
	if !ok {
		t.Fatalf("ClassSignature() ok = false, want true")
	}
	want := "<T::Ljava/lang/Comparable<TT;>;>Ljava/lang/Object;"
	if got != want {
		t.Errorf("ClassSignature() = %q, want %q", got, want)
	}
}

func TestMethodSignatureOmittedWhenNotGeneric(t *testing.T) {
	_, ok := MethodSignature(nil, []types.Type{types.Prim(types.Int)}, types.Void, nil, nil)
	if ok {
		t.Errorf("MethodSignature() ok = true for a fully erased method, want false")
	}
}

func TestMethodSignatureGenericParamsAndReturn(t *testing.T) {
	params := []types.Type{types.Class("java/util/List")}
	params[0].ClassParts[0].Args = []types.Type{types.Var(symbol.TyVar{Name: "T"})}
	ret := types.Var(symbol.TyVar{Name: "T"})
	got, ok := MethodSignature(nil, params, ret, nil, nil)
	if !ok {
		t.Fatalf("MethodSignature() ok = false, want true")
	}
	want := "(Ljava/util/List<TT;>;)TT;"
	if got != want {
		t.Errorf("MethodSignature() = %q, want %q", got, want)
	}
}

func TestMethodSignatureWithGenericThrows(t *testing.T) {
	thrown := []types.Type{types.Var(symbol.TyVar{Name: "E"})}
	got, ok := MethodSignature(nil, nil, types.Void, thrown, nil)
	if !ok {
		t.Fatalf("MethodSignature() ok = false, want true")
	}
	want := "()V^TE;"
	if got != want {
		t.Errorf("MethodSignature() = %q, want %q", got, want)
	}
}

func TestFieldSignature(t *testing.T) {
	if _, ok := FieldSignature(types.Prim(types.Int)); ok {
		t.Errorf("FieldSignature(int) ok = true, want false")
	}

	listOfT := types.ClassArgs("java/util/List", types.Var(symbol.TyVar{Name: "T"}))
	got, ok := FieldSignature(listOfT)
	if !ok {
		t.Fatalf("FieldSignature(List<T>) ok = false, want true")
	}
	if want := "Ljava/util/List<TT;>;"; got != want {
		t.Errorf("FieldSignature(List<T>) = %q, want %q", got, want)
	}
}
