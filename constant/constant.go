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

// Package constant evaluates the constant expressions a header
// compiler needs: field initializers of static final primitive/String
// fields, and annotation element values. Full executable-statement
// evaluation is out of scope; only the constant-expression grammar
// needed for field initializers and annotation values is supported.
package constant

import (
	"fmt"
	"strings"

	"github.com/gojvm/hdrc/cycle"
	"github.com/gojvm/hdrc/diag"
	"github.com/gojvm/hdrc/memo"
	"github.com/gojvm/hdrc/scope"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/tree"
	"github.com/gojvm/hdrc/types"
)

// FieldResolver looks up another field's declared type and
// initializer expression, so a reference to another static final
// field can be evaluated recursively.
type FieldResolver interface {
	ResolveField(sym symbol.Class, name string) (declType types.Type, init *tree.Expr, sc *scope.ClassScope, ok bool)
}

// Evaluator evaluates constant expression trees, memoizing results per
// field symbol so cross-field references stay O(n), and detecting
// cycles among cross-field references.
type Evaluator struct {
	Fields FieldResolver
	Sink   *diag.Sink

	cache *memo.Table[symbol.Field, types.Const]
	guard *cycle.Guard[symbol.Field]
}

// NewEvaluator returns an Evaluator.
func NewEvaluator(fields FieldResolver, sink *diag.Sink) *Evaluator {
	return &Evaluator{
		Fields: fields,
		Sink:   sink,
		cache:  memo.NewTable[symbol.Field, types.Const](),
		guard:  cycle.NewGuard[symbol.Field](),
	}
}

// EvalField evaluates sym's initializer expression against declType,
// memoizing the result. Returns (zero Const, false) if sym has no
// constant initializer or evaluation failed; a diagnostic has already
// been reported in the latter case.
func (e *Evaluator) EvalField(sym symbol.Field, declType types.Type, init tree.Expr, sc *scope.ClassScope) (types.Const, bool) {
	c, err := e.cache.Get(sym, func() (types.Const, error) {
		if e.guard.Enter(sym) {
			return types.Const{}, fmt.Errorf("cyclic constant reference involving %s: %v", sym, e.guard.Stack())
		}
		defer e.guard.Leave(sym)
		return e.eval(init, declType, sc)
	})
	if err != nil {
		e.Sink.Report(diag.BadConstantExpression, "", init.Pos, "%s: %v", sym, err)
		return types.Const{}, false
	}
	return c, true
}

func (e *Evaluator) eval(expr tree.Expr, declType types.Type, sc *scope.ClassScope) (types.Const, error) {
	c, err := e.evalExpr(expr, sc)
	if err != nil {
		return types.Const{}, err
	}
	return coerce(c, declType), nil
}

// coerce applies the single-value-to-length-1-array rule when
// declType is an array but the evaluated value is not.
func coerce(c types.Const, declType types.Type) types.Const {
	if declType.Kind == types.KindArray && c.Kind != types.ConstArray {
		return types.AsArray(c)
	}
	return c
}

func (e *Evaluator) evalExpr(expr tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	switch expr.Kind {
	case tree.ExprLiteral:
		return e.evalLiteral(expr)
	case tree.ExprParen:
		return e.evalExpr(*expr.A, sc)
	case tree.ExprUnary:
		return e.evalUnary(expr, sc)
	case tree.ExprBinary:
		return e.evalBinary(expr, sc)
	case tree.ExprConditional:
		cond, err := e.evalExpr(*expr.A, sc)
		if err != nil {
			return types.Const{}, err
		}
		if cond.Kind != types.ConstBoolean {
			return types.Const{}, fmt.Errorf("conditional operand is not boolean")
		}
		if cond.Bool {
			return e.evalExpr(*expr.B, sc)
		}
		return e.evalExpr(*expr.C, sc)
	case tree.ExprCast:
		v, err := e.evalExpr(*expr.A, sc)
		if err != nil {
			return types.Const{}, err
		}
		return castTo(v, expr.CastType.Prim), nil
	case tree.ExprArrayInit:
		elems := make([]types.Const, len(expr.Elems))
		for i, el := range expr.Elems {
			v, err := e.evalExpr(el, sc)
			if err != nil {
				return types.Const{}, err
			}
			elems[i] = v
		}
		return types.Const{Kind: types.ConstArray, Elems: elems}, nil
	case tree.ExprNameRef:
		return e.evalNameRef(expr, sc)
	case tree.ExprEnumRef:
		return e.evalEnumRef(expr, sc)
	case tree.ExprClassLit:
		t, err := resolveTypeRefShallow(*expr.ClassLitType, sc)
		if err != nil {
			return types.Const{}, err
		}
		return types.Const{Kind: types.ConstClass, ClassLit: &t}, nil
	case tree.ExprAnnotationLit:
		info, err := e.EvalAnnotation(*expr.Anno, sc)
		if err != nil {
			return types.Const{}, err
		}
		return types.Const{Kind: types.ConstAnno, Anno: &info}, nil
	default:
		return types.Const{}, fmt.Errorf("unsupported constant expression kind %d", expr.Kind)
	}
}

func (e *Evaluator) evalLiteral(expr tree.Expr) (types.Const, error) {
	switch expr.LitKind {
	case tree.LitBoolean:
		return types.ConstBool(expr.Bool), nil
	case tree.LitChar:
		return types.Const{Kind: types.ConstChar, Int64: expr.Int64}, nil
	case tree.LitInt:
		return types.ConstInt(int32(expr.Int64)), nil
	case tree.LitLong:
		return types.ConstLongVal(expr.Int64), nil
	case tree.LitFloat:
		return types.Const{Kind: types.ConstFloat, Float: expr.Float32}, nil
	case tree.LitDouble:
		return types.Const{Kind: types.ConstDouble, Double: expr.Float64}, nil
	case tree.LitString:
		return types.ConstStr(expr.Str), nil
	default:
		return types.Const{}, fmt.Errorf("literal kind %d has no constant representation", expr.LitKind)
	}
}

func (e *Evaluator) evalUnary(expr tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	v, err := e.evalExpr(*expr.A, sc)
	if err != nil {
		return types.Const{}, err
	}
	switch expr.Op {
	case "!":
		return types.ConstBool(!v.Bool), nil
	case "-":
		return negate(v), nil
	case "+":
		return v, nil
	case "~":
		return types.Const{Kind: v.Kind, Int64: ^v.Int64}, nil
	default:
		return types.Const{}, fmt.Errorf("unsupported unary operator %q", expr.Op)
	}
}

func negate(v types.Const) types.Const {
	switch v.Kind {
	case types.ConstFloat:
		return types.Const{Kind: types.ConstFloat, Float: -v.Float}
	case types.ConstDouble:
		return types.Const{Kind: types.ConstDouble, Double: -v.Double}
	default:
		return types.Const{Kind: v.Kind, Int64: -v.Int64}
	}
}

func castTo(v types.Const, prim types.PrimKind) types.Const {
	switch prim {
	case types.Int:
		return types.ConstInt(int32(v.Int64))
	case types.Long:
		return types.ConstLongVal(v.Int64)
	case types.Byte:
		return types.Const{Kind: types.ConstByte, Int64: int64(int8(v.Int64))}
	case types.Short:
		return types.Const{Kind: types.ConstShort, Int64: int64(int16(v.Int64))}
	case types.Char:
		return types.Const{Kind: types.ConstChar, Int64: int64(uint16(v.Int64))}
	case types.Float:
		return types.Const{Kind: types.ConstFloat, Float: float32(v.Double)}
	case types.Double:
		return types.Const{Kind: types.ConstDouble, Double: v.Double}
	default:
		return v
	}
}

func (e *Evaluator) evalBinary(expr tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	a, err := e.evalExpr(*expr.A, sc)
	if err != nil {
		return types.Const{}, err
	}
	b, err := e.evalExpr(*expr.B, sc)
	if err != nil {
		return types.Const{}, err
	}
	if expr.Op == "+" && (a.Kind == types.ConstString || b.Kind == types.ConstString) {
		return types.ConstStr(stringOf(a) + stringOf(b)), nil
	}
	if isIntegral(a.Kind) && isIntegral(b.Kind) {
		return evalIntegral(expr.Op, a, b)
	}
	return evalFloating(expr.Op, a, b)
}

func isIntegral(k types.ConstKind) bool {
	switch k {
	case types.ConstByte, types.ConstShort, types.ConstChar, types.ConstInt, types.ConstLong, types.ConstBoolean:
		return true
	}
	return false
}

func widestKind(a, b types.ConstKind) types.ConstKind {
	if a == types.ConstLong || b == types.ConstLong {
		return types.ConstLong
	}
	return types.ConstInt
}

func evalIntegral(op string, a, b types.Const) (types.Const, error) {
	if op == "&&" || op == "||" {
		var r bool
		if op == "&&" {
			r = a.Bool && b.Bool
		} else {
			r = a.Bool || b.Bool
		}
		return types.ConstBool(r), nil
	}
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return compareIntegral(op, a, b)
	}
	kind := widestKind(a.Kind, b.Kind)
	x, y := a.Int64, b.Int64
	var r int64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "/":
		if y == 0 {
			return types.Const{}, fmt.Errorf("division by zero")
		}
		r = x / y
	case "%":
		if y == 0 {
			return types.Const{}, fmt.Errorf("division by zero")
		}
		r = x % y
	case "&":
		r = x & y
	case "|":
		r = x | y
	case "^":
		r = x ^ y
	case "<<":
		r = x << uint(y)
	case ">>":
		r = x >> uint(y)
	case ">>>":
		if kind == types.ConstLong {
			r = int64(uint64(x) >> uint(y))
		} else {
			r = int64(uint32(x) >> uint(y))
		}
	default:
		return types.Const{}, fmt.Errorf("unsupported integer operator %q", op)
	}
	if kind == types.ConstInt {
		r = int64(int32(r))
	}
	return types.Const{Kind: kind, Int64: r}, nil
}

func compareIntegral(op string, a, b types.Const) (types.Const, error) {
	if a.Kind == types.ConstBoolean {
		switch op {
		case "==":
			return types.ConstBool(a.Bool == b.Bool), nil
		case "!=":
			return types.ConstBool(a.Bool != b.Bool), nil
		}
		return types.Const{}, fmt.Errorf("operator %q not defined for boolean", op)
	}
	x, y := a.Int64, b.Int64
	var r bool
	switch op {
	case "==":
		r = x == y
	case "!=":
		r = x != y
	case "<":
		r = x < y
	case "<=":
		r = x <= y
	case ">":
		r = x > y
	case ">=":
		r = x >= y
	}
	return types.ConstBool(r), nil
}

func evalFloating(op string, a, b types.Const) (types.Const, error) {
	x, y := floatOf(a), floatOf(b)
	switch op {
	case "+":
		return dbl(x + y), nil
	case "-":
		return dbl(x - y), nil
	case "*":
		return dbl(x * y), nil
	case "/":
		return dbl(x / y), nil
	case "==":
		return types.ConstBool(x == y), nil
	case "!=":
		return types.ConstBool(x != y), nil
	case "<":
		return types.ConstBool(x < y), nil
	case "<=":
		return types.ConstBool(x <= y), nil
	case ">":
		return types.ConstBool(x > y), nil
	case ">=":
		return types.ConstBool(x >= y), nil
	default:
		return types.Const{}, fmt.Errorf("unsupported floating operator %q", op)
	}
}

func dbl(v float64) types.Const { return types.Const{Kind: types.ConstDouble, Double: v} }

func floatOf(c types.Const) float64 {
	switch c.Kind {
	case types.ConstFloat:
		return float64(c.Float)
	case types.ConstDouble:
		return c.Double
	default:
		return float64(c.Int64)
	}
}

func stringOf(c types.Const) string {
	switch c.Kind {
	case types.ConstString:
		return c.Str
	case types.ConstBoolean:
		return fmt.Sprintf("%t", c.Bool)
	case types.ConstChar:
		return string(rune(c.Int64))
	case types.ConstFloat:
		return fmt.Sprintf("%g", c.Float)
	case types.ConstDouble:
		return fmt.Sprintf("%g", c.Double)
	default:
		return fmt.Sprintf("%d", c.Int64)
	}
}

func (e *Evaluator) evalNameRef(expr tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	if len(expr.Names) == 1 {
		owner, fields, _, found := sc.LookupMember(expr.Names[0])
		if found && len(fields) > 0 {
			return e.evalFieldRef(owner, fields[0], sc)
		}
		return types.Const{}, fmt.Errorf("cannot resolve %q as a constant", expr.Names[0])
	}
	ownerSym, err := resolveDottedOwner(expr.Names[:len(expr.Names)-1], sc)
	if err != nil {
		return types.Const{}, err
	}
	fieldName := expr.Names[len(expr.Names)-1]
	_, init, fieldSC, ok := e.Fields.ResolveField(ownerSym, fieldName)
	if !ok {
		return types.Const{}, fmt.Errorf("cannot resolve %s.%s as a constant", ownerSym, fieldName)
	}
	return e.EvalFieldByName(ownerSym, fieldName, *init, fieldSC)
}

// EvalFieldByName is a convenience wrapper evaluating another field's
// initializer by owner/name, used for cross-class constant references.
func (e *Evaluator) EvalFieldByName(owner symbol.Class, name string, init tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	declType, _, _, ok := e.Fields.ResolveField(owner, name)
	if !ok {
		return types.Const{}, fmt.Errorf("cannot resolve %s.%s", owner, name)
	}
	c, ok := e.EvalField(symbol.Field{Owner: owner, Name: name}, declType, init, sc)
	if !ok {
		return types.Const{}, fmt.Errorf("failed to evaluate %s.%s", owner, name)
	}
	return c, nil
}

func (e *Evaluator) evalFieldRef(owner symbol.Class, f types.Field, sc *scope.ClassScope) (types.Const, error) {
	if f.ConstValue != nil {
		return *f.ConstValue, nil
	}
	_, init, fieldSC, ok := e.Fields.ResolveField(owner, f.Sym.Name)
	if !ok || init == nil {
		return types.Const{}, fmt.Errorf("%s is not a constant field", f.Sym)
	}
	c, ok := e.EvalField(f.Sym, f.Type, *init, fieldSC)
	if !ok {
		return types.Const{}, fmt.Errorf("failed to evaluate %s", f.Sym)
	}
	return c, nil
}

// EvalAnnotation evaluates one annotation use into its fully-folded
// form: the annotation's class symbol and a map from declared element
// name to evaluated constant (a bare `@Anno(value)` names its sole
// element "value", matching the language's single-element shorthand).
func (e *Evaluator) EvalAnnotation(a tree.AnnotationDecl, sc *scope.ClassScope) (types.AnnoInfo, error) {
	t, err := resolveTypeRefShallow(a.Type, sc)
	if err != nil {
		return types.AnnoInfo{}, err
	}
	if t.Kind != types.KindClass {
		return types.AnnoInfo{}, fmt.Errorf("annotation type does not resolve to a class")
	}
	info := types.AnnoInfo{Type: t.InnermostClass(), Elements: make(map[string]types.Const)}
	for _, ev := range a.Elements {
		name := ev.Name
		if name == "" {
			name = "value"
		}
		c, err := e.evalExpr(ev.Value, sc)
		if err != nil {
			return types.AnnoInfo{}, fmt.Errorf("element %s of %s: %w", name, info.Type, err)
		}
		info.Elements[name] = c
		info.ElementOrder = append(info.ElementOrder, name)
	}
	return info, nil
}

func (e *Evaluator) evalEnumRef(expr tree.Expr, sc *scope.ClassScope) (types.Const, error) {
	ownerSym, err := resolveDottedOwner(expr.Names[:len(expr.Names)-1], sc)
	if err != nil {
		return types.Const{}, err
	}
	return types.Const{Kind: types.ConstEnum, EnumType: ownerSym, EnumName: expr.Names[len(expr.Names)-1]}, nil
}

func resolveDottedOwner(names []string, sc *scope.ClassScope) (symbol.Class, error) {
	root, tail, err := sc.LookupQualified(names)
	if err != nil {
		return "", err
	}
	if len(tail) == 0 {
		return root, nil
	}
	return symbol.Class(string(root) + "$" + strings.Join(tail, "$")), nil
}

func resolveTypeRefShallow(ref tree.TypeRef, sc *scope.ClassScope) (types.Type, error) {
	switch ref.Kind {
	case tree.RefPrimitive:
		return types.Prim(primFromKeyword(ref.Prim)), nil
	case tree.RefVoid:
		return types.Void, nil
	case tree.RefArray:
		elem, err := resolveTypeRefShallow(*ref.Elem, sc)
		if err != nil {
			return types.Type{}, err
		}
		return types.Array(elem), nil
	default:
		root, tail, err := sc.LookupQualified(ref.Names)
		if err != nil {
			return types.Type{}, err
		}
		if len(tail) > 0 {
			root = symbol.Class(string(root) + "$" + strings.Join(tail, "$"))
		}
		return types.Class(root), nil
	}
}

func primFromKeyword(kw string) types.PrimKind {
	switch kw {
	case "boolean":
		return types.Boolean
	case "byte":
		return types.Byte
	case "short":
		return types.Short
	case "char":
		return types.Char
	case "int":
		return types.Int
	case "long":
		return types.Long
	case "float":
		return types.Float
	case "double":
		return types.Double
	default:
		return types.Int
	}
}

