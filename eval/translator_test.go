// Copyright (C) 2025 beam-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package eval

import (
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

func translate(t *testing.T, expression queries.Expression) *Evaluator {
	t.Helper()
	evaluator, err := NewTranslator().Translate(expression)
	if err != nil {
		t.Fatalf("Translate(%s) error = %v", expression, err)
	}
	return evaluator
}

func param(t *testing.T, index int, kind types.TypeIndex) queries.Expression {
	t.Helper()
	expression, err := queries.NewParameter(index, kind)
	if err != nil {
		t.Fatalf("NewParameter() error = %v", err)
	}
	return expression
}

func add(t *testing.T, left, right queries.Expression) queries.Expression {
	t.Helper()
	expression, err := queries.Add(left, right)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return expression
}

func TestTranslator_Constant(t *testing.T) {
	evaluator := translate(t, queries.ConstantInt(42))

	got, err := EvalAs[int32](evaluator)
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Eval() = %d, want 42", got)
	}
}

func TestTranslator_ParameterBinding(t *testing.T) {
	evaluator := translate(t,
		add(t, param(t, 0, types.TypeInt), param(t, 1, types.TypeInt)))

	if evaluator.ParameterCount() != 2 {
		t.Fatalf("ParameterCount() = %d, want 2", evaluator.ParameterCount())
	}
	got, err := EvalAs[int32](evaluator, types.Int(3), types.Int(4))
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 7 {
		t.Errorf("Eval(3, 4) = %d, want 7", got)
	}
}

func TestTranslator_SharedParameterSlot(t *testing.T) {
	// p0 + p0 must read the same slot twice.
	p := param(t, 0, types.TypeInt)
	evaluator := translate(t, add(t, p, param(t, 0, types.TypeInt)))

	got, err := EvalAs[int32](evaluator, types.Int(5))
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 10 {
		t.Errorf("Eval(5) = %d, want 10", got)
	}
}

func TestTranslator_MissingParameter(t *testing.T) {
	// Referencing p1 without p0 violates density.
	_, err := NewTranslator().Translate(param(t, 1, types.TypeInt))

	if !errors.IsTranslation(err) {
		t.Errorf("Translate() error = %v, want translation", err)
	}
}

func TestTranslator_ParameterTypeMismatch(t *testing.T) {
	// p0 appearing as both int and double must be rejected.
	left := param(t, 0, types.TypeInt)
	right := param(t, 0, types.TypeDouble)
	expression, err := queries.Add(left, right)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	_, err = NewTranslator().Translate(expression)
	if !errors.IsTranslation(err) {
		t.Errorf("Translate() error = %v, want translation", err)
	}
}

func TestTranslator_Promotion(t *testing.T) {
	expression := add(t, queries.ConstantInt(1),
		queries.Constant(types.Double(0.5)))
	evaluator := translate(t, expression)

	got, err := EvalAs[float64](evaluator)
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 1.5 {
		t.Errorf("Eval() = %v, want 1.5", got)
	}
}

func TestTranslator_Comparisons(t *testing.T) {
	tests := []struct {
		name  string
		build func(l, r queries.Expression) (queries.Expression, error)
		left  int32
		right int32
		want  bool
	}{
		{"less true", queries.Less, 1, 2, true},
		{"less false", queries.Less, 2, 1, false},
		{"less equal", queries.LessEqual, 2, 2, true},
		{"equal", queries.Equal, 3, 3, true},
		{"not equal", queries.NotEqual, 3, 3, false},
		{"greater equal", queries.GreaterEqual, 3, 4, false},
		{"greater", queries.Greater, 4, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expression, err := tt.build(
				queries.ConstantInt(tt.left), queries.ConstantInt(tt.right))
			if err != nil {
				t.Fatalf("build error = %v", err)
			}
			got, err := EvalAs[bool](translate(t, expression))
			if err != nil {
				t.Fatalf("EvalAs() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTranslator_MaxMin(t *testing.T) {
	maxExpr, err := queries.Max(queries.ConstantInt(3), queries.ConstantInt(9))
	if err != nil {
		t.Fatalf("Max() error = %v", err)
	}
	if got, _ := EvalAs[int32](translate(t, maxExpr)); got != 9 {
		t.Errorf("max(3, 9) = %d, want 9", got)
	}

	minExpr, err := queries.Min(
		queries.Constant(types.String("b")), queries.Constant(types.String("a")))
	if err != nil {
		t.Fatalf("Min() error = %v", err)
	}
	if got, _ := EvalAs[string](translate(t, minExpr)); got != "a" {
		t.Errorf(`min("b", "a") = %q, want "a"`, got)
	}
}

func TestTranslator_ShortCircuit(t *testing.T) {
	// Division by zero on the right side must never run when the left
	// side of an and is false.
	divide, err := queries.Divide(queries.ConstantInt(1), queries.ConstantInt(0))
	if err != nil {
		t.Fatalf("Divide() error = %v", err)
	}
	guard, err := queries.Equal(divide, queries.ConstantInt(0))
	if err != nil {
		t.Fatalf("Equal() error = %v", err)
	}
	expression, err := queries.And(queries.ConstantBool(false), guard)
	if err != nil {
		t.Fatalf("And() error = %v", err)
	}

	got, err := EvalAs[bool](translate(t, expression))
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got {
		t.Error("false && x must evaluate to false")
	}

	orExpr, err := queries.Or(queries.ConstantBool(true), guard)
	if err != nil {
		t.Fatalf("Or() error = %v", err)
	}
	got, err = EvalAs[bool](translate(t, orExpr))
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if !got {
		t.Error("true || x must evaluate to true")
	}
}

func TestTranslator_ReduceSummation(t *testing.T) {
	// reduce(p0 + p1, series = 1, initial = 0) yields 1, 2, 3, 4.
	reducer := add(t, param(t, 0, types.TypeInt), param(t, 1, types.TypeInt))
	expression, err := queries.NewReduce(
		reducer, queries.ConstantInt(1), types.Int(0))
	if err != nil {
		t.Fatalf("NewReduce() error = %v", err)
	}
	evaluator := translate(t, expression)

	for i := int32(1); i <= 4; i++ {
		got, err := EvalAs[int32](evaluator)
		if err != nil {
			t.Fatalf("EvalAs() error = %v", err)
		}
		if got != i {
			t.Errorf("Eval() #%d = %d, want %d", i, got, i)
		}
	}
}

func TestTranslator_GlobalVariable(t *testing.T) {
	// global total = 10 in (set total (total + 5)) evaluates to 15 and
	// then 20, carrying the storage across evaluations.
	variable, err := queries.NewVariable("total", types.TypeInt)
	if err != nil {
		t.Fatalf("NewVariable() error = %v", err)
	}
	increment := add(t, variable, queries.ConstantInt(5))
	assignment, err := queries.NewSetVariable("total", increment)
	if err != nil {
		t.Fatalf("NewSetVariable() error = %v", err)
	}
	expression, err := queries.NewGlobalVariableDeclaration(
		"total", queries.ConstantInt(10), assignment)
	if err != nil {
		t.Fatalf("NewGlobalVariableDeclaration() error = %v", err)
	}
	evaluator := translate(t, expression)

	if got, _ := EvalAs[int32](evaluator); got != 15 {
		t.Errorf("first Eval() = %d, want 15", got)
	}
	if got, _ := EvalAs[int32](evaluator); got != 20 {
		t.Errorf("second Eval() = %d, want 20", got)
	}
}

func TestTranslator_VariableShadowing(t *testing.T) {
	// The inner declaration of x shadows the outer within its body.
	innerVariable, err := queries.NewVariable("x", types.TypeInt)
	if err != nil {
		t.Fatalf("NewVariable() error = %v", err)
	}
	inner, err := queries.NewGlobalVariableDeclaration(
		"x", queries.ConstantInt(2), innerVariable)
	if err != nil {
		t.Fatalf("inner declaration error = %v", err)
	}
	outerVariable, err := queries.NewVariable("x", types.TypeInt)
	if err != nil {
		t.Fatalf("NewVariable() error = %v", err)
	}
	body := add(t, inner, outerVariable)
	outer, err := queries.NewGlobalVariableDeclaration(
		"x", queries.ConstantInt(1), body)
	if err != nil {
		t.Fatalf("outer declaration error = %v", err)
	}

	got, err := EvalAs[int32](translate(t, outer))
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 3 {
		t.Errorf("Eval() = %d, want 3", got)
	}
}

func TestTranslator_UnresolvedVariable(t *testing.T) {
	variable, err := queries.NewVariable("ghost", types.TypeInt)
	if err != nil {
		t.Fatalf("NewVariable() error = %v", err)
	}

	_, err = NewTranslator().Translate(variable)
	if !errors.IsTranslation(err) {
		t.Errorf("Translate() error = %v, want translation", err)
	}
}

func TestTranslator_MemberAccess(t *testing.T) {
	registry := NewAccessorRegistry()
	registry.Register(types.TypeString, "length", Accessor{
		ResultType: types.TypeInt,
		Get: func(value types.Value) types.Value {
			return types.Int(int32(len(value.AsString())))
		},
	})
	member, err := queries.NewMemberAccess("length", types.TypeInt,
		queries.Constant(types.String("hello")))
	if err != nil {
		t.Fatalf("NewMemberAccess() error = %v", err)
	}

	evaluator, err := NewTranslator(WithAccessors(registry)).Translate(member)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	got, err := EvalAs[int32](evaluator)
	if err != nil {
		t.Fatalf("EvalAs() error = %v", err)
	}
	if got != 5 {
		t.Errorf("Eval() = %d, want 5", got)
	}
}

func TestTranslator_MemberAccess_Unregistered(t *testing.T) {
	member, err := queries.NewMemberAccess("length", types.TypeInt,
		queries.Constant(types.String("hello")))
	if err != nil {
		t.Fatalf("NewMemberAccess() error = %v", err)
	}

	_, err = NewTranslator().Translate(member)
	if !errors.IsTranslation(err) {
		t.Errorf("Translate() error = %v, want translation", err)
	}
}

func TestNewFilter_MatchesRecords(t *testing.T) {
	threshold, err := queries.Greater(
		param(t, 0, types.TypeInt), queries.ConstantInt(10))
	if err != nil {
		t.Fatalf("Greater() error = %v", err)
	}

	filter, err := NewFilter(threshold)
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	if !filter(types.Int(11)) {
		t.Error("filter(11) = false, want true")
	}
	if filter(types.Int(10)) {
		t.Error("filter(10) = true, want false")
	}
}

func TestNewFilter_NilMatchesEverything(t *testing.T) {
	filter, err := NewFilter(nil)
	if err != nil {
		t.Fatalf("NewFilter(nil) error = %v", err)
	}
	if !filter(types.Int(1)) {
		t.Error("nil filter must match everything")
	}
}

func TestNewFilter_RejectsNonBoolean(t *testing.T) {
	_, err := NewFilter(queries.ConstantInt(1))

	if !errors.IsTranslation(err) {
		t.Errorf("NewFilter() error = %v, want translation", err)
	}
}

func TestEvaluator_Eval_Value(t *testing.T) {
	evaluator := translate(t, queries.ConstantInt(7))

	got, err := evaluator.Eval()
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	if !got.Equal(types.Int(7)) {
		t.Errorf("Eval() = %v, want 7", got)
	}
}

func TestEvaluator_Eval_ArgumentCount(t *testing.T) {
	evaluator := translate(t, param(t, 0, types.TypeInt))

	if _, err := evaluator.Eval(); err == nil {
		t.Error("Eval() without arguments should fail")
	}
	if _, err := evaluator.Eval(types.Int(1), types.Int(2)); err == nil {
		t.Error("Eval() with extra arguments should fail")
	}
}
