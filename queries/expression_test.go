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

package queries

import (
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

func TestNewAnd_Typing(t *testing.T) {
	expression, err := NewAnd(ConstantBool(true), ConstantBool(true))
	if err != nil {
		t.Fatalf("NewAnd() error = %v", err)
	}
	if expression.Type() != types.TypeBool {
		t.Errorf("Type() = %v, want bool", expression.Type())
	}

	left, ok := expression.Left().(*ConstantExpression)
	if !ok || !left.Value().AsBool() {
		t.Error("left child should be the constant true")
	}
	right, ok := expression.Right().(*ConstantExpression)
	if !ok || !right.Value().AsBool() {
		t.Error("right child should be the constant true")
	}
}

func TestNewAnd_TypeMismatch(t *testing.T) {
	_, err := NewAnd(ConstantInt(0), ConstantBool(true))

	if !errors.IsTypeCompatibility(err) {
		t.Errorf("NewAnd() error = %v, want type compatibility", err)
	}
}

func TestNewNot_RequiresBool(t *testing.T) {
	if _, err := NewNot(ConstantInt(1)); !errors.IsTypeCompatibility(err) {
		t.Errorf("NewNot() error = %v, want type compatibility", err)
	}
}

func TestNewParameter_IndexBounds(t *testing.T) {
	if _, err := NewParameter(0, types.TypeInt); err != nil {
		t.Errorf("NewParameter(0) error = %v", err)
	}
	if _, err := NewParameter(MaxParameters, types.TypeInt); err == nil {
		t.Error("NewParameter() should reject indexes beyond the maximum")
	}
	if _, err := NewParameter(-1, types.TypeInt); err == nil {
		t.Error("NewParameter() should reject negative indexes")
	}
}

func TestNewFunction_Promotion(t *testing.T) {
	sum, err := Add(ConstantInt(1), Constant(types.Double(2)))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if sum.Type() != types.TypeDouble {
		t.Errorf("int + double type = %v, want double", sum.Type())
	}
}

func TestNewFunction_RejectsMismatch(t *testing.T) {
	_, err := Add(ConstantInt(1), Constant(types.String("x")))
	if !errors.IsTypeCompatibility(err) {
		t.Errorf("Add(int, string) error = %v, want type compatibility", err)
	}

	_, err = NewFunction(FunctionAdd, types.TypeInt,
		[]Expression{ConstantInt(1)})
	if !errors.IsTypeCompatibility(err) {
		t.Errorf("unary + error = %v, want type compatibility", err)
	}

	_, err = NewFunction("nope", types.TypeInt,
		[]Expression{ConstantInt(1), ConstantInt(2)})
	if !errors.IsTypeCompatibility(err) {
		t.Errorf("unknown function error = %v, want type compatibility", err)
	}
}

func TestComparison_ResultType(t *testing.T) {
	less, err := Less(ConstantInt(1), ConstantInt(2))
	if err != nil {
		t.Fatalf("Less() error = %v", err)
	}
	if less.Type() != types.TypeBool {
		t.Errorf("comparison type = %v, want bool", less.Type())
	}
}

func TestNewReduce_Typing(t *testing.T) {
	reducer := mustAdd(t, mustParameter(t, 0, types.TypeInt),
		mustParameter(t, 1, types.TypeInt))

	if _, err := NewReduce(reducer, ConstantInt(1), types.Int(0)); err != nil {
		t.Errorf("NewReduce() error = %v", err)
	}
	if _, err := NewReduce(
		reducer, ConstantBool(true), types.Int(0)); !errors.IsTypeCompatibility(err) {
		t.Error("NewReduce() should reject a series of a different type")
	}
	if _, err := NewReduce(
		reducer, ConstantInt(1), types.Double(0)); !errors.IsTypeCompatibility(err) {
		t.Error("NewReduce() should reject an initial value of a different type")
	}
}

func TestConjunction_Folding(t *testing.T) {
	empty, err := Conjunction(nil)
	if err != nil {
		t.Fatalf("Conjunction(nil) error = %v", err)
	}
	constant, ok := empty.(*ConstantExpression)
	if !ok || constant.Value().AsBool() {
		t.Errorf("Conjunction(nil) = %v, want constant false", empty)
	}

	single := ConstantBool(true)
	got, err := Conjunction([]Expression{single})
	if err != nil {
		t.Fatalf("Conjunction(singleton) error = %v", err)
	}
	if got != single {
		t.Error("Conjunction(singleton) should return the expression unchanged")
	}

	folded, err := Conjunction([]Expression{
		ConstantBool(true), ConstantBool(false), ConstantBool(true)})
	if err != nil {
		t.Fatalf("Conjunction() error = %v", err)
	}
	if want := "(and true (and false true))"; folded.String() != want {
		t.Errorf("Conjunction().String() = %q, want %q", folded.String(), want)
	}
}

func TestGlobalVariableDeclaration_Type(t *testing.T) {
	variable := mustVariable(t, "count", types.TypeInt)
	declaration, err := NewGlobalVariableDeclaration(
		"count", ConstantInt(0), variable)
	if err != nil {
		t.Fatalf("NewGlobalVariableDeclaration() error = %v", err)
	}
	if declaration.Type() != types.TypeInt {
		t.Errorf("Type() = %v, want the body type", declaration.Type())
	}
}

func TestTraversalVisitor_RecursesChildren(t *testing.T) {
	inner := mustAdd(t, ConstantInt(1), ConstantInt(2))
	filter := mustLess(t, inner, ConstantInt(5))
	expression := mustAnd(t, filter, ConstantBool(true))

	counter := &constantCounter{}
	counter.Self = counter
	expression.Apply(counter)

	if counter.count != 4 {
		t.Errorf("visited %d constants, want 4", counter.count)
	}
}

// constantCounter counts constants while relying on TraversalVisitor for
// recursion.
type constantCounter struct {
	TraversalVisitor
	count int
}

func (c *constantCounter) VisitConstant(*ConstantExpression) {
	c.count++
}

func mustParameter(t *testing.T, index int, dataType types.TypeIndex) Expression {
	t.Helper()
	expression, err := NewParameter(index, dataType)
	if err != nil {
		t.Fatalf("NewParameter() error = %v", err)
	}
	return expression
}

func mustVariable(t *testing.T, name string, dataType types.TypeIndex) Expression {
	t.Helper()
	expression, err := NewVariable(name, dataType)
	if err != nil {
		t.Fatalf("NewVariable() error = %v", err)
	}
	return expression
}

func mustAdd(t *testing.T, left, right Expression) Expression {
	t.Helper()
	expression, err := Add(left, right)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return expression
}

func mustLess(t *testing.T, left, right Expression) Expression {
	t.Helper()
	expression, err := Less(left, right)
	if err != nil {
		t.Fatalf("Less() error = %v", err)
	}
	return expression
}

func mustAnd(t *testing.T, left, right Expression) Expression {
	t.Helper()
	expression, err := NewAnd(left, right)
	if err != nil {
		t.Fatalf("NewAnd() error = %v", err)
	}
	return expression
}
