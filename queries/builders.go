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
	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

// Recognized function names.
const (
	FunctionAdd          = "+"
	FunctionSubtract     = "-"
	FunctionMultiply     = "*"
	FunctionDivide       = "/"
	FunctionLess         = "<"
	FunctionLessEqual    = "<="
	FunctionEqual        = "=="
	FunctionNotEqual     = "!="
	FunctionGreaterEqual = ">="
	FunctionGreater      = ">"
	FunctionMax          = "max"
	FunctionMin          = "min"
)

// functionResultType validates a function application and computes its
// result type.
func functionResultType(name string, args []Expression) (
	types.TypeIndex, error) {
	for _, arg := range args {
		if arg == nil {
			return 0, errors.ErrInvalidInput.
				WithDetail("function", name).
				WithMessage("missing argument")
		}
	}
	switch name {
	case FunctionAdd, FunctionSubtract, FunctionMultiply, FunctionDivide:
		if len(args) != 2 {
			return 0, arityError(name, 2, len(args))
		}
		promoted, ok := types.Promote(args[0].Type(), args[1].Type())
		if !ok || !promoted.IsNumeric() {
			return 0, overloadError(name, args)
		}
		return promoted, nil
	case FunctionLess, FunctionLessEqual, FunctionEqual, FunctionNotEqual,
		FunctionGreaterEqual, FunctionGreater:
		if len(args) != 2 {
			return 0, arityError(name, 2, len(args))
		}
		if _, ok := types.Promote(args[0].Type(), args[1].Type()); !ok {
			return 0, overloadError(name, args)
		}
		return types.TypeBool, nil
	case FunctionMax, FunctionMin:
		if len(args) != 2 {
			return 0, arityError(name, 2, len(args))
		}
		promoted, ok := types.Promote(args[0].Type(), args[1].Type())
		if !ok {
			return 0, overloadError(name, args)
		}
		return promoted, nil
	}
	return 0, errors.ErrTypeCompatibility.
		WithDetail("function", name).
		WithMessage("unrecognized function")
}

func arityError(name string, want, got int) error {
	return errors.ErrTypeCompatibility.
		WithDetail("function", name).
		WithDetail("want", want).
		WithDetail("got", got).
		WithMessage("invalid argument count")
}

func overloadError(name string, args []Expression) error {
	err := errors.ErrTypeCompatibility.WithDetail("function", name)
	for i, arg := range args {
		err = err.WithDetail(
			"arg"+string(rune('0'+i)), arg.Type().String())
	}
	return err.WithMessage("no overload for argument types")
}

// newFunction builds a function expression with its computed result type.
func newFunction(name string, args ...Expression) (Expression, error) {
	resultType, err := functionResultType(name, args)
	if err != nil {
		return nil, err
	}
	return NewFunction(name, resultType, args)
}

// Constant creates a constant expression from a native value.
func Constant(value types.Value) Expression {
	return NewConstant(value)
}

// ConstantBool creates a boolean constant expression.
func ConstantBool(value bool) Expression {
	return NewConstant(types.Bool(value))
}

// ConstantInt creates an integer constant expression.
func ConstantInt(value int32) Expression {
	return NewConstant(types.Int(value))
}

// And creates the conjunction of two boolean expressions.
func And(left, right Expression) (Expression, error) {
	return NewAnd(left, right)
}

// Or creates the disjunction of two boolean expressions.
func Or(left, right Expression) (Expression, error) {
	return NewOr(left, right)
}

// Not negates a boolean expression.
func Not(operand Expression) (Expression, error) {
	return NewNot(operand)
}

// Add creates an addition over two numeric expressions.
func Add(left, right Expression) (Expression, error) {
	return newFunction(FunctionAdd, left, right)
}

// Subtract creates a subtraction over two numeric expressions.
func Subtract(left, right Expression) (Expression, error) {
	return newFunction(FunctionSubtract, left, right)
}

// Multiply creates a multiplication over two numeric expressions.
func Multiply(left, right Expression) (Expression, error) {
	return newFunction(FunctionMultiply, left, right)
}

// Divide creates a division over two numeric expressions.
func Divide(left, right Expression) (Expression, error) {
	return newFunction(FunctionDivide, left, right)
}

// Less creates a strict ordering comparison.
func Less(left, right Expression) (Expression, error) {
	return newFunction(FunctionLess, left, right)
}

// LessEqual creates a non-strict ordering comparison.
func LessEqual(left, right Expression) (Expression, error) {
	return newFunction(FunctionLessEqual, left, right)
}

// Equal creates an equality comparison.
func Equal(left, right Expression) (Expression, error) {
	return newFunction(FunctionEqual, left, right)
}

// NotEqual creates an inequality comparison.
func NotEqual(left, right Expression) (Expression, error) {
	return newFunction(FunctionNotEqual, left, right)
}

// GreaterEqual creates a non-strict reverse ordering comparison.
func GreaterEqual(left, right Expression) (Expression, error) {
	return newFunction(FunctionGreaterEqual, left, right)
}

// Greater creates a strict reverse ordering comparison.
func Greater(left, right Expression) (Expression, error) {
	return newFunction(FunctionGreater, left, right)
}

// Max creates an expression evaluating to the greater of its operands.
func Max(left, right Expression) (Expression, error) {
	return newFunction(FunctionMax, left, right)
}

// Min creates an expression evaluating to the lesser of its operands.
func Min(left, right Expression) (Expression, error) {
	return newFunction(FunctionMin, left, right)
}

// Conjunction folds boolean expressions right-associatively into nested
// conjunctions. An empty sequence folds to the constant false and a
// singleton returns its expression unchanged.
func Conjunction(expressions []Expression) (Expression, error) {
	if len(expressions) == 0 {
		return ConstantBool(false), nil
	}
	result := expressions[len(expressions)-1]
	for i := len(expressions) - 2; i >= 0; i-- {
		combined, err := NewAnd(expressions[i], result)
		if err != nil {
			return nil, err
		}
		result = combined
	}
	return result, nil
}

// EqualExpressions reports whether two expressions are structurally
// identical with identical types.
func EqualExpressions(a, b Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.tag() != b.tag() || a.Type() != b.Type() {
		return false
	}
	switch left := a.(type) {
	case *ConstantExpression:
		return left.Value().Equal(b.(*ConstantExpression).Value())
	case *ParameterExpression:
		return left.Index() == b.(*ParameterExpression).Index()
	case *VariableExpression:
		return left.Name() == b.(*VariableExpression).Name()
	case *MemberAccessExpression:
		right := b.(*MemberAccessExpression)
		return left.Name() == right.Name() &&
			EqualExpressions(left.Target(), right.Target())
	case *FunctionExpression:
		right := b.(*FunctionExpression)
		if left.Name() != right.Name() ||
			len(left.Args()) != len(right.Args()) {
			return false
		}
		for i := range left.Args() {
			if !EqualExpressions(left.Args()[i], right.Args()[i]) {
				return false
			}
		}
		return true
	case *NotExpression:
		return EqualExpressions(left.Operand(), b.(*NotExpression).Operand())
	case *AndExpression:
		right := b.(*AndExpression)
		return EqualExpressions(left.Left(), right.Left()) &&
			EqualExpressions(left.Right(), right.Right())
	case *OrExpression:
		right := b.(*OrExpression)
		return EqualExpressions(left.Left(), right.Left()) &&
			EqualExpressions(left.Right(), right.Right())
	case *GlobalVariableDeclarationExpression:
		right := b.(*GlobalVariableDeclarationExpression)
		return left.Name() == right.Name() &&
			EqualExpressions(left.Initial(), right.Initial()) &&
			EqualExpressions(left.Body(), right.Body())
	case *SetVariableExpression:
		right := b.(*SetVariableExpression)
		return left.Name() == right.Name() &&
			EqualExpressions(left.Value(), right.Value())
	case *ReduceExpression:
		right := b.(*ReduceExpression)
		return left.Initial().Equal(right.Initial()) &&
			EqualExpressions(left.Reducer(), right.Reducer()) &&
			EqualExpressions(left.Series(), right.Series())
	}
	return false
}
