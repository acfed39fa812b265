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
	"fmt"
	"strings"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

// Serialization tags, stable across both ends of a connection.
const (
	tagConstant  = "constant"
	tagParameter = "parameter"
	tagVariable  = "variable"
	tagMember    = "member"
	tagFunction  = "function"
	tagNot       = "not"
	tagAnd       = "and"
	tagOr        = "or"
	tagGlobal    = "global"
	tagSet       = "set"
	tagReduce    = "reduce"
)

// ConstantExpression evaluates to a fixed value.
type ConstantExpression struct {
	value types.Value
}

// NewConstant creates a ConstantExpression.
func NewConstant(value types.Value) *ConstantExpression {
	return &ConstantExpression{value: value}
}

// Value returns the constant's value.
func (e *ConstantExpression) Value() types.Value {
	return e.value
}

func (e *ConstantExpression) Type() types.TypeIndex {
	return e.value.Type()
}

func (e *ConstantExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitConstant(e)
}

func (e *ConstantExpression) String() string {
	return e.value.String()
}

func (e *ConstantExpression) tag() string { return tagConstant }

// ParameterExpression reads one of the evaluator's parameter slots.
type ParameterExpression struct {
	index    int
	dataType types.TypeIndex
}

// NewParameter creates a ParameterExpression. The index must fall within
// [0, MaxParameters).
func NewParameter(index int, dataType types.TypeIndex) (
	*ParameterExpression, error) {
	if index < 0 || index >= MaxParameters {
		return nil, errors.ErrTypeCompatibility.
			WithDetail("index", index).
			WithMessage("parameter index out of range")
	}
	return &ParameterExpression{index: index, dataType: dataType}, nil
}

// Index returns the parameter slot.
func (e *ParameterExpression) Index() int {
	return e.index
}

func (e *ParameterExpression) Type() types.TypeIndex {
	return e.dataType
}

func (e *ParameterExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitParameter(e)
}

func (e *ParameterExpression) String() string {
	return fmt.Sprintf("p%d", e.index)
}

func (e *ParameterExpression) tag() string { return tagParameter }

// VariableExpression reads a variable bound by an enclosing global
// declaration.
type VariableExpression struct {
	name     string
	dataType types.TypeIndex
}

// NewVariable creates a VariableExpression.
func NewVariable(name string, dataType types.TypeIndex) (
	*VariableExpression, error) {
	if name == "" {
		return nil, errors.ErrInvalidInput.
			WithMessage("variable name cannot be empty")
	}
	return &VariableExpression{name: name, dataType: dataType}, nil
}

// Name returns the variable's name.
func (e *VariableExpression) Name() string {
	return e.name
}

func (e *VariableExpression) Type() types.TypeIndex {
	return e.dataType
}

func (e *VariableExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitVariable(e)
}

func (e *VariableExpression) String() string {
	return e.name
}

func (e *VariableExpression) tag() string { return tagVariable }

// MemberAccessExpression reads a named member of the target's value.
type MemberAccessExpression struct {
	name     string
	dataType types.TypeIndex
	target   Expression
}

// NewMemberAccess creates a MemberAccessExpression.
func NewMemberAccess(name string, dataType types.TypeIndex,
	target Expression) (*MemberAccessExpression, error) {
	if name == "" {
		return nil, errors.ErrInvalidInput.
			WithMessage("member name cannot be empty")
	}
	if target == nil {
		return nil, errors.ErrInvalidInput.
			WithMessage("member access requires a target")
	}
	return &MemberAccessExpression{
		name: name, dataType: dataType, target: target}, nil
}

// Name returns the accessed member's name.
func (e *MemberAccessExpression) Name() string {
	return e.name
}

// Target returns the expression whose member is accessed.
func (e *MemberAccessExpression) Target() Expression {
	return e.target
}

func (e *MemberAccessExpression) Type() types.TypeIndex {
	return e.dataType
}

func (e *MemberAccessExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitMemberAccess(e)
}

func (e *MemberAccessExpression) String() string {
	return fmt.Sprintf("(member %s %s)", e.target, e.name)
}

func (e *MemberAccessExpression) tag() string { return tagMember }

// FunctionExpression applies one of the recognized functions to its
// arguments.
type FunctionExpression struct {
	name     string
	dataType types.TypeIndex
	args     []Expression
}

// NewFunction creates a FunctionExpression. The name must be one of the
// recognized functions, the arity must match, and the argument types must
// satisfy the function's overloads with int/double promotion.
func NewFunction(name string, dataType types.TypeIndex, args []Expression) (
	*FunctionExpression, error) {
	resultType, err := functionResultType(name, args)
	if err != nil {
		return nil, err
	}
	if resultType != dataType {
		return nil, errors.ErrTypeCompatibility.
			WithDetail("function", name).
			WithDetail("declared", dataType.String()).
			WithDetail("computed", resultType.String()).
			WithMessage("declared function type mismatch")
	}
	owned := make([]Expression, len(args))
	copy(owned, args)
	return &FunctionExpression{
		name: name, dataType: dataType, args: owned}, nil
}

// Name returns the function's name.
func (e *FunctionExpression) Name() string {
	return e.name
}

// Args returns the function's arguments.
func (e *FunctionExpression) Args() []Expression {
	return e.args
}

func (e *FunctionExpression) Type() types.TypeIndex {
	return e.dataType
}

func (e *FunctionExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitFunction(e)
}

func (e *FunctionExpression) String() string {
	parts := make([]string, 0, len(e.args)+1)
	parts = append(parts, e.name)
	for _, arg := range e.args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (e *FunctionExpression) tag() string { return tagFunction }

// NotExpression negates a boolean operand.
type NotExpression struct {
	operand Expression
}

// NewNot creates a NotExpression.
func NewNot(operand Expression) (*NotExpression, error) {
	if operand == nil || operand.Type() != types.TypeBool {
		return nil, errors.ErrTypeCompatibility.
			WithMessage("not requires a boolean operand")
	}
	return &NotExpression{operand: operand}, nil
}

// Operand returns the negated expression.
func (e *NotExpression) Operand() Expression {
	return e.operand
}

func (e *NotExpression) Type() types.TypeIndex {
	return types.TypeBool
}

func (e *NotExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitNot(e)
}

func (e *NotExpression) String() string {
	return fmt.Sprintf("(not %s)", e.operand)
}

func (e *NotExpression) tag() string { return tagNot }

// AndExpression is the short-circuit conjunction of two boolean
// expressions.
type AndExpression struct {
	left  Expression
	right Expression
}

// NewAnd creates an AndExpression.
func NewAnd(left, right Expression) (*AndExpression, error) {
	if err := requireBooleanPair("and", left, right); err != nil {
		return nil, err
	}
	return &AndExpression{left: left, right: right}, nil
}

// Left returns the left operand.
func (e *AndExpression) Left() Expression {
	return e.left
}

// Right returns the right operand.
func (e *AndExpression) Right() Expression {
	return e.right
}

func (e *AndExpression) Type() types.TypeIndex {
	return types.TypeBool
}

func (e *AndExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitAnd(e)
}

func (e *AndExpression) String() string {
	return fmt.Sprintf("(and %s %s)", e.left, e.right)
}

func (e *AndExpression) tag() string { return tagAnd }

// OrExpression is the short-circuit disjunction of two boolean
// expressions.
type OrExpression struct {
	left  Expression
	right Expression
}

// NewOr creates an OrExpression.
func NewOr(left, right Expression) (*OrExpression, error) {
	if err := requireBooleanPair("or", left, right); err != nil {
		return nil, err
	}
	return &OrExpression{left: left, right: right}, nil
}

// Left returns the left operand.
func (e *OrExpression) Left() Expression {
	return e.left
}

// Right returns the right operand.
func (e *OrExpression) Right() Expression {
	return e.right
}

func (e *OrExpression) Type() types.TypeIndex {
	return types.TypeBool
}

func (e *OrExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitOr(e)
}

func (e *OrExpression) String() string {
	return fmt.Sprintf("(or %s %s)", e.left, e.right)
}

func (e *OrExpression) tag() string { return tagOr }

// GlobalVariableDeclarationExpression declares a variable whose storage
// is shared by every read and write within its body. The expression
// evaluates to its body's value.
type GlobalVariableDeclarationExpression struct {
	name    string
	initial Expression
	body    Expression
}

// NewGlobalVariableDeclaration creates a
// GlobalVariableDeclarationExpression.
func NewGlobalVariableDeclaration(name string, initial, body Expression) (
	*GlobalVariableDeclarationExpression, error) {
	if name == "" {
		return nil, errors.ErrInvalidInput.
			WithMessage("variable name cannot be empty")
	}
	if initial == nil || body == nil {
		return nil, errors.ErrInvalidInput.
			WithMessage("global declaration requires an initial value and a body")
	}
	return &GlobalVariableDeclarationExpression{
		name: name, initial: initial, body: body}, nil
}

// Name returns the declared variable's name.
func (e *GlobalVariableDeclarationExpression) Name() string {
	return e.name
}

// Initial returns the expression producing the variable's initial value.
func (e *GlobalVariableDeclarationExpression) Initial() Expression {
	return e.initial
}

// Body returns the expression evaluated with the variable in scope.
func (e *GlobalVariableDeclarationExpression) Body() Expression {
	return e.body
}

func (e *GlobalVariableDeclarationExpression) Type() types.TypeIndex {
	return e.body.Type()
}

func (e *GlobalVariableDeclarationExpression) Apply(
	visitor ExpressionVisitor) {
	visitor.VisitGlobalVariableDeclaration(e)
}

func (e *GlobalVariableDeclarationExpression) String() string {
	return fmt.Sprintf("(global %s %s %s)", e.name, e.initial, e.body)
}

func (e *GlobalVariableDeclarationExpression) tag() string { return tagGlobal }

// SetVariableExpression writes a new value into a variable bound by an
// enclosing global declaration and evaluates to that value.
type SetVariableExpression struct {
	name  string
	value Expression
}

// NewSetVariable creates a SetVariableExpression.
func NewSetVariable(name string, value Expression) (
	*SetVariableExpression, error) {
	if name == "" {
		return nil, errors.ErrInvalidInput.
			WithMessage("variable name cannot be empty")
	}
	if value == nil {
		return nil, errors.ErrInvalidInput.
			WithMessage("set requires a value")
	}
	return &SetVariableExpression{name: name, value: value}, nil
}

// Name returns the written variable's name.
func (e *SetVariableExpression) Name() string {
	return e.name
}

// Value returns the expression producing the written value.
func (e *SetVariableExpression) Value() Expression {
	return e.value
}

func (e *SetVariableExpression) Type() types.TypeIndex {
	return e.value.Type()
}

func (e *SetVariableExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitSetVariable(e)
}

func (e *SetVariableExpression) String() string {
	return fmt.Sprintf("(set %s %s)", e.name, e.value)
}

func (e *SetVariableExpression) tag() string { return tagSet }

// ReduceExpression folds successive values of a series through a reducer,
// carrying the accumulated state across evaluations.
type ReduceExpression struct {
	reducer Expression
	series  Expression
	initial types.Value
}

// NewReduce creates a ReduceExpression. The reducer, series and initial
// value must share one type.
func NewReduce(reducer, series Expression, initial types.Value) (
	*ReduceExpression, error) {
	if reducer == nil || series == nil {
		return nil, errors.ErrInvalidInput.
			WithMessage("reduce requires a reducer and a series")
	}
	if reducer.Type() != series.Type() ||
		reducer.Type() != initial.Type() {
		return nil, errors.ErrTypeCompatibility.
			WithDetail("reducer", reducer.Type().String()).
			WithDetail("series", series.Type().String()).
			WithDetail("initial", initial.Type().String()).
			WithMessage("reduce operands must share one type")
	}
	return &ReduceExpression{
		reducer: reducer, series: series, initial: initial}, nil
}

// Reducer returns the reducing expression. It takes two parameters, the
// accumulator and the newest series value.
func (e *ReduceExpression) Reducer() Expression {
	return e.reducer
}

// Series returns the reduced series.
func (e *ReduceExpression) Series() Expression {
	return e.series
}

// Initial returns the initial accumulator value.
func (e *ReduceExpression) Initial() types.Value {
	return e.initial
}

func (e *ReduceExpression) Type() types.TypeIndex {
	return e.reducer.Type()
}

func (e *ReduceExpression) Apply(visitor ExpressionVisitor) {
	visitor.VisitReduce(e)
}

func (e *ReduceExpression) String() string {
	return fmt.Sprintf("(reduce %s %s %s)", e.reducer, e.series, e.initial)
}

func (e *ReduceExpression) tag() string { return tagReduce }

// requireBooleanPair validates the operands of a binary boolean variant.
func requireBooleanPair(op string, left, right Expression) error {
	if left == nil || right == nil {
		return errors.ErrInvalidInput.
			WithDetail("operator", op).
			WithMessage("missing operand")
	}
	if left.Type() != types.TypeBool || right.Type() != types.TypeBool {
		return errors.ErrTypeCompatibility.
			WithDetail("operator", op).
			WithDetail("left", left.Type().String()).
			WithDetail("right", right.Type().String()).
			WithMessage("operands must be boolean")
	}
	return nil
}
