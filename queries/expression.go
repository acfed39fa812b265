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
	"github.com/beam-project/beamq/pkg/types"
)

// MaxParameters is the maximum number of parameter slots an expression
// may reference.
const MaxParameters = 2

// Expression is an immutable, freely shared node in a typed query
// expression tree. Every node reports a single result type and dispatches
// to the visitor method dedicated to its variant.
type Expression interface {
	// Type returns the declared result type of the node.
	Type() types.TypeIndex

	// Apply double-dispatches to the visitor method for the variant.
	Apply(visitor ExpressionVisitor)

	// String renders the node as an s-expression.
	String() string

	// tag returns the stable serialization tag for the variant.
	tag() string
}

// ExpressionVisitor dispatches on expression variants. Embed VisitorBase
// to implement only the variants of interest.
type ExpressionVisitor interface {
	VisitConstant(expression *ConstantExpression)
	VisitParameter(expression *ParameterExpression)
	VisitVariable(expression *VariableExpression)
	VisitMemberAccess(expression *MemberAccessExpression)
	VisitFunction(expression *FunctionExpression)
	VisitNot(expression *NotExpression)
	VisitAnd(expression *AndExpression)
	VisitOr(expression *OrExpression)
	VisitGlobalVariableDeclaration(
		expression *GlobalVariableDeclarationExpression)
	VisitSetVariable(expression *SetVariableExpression)
	VisitReduce(expression *ReduceExpression)

	// VisitExpression is the safe default invoked for variants without a
	// dedicated override.
	VisitExpression(expression Expression)
}

// VisitorBase forwards every variant to its own VisitExpression, a no-op.
// Embed it and override the variants of interest. The forwards call
// VisitorBase.VisitExpression, so a VisitExpression defined on the
// embedding type does not receive the variants left to VisitorBase.
type VisitorBase struct{}

func (VisitorBase) VisitExpression(Expression) {}

func (b VisitorBase) VisitConstant(e *ConstantExpression)  { b.VisitExpression(e) }
func (b VisitorBase) VisitParameter(e *ParameterExpression) { b.VisitExpression(e) }
func (b VisitorBase) VisitVariable(e *VariableExpression)  { b.VisitExpression(e) }
func (b VisitorBase) VisitMemberAccess(e *MemberAccessExpression) {
	b.VisitExpression(e)
}
func (b VisitorBase) VisitFunction(e *FunctionExpression) { b.VisitExpression(e) }
func (b VisitorBase) VisitNot(e *NotExpression)           { b.VisitExpression(e) }
func (b VisitorBase) VisitAnd(e *AndExpression)           { b.VisitExpression(e) }
func (b VisitorBase) VisitOr(e *OrExpression)             { b.VisitExpression(e) }
func (b VisitorBase) VisitGlobalVariableDeclaration(
	e *GlobalVariableDeclarationExpression) {
	b.VisitExpression(e)
}
func (b VisitorBase) VisitSetVariable(e *SetVariableExpression) {
	b.VisitExpression(e)
}
func (b VisitorBase) VisitReduce(e *ReduceExpression) { b.VisitExpression(e) }

// TraversalVisitor recurses into every child of the visited node.
// Implementers embed it, set Self to the outer visitor, and override only
// the variants they care about; un-overridden variants keep recursing.
type TraversalVisitor struct {
	// Self is the visitor children are dispatched to. When nil, children
	// are dispatched to the TraversalVisitor itself.
	Self ExpressionVisitor
}

func (t *TraversalVisitor) dispatch() ExpressionVisitor {
	if t.Self != nil {
		return t.Self
	}
	return t
}

func (t *TraversalVisitor) VisitExpression(Expression) {}

func (t *TraversalVisitor) VisitConstant(e *ConstantExpression)   {}
func (t *TraversalVisitor) VisitParameter(e *ParameterExpression) {}
func (t *TraversalVisitor) VisitVariable(e *VariableExpression)   {}

func (t *TraversalVisitor) VisitMemberAccess(e *MemberAccessExpression) {
	e.Target().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitFunction(e *FunctionExpression) {
	for _, arg := range e.Args() {
		arg.Apply(t.dispatch())
	}
}

func (t *TraversalVisitor) VisitNot(e *NotExpression) {
	e.Operand().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitAnd(e *AndExpression) {
	e.Left().Apply(t.dispatch())
	e.Right().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitOr(e *OrExpression) {
	e.Left().Apply(t.dispatch())
	e.Right().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitGlobalVariableDeclaration(
	e *GlobalVariableDeclarationExpression) {
	e.Initial().Apply(t.dispatch())
	e.Body().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitSetVariable(e *SetVariableExpression) {
	e.Value().Apply(t.dispatch())
}

func (t *TraversalVisitor) VisitReduce(e *ReduceExpression) {
	e.Reducer().Apply(t.dispatch())
	e.Series().Apply(t.dispatch())
}
