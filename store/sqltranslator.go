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

package store

import (
	"fmt"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

// SQLTranslator translates a query expression into a SQL condition with
// positional placeholders. The supported subset is constants, the
// functions "+" and "==", disjunctions and parameter references, which
// resolve to a fixed column identifier. Anything else fails with a
// translation error.
type SQLTranslator struct {
	column    string
	first     int
	condition string
	args      []interface{}
	err       error
}

// TranslateSQL translates an expression into a SQL condition over the
// given column. Placeholders are numbered $1..$n starting at
// firstPlaceholder; the returned arguments bind to them in order.
func TranslateSQL(column string, firstPlaceholder int,
	expression queries.Expression) (string, []interface{}, error) {
	if expression == nil {
		return "", nil, nil
	}
	translator := &SQLTranslator{column: column, first: firstPlaceholder}
	expression.Apply(translator)
	if translator.err != nil {
		return "", nil, translator.err
	}
	return translator.condition, translator.args, nil
}

func (t *SQLTranslator) unsupported(expression queries.Expression) {
	if t.err == nil {
		t.err = errors.ErrTranslation.
			WithDetail("expression", expression.String()).
			WithMessage("expression not supported in SQL")
	}
}

// VisitConstant renders the constant as a bound placeholder.
func (t *SQLTranslator) VisitConstant(e *queries.ConstantExpression) {
	var arg interface{}
	switch e.Value().Type() {
	case types.TypeBool:
		arg = e.Value().AsBool()
	case types.TypeChar:
		arg = string(rune(e.Value().AsChar()))
	case types.TypeInt:
		arg = e.Value().AsInt()
	case types.TypeDouble:
		arg = e.Value().AsDouble()
	case types.TypeID:
		arg = int64(e.Value().AsID())
	case types.TypeString:
		arg = e.Value().AsString()
	case types.TypeTimestamp:
		arg = e.Value().AsTimestamp()
	default:
		t.unsupported(e)
		return
	}
	t.args = append(t.args, arg)
	t.condition = fmt.Sprintf("$%d", t.first+len(t.args)-1)
}

// VisitFunction renders the supported functions "+" and "==".
func (t *SQLTranslator) VisitFunction(e *queries.FunctionExpression) {
	var operator string
	switch e.Name() {
	case queries.FunctionAdd:
		operator = "+"
	case queries.FunctionEqual:
		operator = "="
	default:
		t.unsupported(e)
		return
	}
	if len(e.Args()) != 2 {
		t.err = errors.ErrTranslation.
			WithDetail("function", e.Name()).
			WithMessage("invalid parameter count")
		return
	}
	e.Args()[0].Apply(t)
	left := t.condition
	e.Args()[1].Apply(t)
	right := t.condition
	if t.err != nil {
		return
	}
	t.condition = fmt.Sprintf("(%s %s %s)", left, operator, right)
}

// VisitOr renders a disjunction.
func (t *SQLTranslator) VisitOr(e *queries.OrExpression) {
	e.Left().Apply(t)
	left := t.condition
	e.Right().Apply(t)
	right := t.condition
	if t.err != nil {
		return
	}
	t.condition = fmt.Sprintf("(%s OR %s)", left, right)
}

// VisitParameter renders the fixed column identifier.
func (t *SQLTranslator) VisitParameter(e *queries.ParameterExpression) {
	t.condition = t.column
}

func (t *SQLTranslator) VisitVariable(e *queries.VariableExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitMemberAccess(e *queries.MemberAccessExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitNot(e *queries.NotExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitAnd(e *queries.AndExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitGlobalVariableDeclaration(
	e *queries.GlobalVariableDeclarationExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitSetVariable(e *queries.SetVariableExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitReduce(e *queries.ReduceExpression) {
	t.unsupported(e)
}

func (t *SQLTranslator) VisitExpression(expression queries.Expression) {
	t.unsupported(expression)
}
