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
	"strings"
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

func TestExpression_SerializationRoundTrip(t *testing.T) {
	parameter := mustParameter(t, 0, types.TypeInt)
	accumulator := mustParameter(t, 1, types.TypeInt)
	reducer := mustAdd(t, parameter, accumulator)
	variable := mustVariable(t, "total", types.TypeInt)
	member, err := NewMemberAccess("price", types.TypeDouble,
		mustParameter(t, 0, types.TypeDouble))
	if err != nil {
		t.Fatalf("NewMemberAccess() error = %v", err)
	}
	setExpr, err := NewSetVariable("total", ConstantInt(9))
	if err != nil {
		t.Fatalf("NewSetVariable() error = %v", err)
	}
	global, err := NewGlobalVariableDeclaration("total", ConstantInt(0), variable)
	if err != nil {
		t.Fatalf("NewGlobalVariableDeclaration() error = %v", err)
	}
	reduce, err := NewReduce(reducer, ConstantInt(1), types.Int(0))
	if err != nil {
		t.Fatalf("NewReduce() error = %v", err)
	}
	notExpr, err := Not(ConstantBool(false))
	if err != nil {
		t.Fatalf("Not() error = %v", err)
	}
	orExpr, err := Or(ConstantBool(false), ConstantBool(true))
	if err != nil {
		t.Fatalf("Or() error = %v", err)
	}

	expressions := []Expression{
		ConstantBool(true),
		Constant(types.String("tick")),
		parameter,
		variable,
		member,
		mustAdd(t, ConstantInt(1), ConstantInt(2)),
		mustLess(t, ConstantInt(1), ConstantInt(2)),
		notExpr,
		mustAnd(t, ConstantBool(true), ConstantBool(false)),
		orExpr,
		global,
		setExpr,
		reduce,
	}

	for _, expression := range expressions {
		data, err := MarshalExpression(expression)
		if err != nil {
			t.Fatalf("MarshalExpression(%s) error = %v", expression, err)
		}
		got, err := UnmarshalExpression(data)
		if err != nil {
			t.Fatalf("UnmarshalExpression(%s) error = %v", data, err)
		}
		if !EqualExpressions(got, expression) {
			t.Errorf("round trip = %s, want %s", got, expression)
		}
		if got.Type() != expression.Type() {
			t.Errorf("round trip type = %v, want %v",
				got.Type(), expression.Type())
		}
	}
}

func TestUnmarshalExpression_UnknownTag(t *testing.T) {
	_, err := UnmarshalExpression([]byte(`{"type":"matrix"}`))

	if !errors.IsSerialization(err) {
		t.Errorf("UnmarshalExpression() error = %v, want serialization", err)
	}
}

func TestUnmarshalExpression_RevalidatesTyping(t *testing.T) {
	// A conjunction whose left child is an int must be rejected on
	// receive even though the document is well formed.
	payload := `{
		"type": "and",
		"left": {"type": "constant", "value": {"type": "int", "value": 0}},
		"right": {"type": "constant", "value": {"type": "bool", "value": true}}
	}`

	_, err := UnmarshalExpression([]byte(payload))
	if !errors.IsSerialization(err) {
		t.Errorf("UnmarshalExpression() error = %v, want serialization", err)
	}
}

func TestUnmarshalExpression_RevalidatesParameterIndex(t *testing.T) {
	payload := `{"type": "parameter", "index": 9, "data_type": "int"}`

	_, err := UnmarshalExpression([]byte(payload))
	if !errors.IsSerialization(err) {
		t.Errorf("UnmarshalExpression() error = %v, want serialization", err)
	}
}

func TestMarshalExpression_StableTags(t *testing.T) {
	data, err := MarshalExpression(
		mustAnd(t, ConstantBool(true), ConstantBool(true)))
	if err != nil {
		t.Fatalf("MarshalExpression() error = %v", err)
	}
	if !strings.Contains(string(data), `"type":"and"`) {
		t.Errorf("serialized form = %s, want the stable tag \"and\"", data)
	}
}

func TestRegisterExpression_RejectsDuplicates(t *testing.T) {
	err := RegisterExpression(tagAnd, decodeAnd)

	if err == nil {
		t.Error("RegisterExpression() should reject a duplicate tag")
	}
}
