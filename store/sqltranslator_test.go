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
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

func TestTranslateSQL_Equality(t *testing.T) {
	parameter, err := queries.NewParameter(0, types.TypeInt)
	if err != nil {
		t.Fatalf("NewParameter() error = %v", err)
	}
	expression, err := queries.Equal(parameter, queries.ConstantInt(42))
	if err != nil {
		t.Fatalf("Equal() error = %v", err)
	}

	condition, args, err := TranslateSQL("price", 1, expression)
	if err != nil {
		t.Fatalf("TranslateSQL() error = %v", err)
	}
	if condition != "(price = $1)" {
		t.Errorf("condition = %q, want (price = $1)", condition)
	}
	if len(args) != 1 || args[0] != int32(42) {
		t.Errorf("args = %v, want [42]", args)
	}
}

func TestTranslateSQL_AdditionInsideOr(t *testing.T) {
	parameter, err := queries.NewParameter(0, types.TypeInt)
	if err != nil {
		t.Fatalf("NewParameter() error = %v", err)
	}
	sum, err := queries.Add(parameter, queries.ConstantInt(1))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	left, err := queries.Equal(sum, queries.ConstantInt(10))
	if err != nil {
		t.Fatalf("Equal() error = %v", err)
	}
	right, err := queries.Equal(parameter, queries.ConstantInt(3))
	if err != nil {
		t.Fatalf("Equal() error = %v", err)
	}
	expression, err := queries.Or(left, right)
	if err != nil {
		t.Fatalf("Or() error = %v", err)
	}

	condition, args, err := TranslateSQL("v", 1, expression)
	if err != nil {
		t.Fatalf("TranslateSQL() error = %v", err)
	}
	want := "(((v + $1) = $2) OR (v = $3))"
	if condition != want {
		t.Errorf("condition = %q, want %q", condition, want)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want three bound constants", args)
	}
}

func TestTranslateSQL_PlaceholderOffset(t *testing.T) {
	expression := queries.ConstantInt(7)

	condition, _, err := TranslateSQL("v", 4, expression)
	if err != nil {
		t.Fatalf("TranslateSQL() error = %v", err)
	}
	if condition != "$4" {
		t.Errorf("condition = %q, want $4", condition)
	}
}

func TestTranslateSQL_UnsupportedVariant(t *testing.T) {
	expression, err := queries.And(
		queries.ConstantBool(true), queries.ConstantBool(true))
	if err != nil {
		t.Fatalf("And() error = %v", err)
	}

	_, _, err = TranslateSQL("v", 1, expression)
	if !errors.IsTranslation(err) {
		t.Errorf("TranslateSQL() error = %v, want translation", err)
	}
}

func TestTranslateSQL_NilExpression(t *testing.T) {
	condition, args, err := TranslateSQL("v", 1, nil)
	if err != nil || condition != "" || args != nil {
		t.Errorf("TranslateSQL(nil) = %q, %v, %v, want empty", condition,
			args, err)
	}
}
