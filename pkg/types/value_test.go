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

package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValue_Type(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  TypeIndex
	}{
		{"bool", Bool(true), TypeBool},
		{"char", Char('a'), TypeChar},
		{"int", Int(123), TypeInt},
		{"double", Double(3.14), TypeDouble},
		{"id", ID(42), TypeID},
		{"string", String("hello"), TypeString},
		{"timestamp", Timestamp(time.Unix(0, 0)), TypeTimestamp},
		{"duration", Duration(time.Second), TypeDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_ZeroValue(t *testing.T) {
	var v Value

	if v.Type() != TypeBool {
		t.Errorf("zero Value type = %v, want bool", v.Type())
	}
	if v.AsBool() != false {
		t.Error("zero Value should be false")
	}
}

func TestValue_Equal(t *testing.T) {
	if !Int(5).Equal(Int(5)) {
		t.Error("equal ints should compare equal")
	}
	if Int(5).Equal(Int(6)) {
		t.Error("different ints should not compare equal")
	}
	if Int(5).Equal(Double(5)) {
		t.Error("values of different types should not compare equal")
	}

	ts := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	if !Timestamp(ts).Equal(Timestamp(ts.In(time.FixedZone("x", 3600)))) {
		t.Error("timestamps should compare by instant")
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Bool(true), "true"},
		{Int(-7), "-7"},
		{Double(2.5), "2.5"},
		{ID(9), "9"},
		{String("hi"), `"hi"`},
		{Duration(90 * time.Second), "00:01:30.000000"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestValue_JSONRoundTrip(t *testing.T) {
	values := []Value{
		Bool(true),
		Char('x'),
		Int(-12),
		Double(0.5),
		ID(77),
		String("payload"),
		Timestamp(time.Date(2024, time.May, 4, 10, 30, 0, 0, time.UTC)),
		Duration(3*time.Hour + 15*time.Minute),
	}

	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%v) error = %v", v, err)
		}

		var got Value
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", data, err)
		}
		if !got.Equal(v) {
			t.Errorf("round trip = %v, want %v", got, v)
		}
	}
}

func TestValue_UnmarshalJSON_UnknownType(t *testing.T) {
	var v Value

	err := json.Unmarshal([]byte(`{"type":"matrix","value":1}`), &v)
	if err == nil {
		t.Fatal("Unmarshal() with unknown type should fail")
	}
}

func TestPromote(t *testing.T) {
	tests := []struct {
		left, right TypeIndex
		want        TypeIndex
		ok          bool
	}{
		{TypeInt, TypeInt, TypeInt, true},
		{TypeInt, TypeDouble, TypeDouble, true},
		{TypeDouble, TypeInt, TypeDouble, true},
		{TypeInt, TypeString, 0, false},
		{TypeBool, TypeBool, TypeBool, true},
	}

	for _, tt := range tests {
		got, ok := Promote(tt.left, tt.right)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("Promote(%v, %v) = %v, %v, want %v, %v",
				tt.left, tt.right, got, ok, tt.want, tt.ok)
		}
	}
}
