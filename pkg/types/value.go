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
	"fmt"
	"strconv"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
)

// Value is a tagged union over the eight native types.
//
// A Value is immutable once constructed. The zero Value is the boolean
// false.
type Value struct {
	kind TypeIndex
	v    interface{}
}

// Bool creates a boolean Value.
func Bool(v bool) Value { return Value{TypeBool, v} }

// Char creates a character Value.
func Char(v byte) Value { return Value{TypeChar, v} }

// Int creates a 32-bit integer Value.
func Int(v int32) Value { return Value{TypeInt, v} }

// Double creates a floating point Value.
func Double(v float64) Value { return Value{TypeDouble, v} }

// ID creates a 64-bit unsigned identifier Value.
func ID(v uint64) Value { return Value{TypeID, v} }

// String creates a string Value.
func String(v string) Value { return Value{TypeString, v} }

// Timestamp creates a point-in-time Value.
func Timestamp(v time.Time) Value { return Value{TypeTimestamp, v} }

// Duration creates a time span Value.
func Duration(v time.Duration) Value { return Value{TypeDuration, v} }

// Zero returns the zero Value of the given type.
func Zero(t TypeIndex) Value {
	switch t {
	case TypeBool:
		return Bool(false)
	case TypeChar:
		return Char(0)
	case TypeInt:
		return Int(0)
	case TypeDouble:
		return Double(0)
	case TypeID:
		return ID(0)
	case TypeString:
		return String("")
	case TypeTimestamp:
		return Timestamp(time.Time{})
	case TypeDuration:
		return Duration(0)
	}
	return Value{}
}

// Type returns the type of the value.
func (v Value) Type() TypeIndex {
	if v.v == nil {
		return TypeBool
	}
	return v.kind
}

// Interface returns the underlying value.
func (v Value) Interface() interface{} {
	if v.v == nil {
		return false
	}
	return v.v
}

// AsBool returns the boolean payload; it is false for any other type.
func (v Value) AsBool() bool {
	b, _ := v.Interface().(bool)
	return b
}

// AsChar returns the character payload.
func (v Value) AsChar() byte {
	c, _ := v.Interface().(byte)
	return c
}

// AsInt returns the integer payload.
func (v Value) AsInt() int32 {
	i, _ := v.Interface().(int32)
	return i
}

// AsDouble returns the floating point payload.
func (v Value) AsDouble() float64 {
	d, _ := v.Interface().(float64)
	return d
}

// AsID returns the identifier payload.
func (v Value) AsID() uint64 {
	i, _ := v.Interface().(uint64)
	return i
}

// AsString returns the string payload.
func (v Value) AsString() string {
	s, _ := v.Interface().(string)
	return s
}

// AsTimestamp returns the point-in-time payload.
func (v Value) AsTimestamp() time.Time {
	t, _ := v.Interface().(time.Time)
	return t
}

// AsDuration returns the time span payload.
func (v Value) AsDuration() time.Duration {
	d, _ := v.Interface().(time.Duration)
	return d
}

// Equal reports whether two values have the same type and payload.
func (v Value) Equal(other Value) bool {
	if v.Type() != other.Type() {
		return false
	}
	if v.Type() == TypeTimestamp {
		return v.AsTimestamp().Equal(other.AsTimestamp())
	}
	return v.Interface() == other.Interface()
}

// String renders the value as an expression literal.
func (v Value) String() string {
	switch v.Type() {
	case TypeBool:
		return strconv.FormatBool(v.AsBool())
	case TypeChar:
		return fmt.Sprintf("'%c'", v.AsChar())
	case TypeInt:
		return strconv.FormatInt(int64(v.AsInt()), 10)
	case TypeDouble:
		return strconv.FormatFloat(v.AsDouble(), 'g', -1, 64)
	case TypeID:
		return strconv.FormatUint(v.AsID(), 10)
	case TypeString:
		return strconv.Quote(v.AsString())
	case TypeTimestamp:
		return FormatTimestamp(v.AsTimestamp())
	case TypeDuration:
		return FormatDuration(v.AsDuration())
	}
	return "unknown"
}

// valueJSON is the wire representation of a Value.
type valueJSON struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON serializes the value as a tagged union.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch v.Type() {
	case TypeBool:
		payload = v.AsBool()
	case TypeChar:
		payload = string(rune(v.AsChar()))
	case TypeInt:
		payload = v.AsInt()
	case TypeDouble:
		payload = v.AsDouble()
	case TypeID:
		payload = v.AsID()
	case TypeString:
		payload = v.AsString()
	case TypeTimestamp:
		payload = FormatTimestamp(v.AsTimestamp())
	case TypeDuration:
		payload = FormatDuration(v.AsDuration())
	default:
		return nil, errors.ErrSerialization.WithDetail("type", v.kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	return json.Marshal(valueJSON{Type: v.Type().String(), Value: raw})
}

// UnmarshalJSON deserializes a tagged union into the value.
func (v *Value) UnmarshalJSON(data []byte) error {
	var wire valueJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	kind, err := ParseTypeIndex(wire.Type)
	if err != nil {
		return err
	}
	switch kind {
	case TypeBool:
		var b bool
		if err := json.Unmarshal(wire.Value, &b); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		*v = Bool(b)
	case TypeChar:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		if len(s) != 1 {
			return errors.ErrSerialization.WithMessage("char must be one byte")
		}
		*v = Char(s[0])
	case TypeInt:
		var i int32
		if err := json.Unmarshal(wire.Value, &i); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		*v = Int(i)
	case TypeDouble:
		var d float64
		if err := json.Unmarshal(wire.Value, &d); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		*v = Double(d)
	case TypeID:
		var i uint64
		if err := json.Unmarshal(wire.Value, &i); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		*v = ID(i)
	case TypeString:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		*v = String(s)
	case TypeTimestamp:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		t, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		*v = Timestamp(t)
	case TypeDuration:
		var s string
		if err := json.Unmarshal(wire.Value, &s); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		d, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*v = Duration(d)
	}
	return nil
}
