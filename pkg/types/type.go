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
	"github.com/beam-project/beamq/pkg/errors"
)

// TypeIndex identifies one of the native types an expression can produce.
type TypeIndex uint8

const (
	// TypeBool is the boolean type.
	TypeBool TypeIndex = iota
	// TypeChar is the single byte character type.
	TypeChar
	// TypeInt is the 32-bit signed integer type.
	TypeInt
	// TypeDouble is the 64-bit floating point type.
	TypeDouble
	// TypeID is the 64-bit unsigned identifier type.
	TypeID
	// TypeString is the string type.
	TypeString
	// TypeTimestamp is the point-in-time type.
	TypeTimestamp
	// TypeDuration is the time span type.
	TypeDuration
)

// typeNames maps each TypeIndex to its stable wire tag.
var typeNames = [...]string{
	TypeBool:      "bool",
	TypeChar:      "char",
	TypeInt:       "int",
	TypeDouble:    "double",
	TypeID:        "id",
	TypeString:    "string",
	TypeTimestamp: "timestamp",
	TypeDuration:  "duration",
}

// String returns the stable wire tag for the type.
func (t TypeIndex) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsValid reports whether the index names one of the native types.
func (t TypeIndex) IsValid() bool {
	return int(t) < len(typeNames)
}

// IsNumeric reports whether the type supports arithmetic.
func (t TypeIndex) IsNumeric() bool {
	return t == TypeInt || t == TypeDouble || t == TypeID
}

// ParseTypeIndex resolves a stable wire tag back to its TypeIndex.
func ParseTypeIndex(name string) (TypeIndex, error) {
	for i, n := range typeNames {
		if n == name {
			return TypeIndex(i), nil
		}
	}
	return 0, errors.ErrSerialization.WithDetail("type", name).
		WithMessage("unknown type tag")
}

// Promote returns the type both operands promote to for arithmetic and
// comparison. Int and double promote to double; any other mismatch is
// rejected.
func Promote(left, right TypeIndex) (TypeIndex, bool) {
	if left == right {
		return left, true
	}
	if left == TypeInt && right == TypeDouble ||
		left == TypeDouble && right == TypeInt {
		return TypeDouble, true
	}
	return 0, false
}
