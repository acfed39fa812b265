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

package eval

import (
	"time"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

// number constrains the native types supporting arithmetic.
type number interface {
	~int32 | ~uint64 | ~float64
}

// orderedScalar constrains the native types ordered by <. It is a
// superset of number.
type orderedScalar interface {
	~uint8 | ~int32 | ~int64 | ~uint64 | ~float64 | ~string
}

// buildFunction emits the node for a recognized function whose operands
// were already promoted to a single kind.
func buildFunction(name string, kind types.TypeIndex, left, right node) (
	node, error) {
	switch kind {
	case types.TypeInt:
		return buildNumber[int32](name, kind, left, right)
	case types.TypeDouble:
		return buildNumber[float64](name, kind, left, right)
	case types.TypeID:
		return buildNumber[uint64](name, kind, left, right)
	case types.TypeChar:
		return buildOrdered[byte](name, kind, left, right)
	case types.TypeString:
		return buildOrdered[string](name, kind, left, right)
	case types.TypeDuration:
		return buildOrdered[time.Duration](name, kind, left, right)
	case types.TypeBool:
		return buildBool(name, left, right)
	case types.TypeTimestamp:
		return buildTimestamp(name, left, right)
	}
	return nil, translationOverload(name, kind)
}

func translationOverload(name string, kind types.TypeIndex) error {
	return errors.ErrTranslation.
		WithDetail("function", name).
		WithDetail("operands", kind.String()).
		WithMessage("no overload for operand type")
}

func operandMismatch(name string) error {
	return errors.ErrTranslation.
		WithDetail("function", name).
		WithMessage("operand node type mismatch")
}

// buildNumber handles arithmetic, comparison and min/max over a numeric
// operand type.
func buildNumber[T number](name string, kind types.TypeIndex,
	left, right node) (node, error) {
	l, lok := asTyped[T](left)
	r, rok := asTyped[T](right)
	if !lok || !rok {
		return nil, operandMismatch(name)
	}
	switch name {
	case queries.FunctionAdd:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T { return a + b }, l, r}, nil
	case queries.FunctionSubtract:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T { return a - b }, l, r}, nil
	case queries.FunctionMultiply:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T { return a * b }, l, r}, nil
	case queries.FunctionDivide:
		if kind == types.TypeDouble {
			return &function2Node[T, T, T]{typed{kind},
				func(a, b T) T { return a / b }, l, r}, nil
		}
		// Integer division by zero evaluates to zero.
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T {
				if b == 0 {
					var zero T
					return zero
				}
				return a / b
			}, l, r}, nil
	case queries.FunctionMax:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T {
				if a > b {
					return a
				}
				return b
			}, l, r}, nil
	case queries.FunctionMin:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T {
				if a < b {
					return a
				}
				return b
			}, l, r}, nil
	}
	return buildComparison[T](name, l, r)
}

// buildOrdered handles comparison and min/max over a non-numeric ordered
// operand type.
func buildOrdered[T orderedScalar](name string, kind types.TypeIndex,
	left, right node) (node, error) {
	l, lok := asTyped[T](left)
	r, rok := asTyped[T](right)
	if !lok || !rok {
		return nil, operandMismatch(name)
	}
	switch name {
	case queries.FunctionMax:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T {
				if a > b {
					return a
				}
				return b
			}, l, r}, nil
	case queries.FunctionMin:
		return &function2Node[T, T, T]{typed{kind},
			func(a, b T) T {
				if a < b {
					return a
				}
				return b
			}, l, r}, nil
	}
	return buildComparison[T](name, l, r)
}

// buildComparison handles the six comparison functions over an ordered
// operand type.
func buildComparison[T orderedScalar](name string,
	l, r evaluable[T]) (node, error) {
	boolKind := typed{types.TypeBool}
	switch name {
	case queries.FunctionLess:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a < b }, l, r}, nil
	case queries.FunctionLessEqual:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a <= b }, l, r}, nil
	case queries.FunctionEqual:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a == b }, l, r}, nil
	case queries.FunctionNotEqual:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a != b }, l, r}, nil
	case queries.FunctionGreaterEqual:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a >= b }, l, r}, nil
	case queries.FunctionGreater:
		return &function2Node[bool, T, T]{boolKind,
			func(a, b T) bool { return a > b }, l, r}, nil
	}
	return nil, errors.ErrTranslation.
		WithDetail("function", name).
		WithMessage("function not supported")
}

// buildBool handles comparisons and min/max over booleans, ordered as
// false < true.
func buildBool(name string, left, right node) (node, error) {
	l, lok := asTyped[bool](left)
	r, rok := asTyped[bool](right)
	if !lok || !rok {
		return nil, operandMismatch(name)
	}
	boolKind := typed{types.TypeBool}
	switch name {
	case queries.FunctionLess:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return !a && b }, l, r}, nil
	case queries.FunctionLessEqual:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return !a || b }, l, r}, nil
	case queries.FunctionEqual:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a == b }, l, r}, nil
	case queries.FunctionNotEqual:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a != b }, l, r}, nil
	case queries.FunctionGreaterEqual:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a || !b }, l, r}, nil
	case queries.FunctionGreater:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a && !b }, l, r}, nil
	case queries.FunctionMax:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a || b }, l, r}, nil
	case queries.FunctionMin:
		return &function2Node[bool, bool, bool]{boolKind,
			func(a, b bool) bool { return a && b }, l, r}, nil
	}
	return nil, translationOverload(name, types.TypeBool)
}

// buildTimestamp handles comparisons and min/max over timestamps.
func buildTimestamp(name string, left, right node) (node, error) {
	l, lok := asTyped[time.Time](left)
	r, rok := asTyped[time.Time](right)
	if !lok || !rok {
		return nil, operandMismatch(name)
	}
	boolKind := typed{types.TypeBool}
	timeKind := typed{types.TypeTimestamp}
	switch name {
	case queries.FunctionLess:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return a.Before(b) }, l, r}, nil
	case queries.FunctionLessEqual:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return !a.After(b) }, l, r}, nil
	case queries.FunctionEqual:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return a.Equal(b) }, l, r}, nil
	case queries.FunctionNotEqual:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return !a.Equal(b) }, l, r}, nil
	case queries.FunctionGreaterEqual:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return !a.Before(b) }, l, r}, nil
	case queries.FunctionGreater:
		return &function2Node[bool, time.Time, time.Time]{boolKind,
			func(a, b time.Time) bool { return a.After(b) }, l, r}, nil
	case queries.FunctionMax:
		return &function2Node[time.Time, time.Time, time.Time]{timeKind,
			func(a, b time.Time) time.Time {
				if a.After(b) {
					return a
				}
				return b
			}, l, r}, nil
	case queries.FunctionMin:
		return &function2Node[time.Time, time.Time, time.Time]{timeKind,
			func(a, b time.Time) time.Time {
				if a.Before(b) {
					return a
				}
				return b
			}, l, r}, nil
	}
	return nil, translationOverload(name, types.TypeTimestamp)
}
