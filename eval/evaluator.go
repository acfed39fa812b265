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
	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/queries"
)

// parameterSlot binds one parameter index to its typed storage.
type parameterSlot interface {
	index() int
	kind() types.TypeIndex
	set(value types.Value) error
}

// slot is a parameter slot specialized to its native type.
type slot[T any] struct {
	i   int
	t   types.TypeIndex
	ptr *T
}

func (s *slot[T]) index() int {
	return s.i
}

func (s *slot[T]) kind() types.TypeIndex {
	return s.t
}

func (s *slot[T]) set(value types.Value) error {
	v, ok := value.Interface().(T)
	if !ok {
		return errors.ErrInvalidValue.
			WithDetail("parameter", s.i).
			WithDetail("want", s.t.String()).
			WithDetail("got", value.Type().String()).
			WithMessage("parameter type mismatch")
	}
	*s.ptr = v
	return nil
}

// Evaluator is a compiled expression bound to a dense list of parameter
// slots. It is not safe for concurrent use; compile one evaluator per
// goroutine.
type Evaluator struct {
	root  node
	slots []parameterSlot
}

// ResultType returns the type the evaluator produces.
func (e *Evaluator) ResultType() types.TypeIndex {
	return e.root.resultType()
}

// ParameterCount returns the number of parameter slots.
func (e *Evaluator) ParameterCount() int {
	return len(e.slots)
}

// Parameters returns the slot types in index order; bind arguments in
// this order at evaluation time.
func (e *Evaluator) Parameters() []types.TypeIndex {
	kinds := make([]types.TypeIndex, len(e.slots))
	for i, s := range e.slots {
		kinds[i] = s.kind()
	}
	return kinds
}

// bind writes the arguments through the parameter slots.
func (e *Evaluator) bind(args []types.Value) error {
	if len(args) != len(e.slots) {
		return errors.ErrInvalidInput.
			WithDetail("want", len(e.slots)).
			WithDetail("got", len(args)).
			WithMessage("argument count mismatch")
	}
	for i, arg := range args {
		if err := e.slots[i].set(arg); err != nil {
			return err
		}
	}
	return nil
}

// Eval binds the arguments and evaluates the expression.
func (e *Evaluator) Eval(args ...types.Value) (types.Value, error) {
	if err := e.bind(args); err != nil {
		return types.Value{}, err
	}
	return valueOf(e.root.resultType(), e.root.evalAny()), nil
}

// EvalAs binds the arguments and evaluates the expression as a native
// type. The type must match the evaluator's result type.
func EvalAs[T any](e *Evaluator, args ...types.Value) (T, error) {
	var zero T
	if err := e.bind(args); err != nil {
		return zero, err
	}
	root, ok := asTyped[T](e.root)
	if !ok {
		return zero, errors.ErrInvalidValue.
			WithDetail("result", e.root.resultType().String()).
			WithMessage("evaluator result type mismatch")
	}
	return root.Eval(), nil
}

// Filter is a compiled boolean predicate over record payloads.
type Filter func(value types.Value) bool

// NewFilter compiles a query's filter expression into a predicate. The
// expression may reference parameter 0, which is bound to the record
// under test. A nil expression matches everything.
func NewFilter(expression queries.Expression) (Filter, error) {
	return NewFilterWith(NewTranslator(), expression)
}

// NewFilterWith compiles a filter with a caller-supplied translator,
// typically one carrying an accessor registry.
func NewFilterWith(translator *Translator, expression queries.Expression) (
	Filter, error) {
	if expression == nil {
		return func(types.Value) bool { return true }, nil
	}
	if expression.Type() != types.TypeBool {
		return nil, errors.ErrTranslation.
			WithDetail("type", expression.Type().String()).
			WithMessage("filter must be boolean")
	}
	evaluator, err := translator.Translate(expression)
	if err != nil {
		return nil, err
	}
	if evaluator.ParameterCount() > 1 {
		return nil, errors.ErrTranslation.
			WithDetail("parameters", evaluator.ParameterCount()).
			WithMessage("filter may reference at most one parameter")
	}
	takesRecord := evaluator.ParameterCount() == 1
	return func(value types.Value) bool {
		var matched bool
		var evalErr error
		if takesRecord {
			matched, evalErr = EvalAs[bool](evaluator, value)
		} else {
			matched, evalErr = EvalAs[bool](evaluator)
		}
		return evalErr == nil && matched
	}, nil
}
