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

// Translator compiles expressions into evaluator trees. A translator is
// single use; create one per Translate call. Translators sharing an
// accessor registry compile member access expressions identically.
type Translator struct {
	accessors *AccessorRegistry
	slots     map[int]parameterSlot
	variables map[string][]variableBinding
}

type variableBinding struct {
	kind    types.TypeIndex
	address interface{}
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithAccessors supplies the registry used to compile member access
// expressions.
func WithAccessors(registry *AccessorRegistry) TranslatorOption {
	return func(t *Translator) {
		t.accessors = registry
	}
}

// NewTranslator creates a Translator.
func NewTranslator(options ...TranslatorOption) *Translator {
	t := &Translator{
		slots:     make(map[int]parameterSlot),
		variables: make(map[string][]variableBinding),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// newSub creates a fresh translator for a nested compilation, sharing
// the accessor registry but nothing else.
func (t *Translator) newSub() *Translator {
	return NewTranslator(WithAccessors(t.accessors))
}

// Translate compiles an expression into an evaluator together with its
// dense parameter list.
func (t *Translator) Translate(expression queries.Expression) (
	*Evaluator, error) {
	if expression == nil {
		return nil, errors.ErrTranslation.
			WithMessage("cannot translate a nil expression")
	}
	root, err := t.translate(expression)
	if err != nil {
		return nil, err
	}

	maxIndex := -1
	for index := range t.slots {
		if index > maxIndex {
			maxIndex = index
		}
	}
	slots := make([]parameterSlot, 0, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		s, ok := t.slots[i]
		if !ok {
			return nil, errors.ErrTranslation.
				WithDetail("parameter", i).
				WithMessage("missing parameter")
		}
		slots = append(slots, s)
	}
	return &Evaluator{root: root, slots: slots}, nil
}

// translate dispatches on the expression variant.
func (t *Translator) translate(expression queries.Expression) (node, error) {
	switch e := expression.(type) {
	case *queries.ConstantExpression:
		return makeConstant(e.Value())
	case *queries.ParameterExpression:
		return t.translateParameter(e)
	case *queries.VariableExpression:
		return t.translateVariable(e)
	case *queries.SetVariableExpression:
		return t.translateSetVariable(e)
	case *queries.GlobalVariableDeclarationExpression:
		return t.translateGlobal(e)
	case *queries.NotExpression:
		return t.translateNot(e)
	case *queries.AndExpression:
		left, right, err := t.translateBooleanPair(e.Left(), e.Right())
		if err != nil {
			return nil, err
		}
		return &andNode{typed{types.TypeBool}, left, right}, nil
	case *queries.OrExpression:
		left, right, err := t.translateBooleanPair(e.Left(), e.Right())
		if err != nil {
			return nil, err
		}
		return &orNode{typed{types.TypeBool}, left, right}, nil
	case *queries.FunctionExpression:
		return t.translateFunction(e)
	case *queries.ReduceExpression:
		return t.translateReduce(e)
	case *queries.MemberAccessExpression:
		return t.translateMemberAccess(e)
	}
	return nil, errors.ErrTranslation.
		WithMessage("expression not supported")
}

func makeConstant(value types.Value) (node, error) {
	switch value.Type() {
	case types.TypeBool:
		return &constantNode[bool]{typed{value.Type()}, value.AsBool()}, nil
	case types.TypeChar:
		return &constantNode[byte]{typed{value.Type()}, value.AsChar()}, nil
	case types.TypeInt:
		return &constantNode[int32]{typed{value.Type()}, value.AsInt()}, nil
	case types.TypeDouble:
		return &constantNode[float64]{typed{value.Type()}, value.AsDouble()}, nil
	case types.TypeID:
		return &constantNode[uint64]{typed{value.Type()}, value.AsID()}, nil
	case types.TypeString:
		return &constantNode[string]{typed{value.Type()}, value.AsString()}, nil
	case types.TypeTimestamp:
		return &constantNode[time.Time]{
			typed{value.Type()}, value.AsTimestamp()}, nil
	case types.TypeDuration:
		return &constantNode[time.Duration]{
			typed{value.Type()}, value.AsDuration()}, nil
	}
	return nil, errors.ErrTranslation.
		WithDetail("type", value.Type().String()).
		WithMessage("constant type not supported")
}

func (t *Translator) translateParameter(e *queries.ParameterExpression) (
	node, error) {
	if e.Index() < 0 || e.Index() >= queries.MaxParameters {
		return nil, errors.ErrTranslation.
			WithDetail("index", e.Index()).
			WithMessage("too many parameters")
	}
	if existing, ok := t.slots[e.Index()]; ok &&
		existing.kind() != e.Type() {
		return nil, errors.ErrTranslation.
			WithDetail("index", e.Index()).
			WithDetail("previous", existing.kind().String()).
			WithDetail("current", e.Type().String()).
			WithMessage("parameter type mismatch")
	}
	switch e.Type() {
	case types.TypeBool:
		return makeParameter[bool](t, e.Index(), e.Type()), nil
	case types.TypeChar:
		return makeParameter[byte](t, e.Index(), e.Type()), nil
	case types.TypeInt:
		return makeParameter[int32](t, e.Index(), e.Type()), nil
	case types.TypeDouble:
		return makeParameter[float64](t, e.Index(), e.Type()), nil
	case types.TypeID:
		return makeParameter[uint64](t, e.Index(), e.Type()), nil
	case types.TypeString:
		return makeParameter[string](t, e.Index(), e.Type()), nil
	case types.TypeTimestamp:
		return makeParameter[time.Time](t, e.Index(), e.Type()), nil
	case types.TypeDuration:
		return makeParameter[time.Duration](t, e.Index(), e.Type()), nil
	}
	return nil, errors.ErrTranslation.
		WithDetail("type", e.Type().String()).
		WithMessage("parameter type not supported")
}

// makeParameter returns a node reading the slot for the index, creating
// the slot on first use so every occurrence shares one pointer.
func makeParameter[T any](t *Translator, index int,
	kind types.TypeIndex) node {
	var s *slot[T]
	if existing, ok := t.slots[index]; ok {
		s = existing.(*slot[T])
	} else {
		s = &slot[T]{i: index, t: kind, ptr: new(T)}
		t.slots[index] = s
	}
	return &parameterNode[T]{typed{kind}, index, s.ptr}
}

func (t *Translator) findVariable(name string) (variableBinding, error) {
	bindings := t.variables[name]
	if len(bindings) == 0 {
		return variableBinding{}, errors.ErrTranslation.
			WithDetail("variable", name).
			WithMessage("variable not found")
	}
	return bindings[len(bindings)-1], nil
}

func (t *Translator) translateVariable(e *queries.VariableExpression) (
	node, error) {
	binding, err := t.findVariable(e.Name())
	if err != nil {
		return nil, err
	}
	if binding.kind != e.Type() {
		return nil, errors.ErrTranslation.
			WithDetail("variable", e.Name()).
			WithMessage("variable type mismatch")
	}
	switch binding.kind {
	case types.TypeBool:
		return &readNode[bool]{typed{binding.kind},
			binding.address.(*bool)}, nil
	case types.TypeChar:
		return &readNode[byte]{typed{binding.kind},
			binding.address.(*byte)}, nil
	case types.TypeInt:
		return &readNode[int32]{typed{binding.kind},
			binding.address.(*int32)}, nil
	case types.TypeDouble:
		return &readNode[float64]{typed{binding.kind},
			binding.address.(*float64)}, nil
	case types.TypeID:
		return &readNode[uint64]{typed{binding.kind},
			binding.address.(*uint64)}, nil
	case types.TypeString:
		return &readNode[string]{typed{binding.kind},
			binding.address.(*string)}, nil
	case types.TypeTimestamp:
		return &readNode[time.Time]{typed{binding.kind},
			binding.address.(*time.Time)}, nil
	case types.TypeDuration:
		return &readNode[time.Duration]{typed{binding.kind},
			binding.address.(*time.Duration)}, nil
	}
	return nil, errors.ErrTranslation.
		WithMessage("variable type not supported")
}

func (t *Translator) translateSetVariable(e *queries.SetVariableExpression) (
	node, error) {
	binding, err := t.findVariable(e.Name())
	if err != nil {
		return nil, err
	}
	if binding.kind != e.Type() {
		return nil, errors.ErrTranslation.
			WithDetail("variable", e.Name()).
			WithMessage("variable type mismatch")
	}
	value, err := t.translate(e.Value())
	if err != nil {
		return nil, err
	}
	switch binding.kind {
	case types.TypeBool:
		return makeWrite[bool](binding, value, e.Name())
	case types.TypeChar:
		return makeWrite[byte](binding, value, e.Name())
	case types.TypeInt:
		return makeWrite[int32](binding, value, e.Name())
	case types.TypeDouble:
		return makeWrite[float64](binding, value, e.Name())
	case types.TypeID:
		return makeWrite[uint64](binding, value, e.Name())
	case types.TypeString:
		return makeWrite[string](binding, value, e.Name())
	case types.TypeTimestamp:
		return makeWrite[time.Time](binding, value, e.Name())
	case types.TypeDuration:
		return makeWrite[time.Duration](binding, value, e.Name())
	}
	return nil, errors.ErrTranslation.
		WithMessage("variable type not supported")
}

func makeWrite[T any](binding variableBinding, value node, name string) (
	node, error) {
	v, ok := asTyped[T](value)
	if !ok {
		return nil, errors.ErrTranslation.
			WithDetail("variable", name).
			WithMessage("assigned value type mismatch")
	}
	return &writeNode[T]{
		typed{binding.kind}, binding.address.(*T), v}, nil
}

func (t *Translator) translateGlobal(
	e *queries.GlobalVariableDeclarationExpression) (node, error) {
	initial, err := t.translate(e.Initial())
	if err != nil {
		return nil, err
	}
	switch e.Initial().Type() {
	case types.TypeBool:
		return makeGlobal[bool](t, e, initial)
	case types.TypeChar:
		return makeGlobal[byte](t, e, initial)
	case types.TypeInt:
		return makeGlobal[int32](t, e, initial)
	case types.TypeDouble:
		return makeGlobal[float64](t, e, initial)
	case types.TypeID:
		return makeGlobal[uint64](t, e, initial)
	case types.TypeString:
		return makeGlobal[string](t, e, initial)
	case types.TypeTimestamp:
		return makeGlobal[time.Time](t, e, initial)
	case types.TypeDuration:
		return makeGlobal[time.Duration](t, e, initial)
	}
	return nil, errors.ErrTranslation.
		WithMessage("variable type not supported")
}

// makeGlobal allocates the variable's storage, binds it for the body's
// translation and pops the binding on every completion path.
func makeGlobal[V any](t *Translator,
	e *queries.GlobalVariableDeclarationExpression, initial node) (
	node, error) {
	init, ok := asTyped[V](initial)
	if !ok {
		return nil, errors.ErrTranslation.
			WithDetail("variable", e.Name()).
			WithMessage("initial value type mismatch")
	}
	storage := new(V)
	kind := e.Initial().Type()
	t.variables[e.Name()] = append(t.variables[e.Name()],
		variableBinding{kind: kind, address: storage})
	defer func() {
		bindings := t.variables[e.Name()]
		t.variables[e.Name()] = bindings[:len(bindings)-1]
	}()

	body, err := t.translate(e.Body())
	if err != nil {
		return nil, err
	}
	switch e.Body().Type() {
	case types.TypeBool:
		return finishGlobal[V, bool](kind, e, init, storage, body)
	case types.TypeChar:
		return finishGlobal[V, byte](kind, e, init, storage, body)
	case types.TypeInt:
		return finishGlobal[V, int32](kind, e, init, storage, body)
	case types.TypeDouble:
		return finishGlobal[V, float64](kind, e, init, storage, body)
	case types.TypeID:
		return finishGlobal[V, uint64](kind, e, init, storage, body)
	case types.TypeString:
		return finishGlobal[V, string](kind, e, init, storage, body)
	case types.TypeTimestamp:
		return finishGlobal[V, time.Time](kind, e, init, storage, body)
	case types.TypeDuration:
		return finishGlobal[V, time.Duration](kind, e, init, storage, body)
	}
	return nil, errors.ErrTranslation.
		WithMessage("body type not supported")
}

func finishGlobal[V, B any](kind types.TypeIndex,
	e *queries.GlobalVariableDeclarationExpression, init evaluable[V],
	storage *V, body node) (node, error) {
	b, ok := asTyped[B](body)
	if !ok {
		return nil, errors.ErrTranslation.
			WithDetail("variable", e.Name()).
			WithMessage("body node type mismatch")
	}
	return &globalNode[V, B]{
		typed:   typed{e.Body().Type()},
		initial: init,
		storage: storage,
		body:    b,
	}, nil
}

func (t *Translator) translateNot(e *queries.NotExpression) (node, error) {
	operand, err := t.translate(e.Operand())
	if err != nil {
		return nil, err
	}
	b, ok := asTyped[bool](operand)
	if !ok {
		return nil, errors.ErrTranslation.
			WithMessage("not requires a boolean operand")
	}
	return &notNode{typed{types.TypeBool}, b}, nil
}

func (t *Translator) translateBooleanPair(left, right queries.Expression) (
	evaluable[bool], evaluable[bool], error) {
	leftNode, err := t.translate(left)
	if err != nil {
		return nil, nil, err
	}
	rightNode, err := t.translate(right)
	if err != nil {
		return nil, nil, err
	}
	l, lok := asTyped[bool](leftNode)
	r, rok := asTyped[bool](rightNode)
	if !lok || !rok {
		return nil, nil, errors.ErrTranslation.
			WithMessage("operands must be boolean")
	}
	return l, r, nil
}

func (t *Translator) translateFunction(e *queries.FunctionExpression) (
	node, error) {
	args := e.Args()
	if len(args) != 2 {
		return nil, errors.ErrTranslation.
			WithDetail("function", e.Name()).
			WithMessage("invalid parameter count")
	}
	promoted, ok := types.Promote(args[0].Type(), args[1].Type())
	if !ok {
		return nil, translationOverload(e.Name(), args[0].Type())
	}
	left, err := t.translate(args[0])
	if err != nil {
		return nil, err
	}
	right, err := t.translate(args[1])
	if err != nil {
		return nil, err
	}
	left, err = promoteOperand(left, args[0].Type(), promoted)
	if err != nil {
		return nil, err
	}
	right, err = promoteOperand(right, args[1].Type(), promoted)
	if err != nil {
		return nil, err
	}
	return buildFunction(e.Name(), promoted, left, right)
}

// promoteOperand widens an int operand when the function's operand kind
// promoted to double.
func promoteOperand(operand node, from, to types.TypeIndex) (node, error) {
	if from == to {
		return operand, nil
	}
	if from == types.TypeInt && to == types.TypeDouble {
		inner, ok := asTyped[int32](operand)
		if !ok {
			return nil, errors.ErrTranslation.
				WithMessage("operand node type mismatch")
		}
		return &intToDoubleNode{typed{types.TypeDouble}, inner}, nil
	}
	return nil, errors.ErrTranslation.
		WithDetail("from", from.String()).
		WithDetail("to", to.String()).
		WithMessage("unsupported promotion")
}

func (t *Translator) translateReduce(e *queries.ReduceExpression) (
	node, error) {
	reducer, err := t.newSub().Translate(e.Reducer())
	if err != nil {
		return nil, err
	}
	if reducer.ParameterCount() > 2 {
		return nil, errors.ErrTranslation.
			WithMessage("reducer takes at most two parameters")
	}
	for _, s := range reducer.slots {
		if s.kind() != e.Type() {
			return nil, errors.ErrTranslation.
				WithDetail("parameter", s.index()).
				WithMessage("reducer parameter type mismatch")
		}
	}
	series, err := t.translate(e.Series())
	if err != nil {
		return nil, err
	}
	switch e.Type() {
	case types.TypeBool:
		return makeReduce[bool](e, reducer, series)
	case types.TypeChar:
		return makeReduce[byte](e, reducer, series)
	case types.TypeInt:
		return makeReduce[int32](e, reducer, series)
	case types.TypeDouble:
		return makeReduce[float64](e, reducer, series)
	case types.TypeID:
		return makeReduce[uint64](e, reducer, series)
	case types.TypeString:
		return makeReduce[string](e, reducer, series)
	case types.TypeTimestamp:
		return makeReduce[time.Time](e, reducer, series)
	case types.TypeDuration:
		return makeReduce[time.Duration](e, reducer, series)
	}
	return nil, errors.ErrTranslation.
		WithMessage("reduce type not supported")
}

func makeReduce[T any](e *queries.ReduceExpression, reducer *Evaluator,
	series node) (node, error) {
	root, ok := asTyped[T](reducer.root)
	if !ok {
		return nil, errors.ErrTranslation.
			WithMessage("reducer result type mismatch")
	}
	s, ok := asTyped[T](series)
	if !ok {
		return nil, errors.ErrTranslation.
			WithMessage("series node type mismatch")
	}
	initial, ok := e.Initial().Interface().(T)
	if !ok {
		return nil, errors.ErrTranslation.
			WithMessage("initial value type mismatch")
	}
	pointer := func(index int) *T {
		for _, candidate := range reducer.slots {
			if candidate.index() == index {
				return candidate.(*slot[T]).ptr
			}
		}
		return new(T)
	}
	return &reduceNode[T]{
		typed:       typed{e.Type()},
		reducer:     root,
		accumulator: pointer(0),
		next:        pointer(1),
		series:      s,
		value:       initial,
	}, nil
}

func (t *Translator) translateMemberAccess(
	e *queries.MemberAccessExpression) (node, error) {
	target, err := t.translate(e.Target())
	if err != nil {
		return nil, err
	}
	accessor, ok := t.accessors.lookup(e.Target().Type(), e.Name())
	if !ok {
		return nil, errors.ErrTranslation.
			WithDetail("member", e.Name()).
			WithDetail("target", e.Target().Type().String()).
			WithMessage("no accessor registered for member")
	}
	if accessor.ResultType != e.Type() {
		return nil, errors.ErrTranslation.
			WithDetail("member", e.Name()).
			WithDetail("declared", e.Type().String()).
			WithDetail("registered", accessor.ResultType.String()).
			WithMessage("member type mismatch")
	}
	targetKind := e.Target().Type()
	switch e.Type() {
	case types.TypeBool:
		return newMember[bool](e, targetKind, target, accessor), nil
	case types.TypeChar:
		return newMember[byte](e, targetKind, target, accessor), nil
	case types.TypeInt:
		return newMember[int32](e, targetKind, target, accessor), nil
	case types.TypeDouble:
		return newMember[float64](e, targetKind, target, accessor), nil
	case types.TypeID:
		return newMember[uint64](e, targetKind, target, accessor), nil
	case types.TypeString:
		return newMember[string](e, targetKind, target, accessor), nil
	case types.TypeTimestamp:
		return newMember[time.Time](e, targetKind, target, accessor), nil
	case types.TypeDuration:
		return newMember[time.Duration](e, targetKind, target, accessor), nil
	}
	return nil, errors.ErrTranslation.
		WithMessage("member type not supported")
}

func newMember[R any](e *queries.MemberAccessExpression,
	targetKind types.TypeIndex, target node, accessor Accessor) node {
	return &memberNode[R]{
		typed:      typed{e.Type()},
		targetKind: targetKind,
		target:     target,
		get:        accessor.Get,
	}
}
