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
	"encoding/json"
	"sync"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/pkg/types"
)

// ExpressionDecoder reconstructs an expression from its wire form,
// re-validating every typing constraint.
type ExpressionDecoder func(data []byte) (Expression, error)

var (
	registryMu         sync.RWMutex
	expressionRegistry map[string]ExpressionDecoder
)

// init registers the built-in variants. The decoders call back into
// UnmarshalExpression, so the table cannot be a variable initializer.
func init() {
	expressionRegistry = map[string]ExpressionDecoder{
		tagConstant:  decodeConstant,
		tagParameter: decodeParameter,
		tagVariable:  decodeVariable,
		tagMember:    decodeMemberAccess,
		tagFunction:  decodeFunction,
		tagNot:       decodeNot,
		tagAnd:       decodeAnd,
		tagOr:        decodeOr,
		tagGlobal:    decodeGlobal,
		tagSet:       decodeSetVariable,
		tagReduce:    decodeReduce,
	}
}

// RegisterExpression adds a decoder for a host-defined expression tag.
// The registry must be populated identically on both ends of a
// connection.
func RegisterExpression(tag string, decoder ExpressionDecoder) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := expressionRegistry[tag]; exists {
		return errors.ErrInvalidInput.WithDetail("tag", tag).
			WithMessage("expression tag already registered")
	}
	expressionRegistry[tag] = decoder
	return nil
}

// MarshalExpression serializes an expression to its tagged wire form.
func MarshalExpression(e Expression) ([]byte, error) {
	if e == nil {
		return nil, errors.ErrSerialization.
			WithMessage("cannot serialize a nil expression")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	return data, nil
}

// UnmarshalExpression reconstructs an expression from its tagged wire
// form, re-checking every typing constraint.
func UnmarshalExpression(data []byte) (Expression, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}

	registryMu.RLock()
	decoder, ok := expressionRegistry[head.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.ErrSerialization.WithDetail("tag", head.Type).
			WithMessage("unknown expression tag")
	}
	return decoder(data)
}

// reserialize wraps a constructor failure as a serialization error.
func reserialize(e Expression, err error) (Expression, error) {
	if err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	return e, nil
}

type constantJSON struct {
	Type  string      `json:"type"`
	Value types.Value `json:"value"`
}

func (e *ConstantExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(constantJSON{Type: e.tag(), Value: e.value})
}

func decodeConstant(data []byte) (Expression, error) {
	var wire constantJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	return NewConstant(wire.Value), nil
}

type parameterJSON struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	DataType string `json:"data_type"`
}

func (e *ParameterExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(parameterJSON{
		Type: e.tag(), Index: e.index, DataType: e.dataType.String()})
}

func decodeParameter(data []byte) (Expression, error) {
	var wire parameterJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	dataType, err := types.ParseTypeIndex(wire.DataType)
	if err != nil {
		return nil, err
	}
	expression, err := NewParameter(wire.Index, dataType)
	return reserialize(expression, err)
}

type variableJSON struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

func (e *VariableExpression) MarshalJSON() ([]byte, error) {
	return json.Marshal(variableJSON{
		Type: e.tag(), Name: e.name, DataType: e.dataType.String()})
}

func decodeVariable(data []byte) (Expression, error) {
	var wire variableJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	dataType, err := types.ParseTypeIndex(wire.DataType)
	if err != nil {
		return nil, err
	}
	expression, err := NewVariable(wire.Name, dataType)
	return reserialize(expression, err)
}

type memberJSON struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	DataType string          `json:"data_type"`
	Target   json.RawMessage `json:"target"`
}

func (e *MemberAccessExpression) MarshalJSON() ([]byte, error) {
	target, err := MarshalExpression(e.target)
	if err != nil {
		return nil, err
	}
	return json.Marshal(memberJSON{
		Type:     e.tag(),
		Name:     e.name,
		DataType: e.dataType.String(),
		Target:   target,
	})
}

func decodeMemberAccess(data []byte) (Expression, error) {
	var wire memberJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	dataType, err := types.ParseTypeIndex(wire.DataType)
	if err != nil {
		return nil, err
	}
	target, err := UnmarshalExpression(wire.Target)
	if err != nil {
		return nil, err
	}
	expression, err := NewMemberAccess(wire.Name, dataType, target)
	return reserialize(expression, err)
}

type functionJSON struct {
	Type     string            `json:"type"`
	Name     string            `json:"name"`
	DataType string            `json:"data_type"`
	Args     []json.RawMessage `json:"args"`
}

func (e *FunctionExpression) MarshalJSON() ([]byte, error) {
	args := make([]json.RawMessage, len(e.args))
	for i, arg := range e.args {
		data, err := MarshalExpression(arg)
		if err != nil {
			return nil, err
		}
		args[i] = data
	}
	return json.Marshal(functionJSON{
		Type:     e.tag(),
		Name:     e.name,
		DataType: e.dataType.String(),
		Args:     args,
	})
}

func decodeFunction(data []byte) (Expression, error) {
	var wire functionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	dataType, err := types.ParseTypeIndex(wire.DataType)
	if err != nil {
		return nil, err
	}
	args := make([]Expression, len(wire.Args))
	for i, raw := range wire.Args {
		arg, err := UnmarshalExpression(raw)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	expression, err := NewFunction(wire.Name, dataType, args)
	return reserialize(expression, err)
}

type notJSON struct {
	Type    string          `json:"type"`
	Operand json.RawMessage `json:"operand"`
}

func (e *NotExpression) MarshalJSON() ([]byte, error) {
	operand, err := MarshalExpression(e.operand)
	if err != nil {
		return nil, err
	}
	return json.Marshal(notJSON{Type: e.tag(), Operand: operand})
}

func decodeNot(data []byte) (Expression, error) {
	var wire notJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	operand, err := UnmarshalExpression(wire.Operand)
	if err != nil {
		return nil, err
	}
	expression, err := NewNot(operand)
	return reserialize(expression, err)
}

type binaryJSON struct {
	Type  string          `json:"type"`
	Left  json.RawMessage `json:"left"`
	Right json.RawMessage `json:"right"`
}

func marshalBinary(tag string, left, right Expression) ([]byte, error) {
	leftData, err := MarshalExpression(left)
	if err != nil {
		return nil, err
	}
	rightData, err := MarshalExpression(right)
	if err != nil {
		return nil, err
	}
	return json.Marshal(binaryJSON{Type: tag, Left: leftData, Right: rightData})
}

func decodeBinary(data []byte) (left, right Expression, err error) {
	var wire binaryJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, nil, errors.ErrSerialization.Wrap(err)
	}
	if left, err = UnmarshalExpression(wire.Left); err != nil {
		return nil, nil, err
	}
	if right, err = UnmarshalExpression(wire.Right); err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (e *AndExpression) MarshalJSON() ([]byte, error) {
	return marshalBinary(e.tag(), e.left, e.right)
}

func decodeAnd(data []byte) (Expression, error) {
	left, right, err := decodeBinary(data)
	if err != nil {
		return nil, err
	}
	expression, err := NewAnd(left, right)
	return reserialize(expression, err)
}

func (e *OrExpression) MarshalJSON() ([]byte, error) {
	return marshalBinary(e.tag(), e.left, e.right)
}

func decodeOr(data []byte) (Expression, error) {
	left, right, err := decodeBinary(data)
	if err != nil {
		return nil, err
	}
	expression, err := NewOr(left, right)
	return reserialize(expression, err)
}

type globalJSON struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Initial json.RawMessage `json:"initial"`
	Body    json.RawMessage `json:"body"`
}

func (e *GlobalVariableDeclarationExpression) MarshalJSON() ([]byte, error) {
	initial, err := MarshalExpression(e.initial)
	if err != nil {
		return nil, err
	}
	body, err := MarshalExpression(e.body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(globalJSON{
		Type: e.tag(), Name: e.name, Initial: initial, Body: body})
}

func decodeGlobal(data []byte) (Expression, error) {
	var wire globalJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	initial, err := UnmarshalExpression(wire.Initial)
	if err != nil {
		return nil, err
	}
	body, err := UnmarshalExpression(wire.Body)
	if err != nil {
		return nil, err
	}
	expression, err := NewGlobalVariableDeclaration(wire.Name, initial, body)
	return reserialize(expression, err)
}

type setJSON struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func (e *SetVariableExpression) MarshalJSON() ([]byte, error) {
	value, err := MarshalExpression(e.value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(setJSON{Type: e.tag(), Name: e.name, Value: value})
}

func decodeSetVariable(data []byte) (Expression, error) {
	var wire setJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	value, err := UnmarshalExpression(wire.Value)
	if err != nil {
		return nil, err
	}
	expression, err := NewSetVariable(wire.Name, value)
	return reserialize(expression, err)
}

type reduceJSON struct {
	Type    string          `json:"type"`
	Reducer json.RawMessage `json:"reducer"`
	Series  json.RawMessage `json:"series"`
	Initial types.Value     `json:"initial"`
}

func (e *ReduceExpression) MarshalJSON() ([]byte, error) {
	reducer, err := MarshalExpression(e.reducer)
	if err != nil {
		return nil, err
	}
	series, err := MarshalExpression(e.series)
	if err != nil {
		return nil, err
	}
	return json.Marshal(reduceJSON{
		Type:    e.tag(),
		Reducer: reducer,
		Series:  series,
		Initial: e.initial,
	})
}

func decodeReduce(data []byte) (Expression, error) {
	var wire reduceJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, errors.ErrSerialization.Wrap(err)
	}
	reducer, err := UnmarshalExpression(wire.Reducer)
	if err != nil {
		return nil, err
	}
	series, err := UnmarshalExpression(wire.Series)
	if err != nil {
		return nil, err
	}
	expression, err := NewReduce(reducer, series, wire.Initial)
	return reserialize(expression, err)
}
