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

	"github.com/beam-project/beamq/pkg/types"
)

// node is the untyped view of a compiled evaluator node.
type node interface {
	resultType() types.TypeIndex
	evalAny() interface{}
}

// typed carries a node's result type.
type typed struct {
	kind types.TypeIndex
}

func (t typed) resultType() types.TypeIndex {
	return t.kind
}

// evaluable is the structural view of a node specialized to T.
type evaluable[T any] interface {
	Eval() T
}

// asTyped narrows an untyped node to its specialization.
func asTyped[T any](n node) (evaluable[T], bool) {
	t, ok := n.(evaluable[T])
	return t, ok
}

// valueOf wraps a raw payload into a Value of the given kind.
func valueOf(kind types.TypeIndex, raw interface{}) types.Value {
	switch kind {
	case types.TypeBool:
		return types.Bool(raw.(bool))
	case types.TypeChar:
		return types.Char(raw.(byte))
	case types.TypeInt:
		return types.Int(raw.(int32))
	case types.TypeDouble:
		return types.Double(raw.(float64))
	case types.TypeID:
		return types.ID(raw.(uint64))
	case types.TypeString:
		return types.String(raw.(string))
	case types.TypeTimestamp:
		return types.Timestamp(raw.(time.Time))
	case types.TypeDuration:
		return types.Duration(raw.(time.Duration))
	}
	return types.Value{}
}

// constantNode evaluates to a fixed value.
type constantNode[T any] struct {
	typed
	value T
}

func (n *constantNode[T]) Eval() T {
	return n.value
}

func (n *constantNode[T]) evalAny() interface{} {
	return n.Eval()
}

// parameterNode reads through a pointer into one of the evaluator's
// parameter slots.
type parameterNode[T any] struct {
	typed
	index int
	slot  *T
}

func (n *parameterNode[T]) Eval() T {
	return *n.slot
}

func (n *parameterNode[T]) evalAny() interface{} {
	return n.Eval()
}

// readNode reads a global variable's storage.
type readNode[T any] struct {
	typed
	address *T
}

func (n *readNode[T]) Eval() T {
	return *n.address
}

func (n *readNode[T]) evalAny() interface{} {
	return n.Eval()
}

// writeNode stores its operand's value into a global variable's storage
// and evaluates to the written value.
type writeNode[T any] struct {
	typed
	address *T
	value   evaluable[T]
}

func (n *writeNode[T]) Eval() T {
	v := n.value.Eval()
	*n.address = v
	return v
}

func (n *writeNode[T]) evalAny() interface{} {
	return n.Eval()
}

// globalNode owns a variable's storage. The initial value is evaluated on
// the first evaluation, then the body runs with the storage in scope.
type globalNode[V, B any] struct {
	typed
	initial     evaluable[V]
	storage     *V
	body        evaluable[B]
	initialized bool
}

func (n *globalNode[V, B]) Eval() B {
	if !n.initialized {
		*n.storage = n.initial.Eval()
		n.initialized = true
	}
	return n.body.Eval()
}

func (n *globalNode[V, B]) evalAny() interface{} {
	return n.Eval()
}

// notNode negates its operand.
type notNode struct {
	typed
	operand evaluable[bool]
}

func (n *notNode) Eval() bool {
	return !n.operand.Eval()
}

func (n *notNode) evalAny() interface{} {
	return n.Eval()
}

// andNode evaluates its right operand only when the left is true.
type andNode struct {
	typed
	left  evaluable[bool]
	right evaluable[bool]
}

func (n *andNode) Eval() bool {
	return n.left.Eval() && n.right.Eval()
}

func (n *andNode) evalAny() interface{} {
	return n.Eval()
}

// orNode evaluates its right operand only when the left is false.
type orNode struct {
	typed
	left  evaluable[bool]
	right evaluable[bool]
}

func (n *orNode) Eval() bool {
	return n.left.Eval() || n.right.Eval()
}

func (n *orNode) evalAny() interface{} {
	return n.Eval()
}

// function2Node applies a binary function to its operands.
type function2Node[R, A, B any] struct {
	typed
	fn    func(A, B) R
	left  evaluable[A]
	right evaluable[B]
}

func (n *function2Node[R, A, B]) Eval() R {
	return n.fn(n.left.Eval(), n.right.Eval())
}

func (n *function2Node[R, A, B]) evalAny() interface{} {
	return n.Eval()
}

// intToDoubleNode widens an int operand for a promoted function.
type intToDoubleNode struct {
	typed
	inner evaluable[int32]
}

func (n *intToDoubleNode) Eval() float64 {
	return float64(n.inner.Eval())
}

func (n *intToDoubleNode) evalAny() interface{} {
	return n.Eval()
}

// reduceNode folds successive series values through a compiled reducer,
// carrying the accumulated state across evaluations.
type reduceNode[T any] struct {
	typed
	reducer     evaluable[T]
	accumulator *T
	next        *T
	series      evaluable[T]
	value       T
}

func (n *reduceNode[T]) Eval() T {
	*n.accumulator = n.value
	*n.next = n.series.Eval()
	n.value = n.reducer.Eval()
	return n.value
}

func (n *reduceNode[T]) evalAny() interface{} {
	return n.Eval()
}

// memberNode reads a named member from the target's value through a
// host-registered accessor.
type memberNode[R any] struct {
	typed
	targetKind types.TypeIndex
	target     node
	get        func(value types.Value) types.Value
}

func (n *memberNode[R]) Eval() R {
	target := valueOf(n.targetKind, n.target.evalAny())
	result, _ := n.get(target).Interface().(R)
	return result
}

func (n *memberNode[R]) evalAny() interface{} {
	return n.Eval()
}
