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

// Package eval compiles query expressions into trees of type-specialized
// evaluator nodes.
//
// A Translator walks an expression post-order and emits one node per
// variant, specialized to the node's native type. Short-circuit and/or,
// stateful reduce, lexically scoped global variables and host-registered
// member accessors are supported. Translation fails with a translation
// error on unknown functions, arity mismatches, unresolved variables,
// overload misses, and parameter lists that are not densely numbered or
// consistently typed.
//
// Parameter binding is external: translation allocates one slot per
// parameter index and every occurrence of an index reads through the same
// slot. Arguments are bound at evaluation time:
//
//	evaluator, err := eval.NewTranslator().Translate(expression)
//	result, err := evaluator.Eval(types.Int(5))
//
// NewFilter wraps translation for the common case of a boolean filter
// over a record bound to parameter 0.
package eval
