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
	"sync"

	"github.com/beam-project/beamq/pkg/types"
)

// Accessor resolves a named member of a value.
type Accessor struct {
	// ResultType is the member's declared type.
	ResultType types.TypeIndex

	// Get extracts the member from the target value.
	Get func(value types.Value) types.Value
}

type accessorKey struct {
	target types.TypeIndex
	member string
}

// AccessorRegistry maps (target type, member name) pairs to accessors.
// Hosts register accessors for their record types so member access
// expressions can be compiled.
type AccessorRegistry struct {
	mu        sync.RWMutex
	accessors map[accessorKey]Accessor
}

// NewAccessorRegistry creates an empty registry.
func NewAccessorRegistry() *AccessorRegistry {
	return &AccessorRegistry{accessors: make(map[accessorKey]Accessor)}
}

// Register adds an accessor for a member of the target type.
func (r *AccessorRegistry) Register(
	target types.TypeIndex, member string, accessor Accessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accessors[accessorKey{target, member}] = accessor
}

// lookup resolves the accessor for a member of the target type.
func (r *AccessorRegistry) lookup(
	target types.TypeIndex, member string) (Accessor, bool) {
	if r == nil {
		return Accessor{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	accessor, ok := r.accessors[accessorKey{target, member}]
	return accessor, ok
}
