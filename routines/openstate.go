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

package routines

import (
	"sync"

	"github.com/beam-project/beamq/pkg/errors"
)

// openStateValue enumerates the one-way OPEN -> CLOSING -> CLOSED machine.
type openStateValue uint8

const (
	stateOpen openStateValue = iota
	stateClosing
	stateClosed
)

// OpenState tracks whether a component is open. The transition is
// one way: once closing, writers are latched out; once closed, every
// waiter is released.
type OpenState struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state openStateValue
}

// NewOpenState creates an OpenState in the open state.
func NewOpenState() *OpenState {
	s := &OpenState{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// IsOpen reports whether the state is open.
func (s *OpenState) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateOpen
}

// IsClosing reports whether the state is closing.
func (s *OpenState) IsClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateClosing
}

// IsClosed reports whether the state is closed.
func (s *OpenState) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateClosed
}

// EnsureOpen fails with a not connected error unless the state is open.
func (s *OpenState) EnsureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateOpen {
		return errors.ErrNotConnected
	}
	return nil
}

// SetClosing moves an open state to closing and returns false. When the
// state is already closing or closed, it blocks until the close
// completes and returns true, so exactly one caller performs shutdown.
func (s *OpenState) SetClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateOpen {
		s.state = stateClosing
		return false
	}
	for s.state != stateClosed {
		s.cond.Wait()
	}
	return true
}

// Close moves the state to closed and releases every waiter.
func (s *OpenState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateClosed {
		return
	}
	s.state = stateClosed
	s.cond.Broadcast()
}
