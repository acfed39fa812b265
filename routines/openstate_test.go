// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package routines

import (
	"sync"
	"testing"

	"github.com/beam-project/beamq/pkg/errors"
)

func TestOpenState_InitiallyOpen(t *testing.T) {
	state := NewOpenState()

	if !state.IsOpen() {
		t.Error("new state should be open")
	}
	if err := state.EnsureOpen(); err != nil {
		t.Errorf("EnsureOpen() error = %v", err)
	}
}

func TestOpenState_SetClosing(t *testing.T) {
	state := NewOpenState()

	if state.SetClosing() {
		t.Error("first SetClosing() should return false")
	}
	if !state.IsClosing() {
		t.Error("state should be closing")
	}
	if err := state.EnsureOpen(); !errors.IsNotConnected(err) {
		t.Errorf("EnsureOpen() error = %v, want not connected", err)
	}
}

func TestOpenState_SecondCloserWaits(t *testing.T) {
	state := NewOpenState()
	state.SetClosing()

	var wg sync.WaitGroup
	wg.Add(1)
	results := make(chan bool, 1)
	go func() {
		defer wg.Done()
		results <- state.SetClosing()
	}()

	state.Close()
	wg.Wait()

	if got := <-results; !got {
		t.Error("second SetClosing() should return true after close")
	}
	if !state.IsClosed() {
		t.Error("state should be closed")
	}
}

func TestOpenState_CloseIdempotent(t *testing.T) {
	state := NewOpenState()

	state.SetClosing()
	state.Close()
	state.Close()

	if !state.IsClosed() {
		t.Error("state should remain closed")
	}
}
