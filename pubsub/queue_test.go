// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
)

func TestQueue_PushPop(t *testing.T) {
	queue := NewQueue[int](4, OverflowBreak)

	for i := 1; i <= 3; i++ {
		err := queue.Push(queries.NewSequencedValue(i, queries.Sequence(i)))
		if err != nil {
			t.Fatalf("Push() error = %v", err)
		}
	}
	for i := 1; i <= 3; i++ {
		value, err := queue.Pop(context.Background())
		if err != nil {
			t.Fatalf("Pop() error = %v", err)
		}
		if value.Value != i {
			t.Errorf("Pop() = %d, want %d", value.Value, i)
		}
	}
}

func TestQueue_BreakDrainsBeforeError(t *testing.T) {
	queue := NewQueue[int](4, OverflowBreak)

	queue.Push(queries.NewSequencedValue(1, 1))
	queue.Break(errors.ErrQueryInterrupted)

	value, err := queue.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop() before drain error = %v", err)
	}
	if value.Value != 1 {
		t.Errorf("Pop() = %d, want 1", value.Value)
	}

	_, err = queue.Pop(context.Background())
	if !errors.IsInterrupted(err) {
		t.Errorf("Pop() after drain error = %v, want interruption", err)
	}
}

func TestQueue_PushAfterBreak(t *testing.T) {
	queue := NewQueue[int](4, OverflowBreak)
	queue.Break(nil)

	err := queue.Push(queries.NewSequencedValue(1, 1))
	if !errors.Is(err, errors.ErrEndOfFile) {
		t.Errorf("Push() error = %v, want end of file", err)
	}
}

func TestQueue_OverflowBreak(t *testing.T) {
	queue := NewQueue[int](1, OverflowBreak)

	queue.Push(queries.NewSequencedValue(1, 1))
	err := queue.Push(queries.NewSequencedValue(2, 2))

	if !errors.Is(err, errors.ErrQueueFull) {
		t.Errorf("Push() error = %v, want queue full", err)
	}
	if !queue.IsBroken() {
		t.Error("queue should be broken after overflow")
	}
}

func TestQueue_OverflowDrop(t *testing.T) {
	queue := NewQueue[int](1, OverflowDrop)

	queue.Push(queries.NewSequencedValue(1, 1))
	if err := queue.Push(queries.NewSequencedValue(2, 2)); err != nil {
		t.Errorf("Push() error = %v, want dropped silently", err)
	}
	if queue.IsBroken() {
		t.Error("drop policy must not break the queue")
	}
}

func TestQueue_PopContextCancellation(t *testing.T) {
	queue := NewQueue[int](1, OverflowBreak)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := queue.Pop(ctx)
	if err == nil {
		t.Error("Pop() on empty queue should fail when the context ends")
	}
}
