// Copyright (C) 2025 beam-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), DefaultRetryConfig(),
		func(ctx context.Context) error {
			calls++
			return nil
		})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_RecoversAfterFailures(t *testing.T) {
	config := &RetryConfig{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff(time.Millisecond),
		ShouldRetry: DefaultShouldRetry,
	}
	calls := 0

	err := Retry(context.Background(), config,
		func(ctx context.Context) error {
			calls++
			if calls < 3 {
				return stderrors.New("transient")
			}
			return nil
		})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_Exhaustion(t *testing.T) {
	config := &RetryConfig{
		MaxAttempts: 2,
		Backoff:     ConstantBackoff(time.Millisecond),
		ShouldRetry: DefaultShouldRetry,
	}

	err := Retry(context.Background(), config,
		func(ctx context.Context) error {
			return stderrors.New("always failing")
		})
	if !errors.Is(err, ErrMaxAttemptsExceeded) {
		t.Errorf("Retry() error = %v, want max attempts exceeded", err)
	}
}

func TestRetry_NonRetryable(t *testing.T) {
	calls := 0

	err := Retry(context.Background(), DefaultRetryConfig(),
		func(ctx context.Context) error {
			calls++
			return errors.ErrNotConnected
		})
	if !errors.IsNotConnected(err) {
		t.Errorf("Retry() error = %v, want not connected", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on closed component)", calls)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, DefaultRetryConfig(),
		func(ctx context.Context) error {
			return stderrors.New("never retried")
		})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}
