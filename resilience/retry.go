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

package resilience

import (
	"context"
	"math"
	"time"

	"github.com/beam-project/beamq/pkg/errors"
)

// ErrMaxAttemptsExceeded indicates every retry attempt failed.
var ErrMaxAttemptsExceeded = errors.New(errors.CategoryDataStore,
	"MAX_ATTEMPTS_EXCEEDED", "maximum retry attempts exceeded")

// Retry executes the function with retry logic.
func Retry(ctx context.Context, config *RetryConfig, fn Executor) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if config.ShouldRetry != nil && !config.ShouldRetry(err) {
			return err
		}

		// Last attempt - don't wait
		if attempt == config.MaxAttempts {
			break
		}

		if config.OnRetry != nil {
			config.OnRetry(attempt, err)
		}

		delay := time.Duration(0)
		if config.Backoff != nil {
			delay = config.Backoff(attempt)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return ErrMaxAttemptsExceeded.Wrap(lastErr)
}

// ConstantBackoff creates a backoff strategy with constant delay.
func ConstantBackoff(delay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		return delay
	}
}

// LinearBackoff creates a backoff strategy with linear increase.
func LinearBackoff(base time.Duration, max time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		delay := base * time.Duration(attempt)
		if delay > max {
			delay = max
		}
		return delay
	}
}

// ExponentialBackoff creates a backoff strategy with exponential
// increase.
func ExponentialBackoff(base time.Duration, multiplier float64,
	max time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		delay := float64(base) * math.Pow(multiplier, float64(attempt-1))
		duration := time.Duration(delay)
		if duration > max {
			duration = max
		}
		return duration
	}
}

// DefaultShouldRetry retries on any error except a closed component.
func DefaultShouldRetry(err error) bool {
	return err != nil && !errors.IsNotConnected(err)
}

// NeverRetry never retries.
func NeverRetry(err error) bool {
	return false
}
