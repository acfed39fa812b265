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

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
)

// RedisConfig contains Redis connection configuration.
type RedisConfig struct {
	// Address is the Redis server address (host:port).
	// Default: "localhost:6379"
	Address string

	// Password is the Redis password.
	// Default: "" (no password)
	Password string

	// DB is the Redis database number.
	// Default: 0
	DB int

	// KeyPrefix prefixes every sorted set key.
	// Default: "beamq"
	KeyPrefix string

	// PoolSize is the maximum number of socket connections.
	// Default: 10 connections per CPU
	PoolSize int

	// MinIdleConns is the minimum number of idle connections.
	// Default: 2
	MinIdleConns int

	// MaxRetries is the maximum number of retries before giving up.
	// Default: 3
	MaxRetries int

	// DialTimeout is the timeout for establishing new connections.
	// Default: 5 seconds
	DialTimeout time.Duration

	// ReadTimeout is the timeout for socket reads.
	// Default: 3 seconds
	ReadTimeout time.Duration

	// WriteTimeout is the timeout for socket writes.
	// Default: 3 seconds
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Address:      "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    "beamq",
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisDataStore is a DataStore backed by Redis sorted sets. Each index
// maps to one sorted set whose members are prefixed with the 16-digit
// hexadecimal sequence ordinal, so lexicographic member order equals
// sequence order. Timestamp endpoints resolve through the sequence
// timestamp encoding, so the store expects sequencer-assigned sequences.
type RedisDataStore[T any, I comparable] struct {
	client  *redis.Client
	prefix  string
	options Options[T]
	codec   Codec[T]
}

// NewRedisDataStore opens a Redis backed store.
func NewRedisDataStore[T any, I comparable](config *RedisConfig,
	options Options[T], codec Codec[T]) (*RedisDataStore[T, I], error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.ErrDataStore.Wrap(err).
			WithMessage("failed to connect to redis")
	}
	return &RedisDataStore[T, I]{
		client:  client,
		prefix:  config.KeyPrefix,
		options: options,
		codec:   codec,
	}, nil
}

func (s *RedisDataStore[T, I]) key(index I) string {
	return fmt.Sprintf("%s:%v", s.prefix, index)
}

// member renders a record as a lexicographically ordered set member.
func (s *RedisDataStore[T, I]) member(
	sequence queries.Sequence, payload []byte) string {
	return fmt.Sprintf("%016x:%s", uint64(sequence), payload)
}

// parseMember splits a member into its sequence and payload.
func (s *RedisDataStore[T, I]) parseMember(member string) (
	queries.Sequence, T, error) {
	var zero T
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return 0, zero, errors.ErrSerialization.
			WithMessage("malformed sorted set member")
	}
	ordinal, err := strconv.ParseUint(parts[0], 16, 64)
	if err != nil {
		return 0, zero, errors.ErrSerialization.Wrap(err)
	}
	payload, err := s.codec.Unmarshal([]byte(parts[1]))
	if err != nil {
		return 0, zero, err
	}
	return queries.Sequence(ordinal), payload, nil
}

// lexBounds converts the resolved sequence interval into lex range bounds.
func lexBounds(start, end queries.Sequence) (string, string) {
	min := fmt.Sprintf("[%016x", uint64(start))
	var max string
	if end == queries.SequenceLast {
		max = "+"
	} else {
		max = fmt.Sprintf("(%016x", uint64(end)+1)
	}
	return min, max
}

// resolveRedisPoint maps a range endpoint onto a sequence through the timestamp
// encoding.
func resolveRedisPoint(point queries.RangePoint, isStart bool) queries.Sequence {
	if point.IsSequence() {
		return point.Sequence()
	}
	if isStart {
		return queries.EncodeTimestamp(point.Timestamp(), 0)
	}
	next := queries.EncodeTimestamp(
		point.Timestamp().Add(time.Millisecond), 0)
	return next.Prev()
}

// Load answers a query from the index's sorted set.
func (s *RedisDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if query.Range.IsEmpty() || query.SnapshotLimit.IsNone() {
		return nil, nil
	}
	start := resolveRedisPoint(query.Range.Start(), true)
	end := resolveRedisPoint(query.Range.End(), false)
	if start > end {
		return nil, nil
	}
	min, max := lexBounds(start, end)

	filter, err := s.options.CompileFilter(query.Filter)
	if err != nil {
		return nil, err
	}
	// The limit is only pushed down when no filter can reject rows.
	var count int64
	if query.Filter == nil && !query.SnapshotLimit.IsUnlimited() {
		count = int64(query.SnapshotLimit.Size())
	}

	tail := query.SnapshotLimit.Type() == queries.LimitTail
	var members []string
	if tail {
		members, err = s.client.ZRevRangeByLex(ctx, s.key(query.Index),
			&redis.ZRangeBy{Min: min, Max: max, Count: count}).Result()
	} else {
		members, err = s.client.ZRangeByLex(ctx, s.key(query.Index),
			&redis.ZRangeBy{Min: min, Max: max, Count: count}).Result()
	}
	if err != nil {
		return nil, errors.ErrDataStore.Wrap(err)
	}

	var matches []queries.SequencedValue[T]
	for _, member := range members {
		sequence, payload, err := s.parseMember(member)
		if err != nil {
			return nil, err
		}
		if !filter(payload) {
			continue
		}
		matches = append(matches,
			queries.SequencedValue[T]{Value: payload, Sequence: sequence})
		if !query.SnapshotLimit.IsUnlimited() &&
			len(matches) == query.SnapshotLimit.Size() {
			break
		}
	}
	if tail {
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}
	return matches, nil
}

// Store adds a record to its index's sorted set.
func (s *RedisDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	payload, err := s.codec.Marshal(value.Value)
	if err != nil {
		return err
	}
	err = s.client.ZAdd(ctx, s.key(value.Index), redis.Z{
		Score:  0,
		Member: s.member(value.Sequence, payload),
	}).Err()
	if err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}

// StoreAll adds a batch of records in one pipeline.
func (s *RedisDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	pipeline := s.client.Pipeline()
	for _, value := range values {
		payload, err := s.codec.Marshal(value.Value)
		if err != nil {
			return err
		}
		pipeline.ZAdd(ctx, s.key(value.Index), redis.Z{
			Score:  0,
			Member: s.member(value.Sequence, payload),
		})
	}
	if _, err := pipeline.Exec(ctx); err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}

// Close closes the client.
func (s *RedisDataStore[T, I]) Close(ctx context.Context) error {
	if err := s.client.Close(); err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}
