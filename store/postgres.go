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
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/beam-project/beamq/pkg/errors"
	"github.com/beam-project/beamq/queries"
)

// PostgresConfig contains PostgreSQL connection configuration.
type PostgresConfig struct {
	// Host is the PostgreSQL server host.
	// Default: "localhost"
	Host string

	// Port is the PostgreSQL server port.
	// Default: 5432
	Port int

	// User is the PostgreSQL user.
	// Default: "postgres"
	User string

	// Password is the PostgreSQL password.
	// Default: ""
	Password string

	// Database is the PostgreSQL database name.
	// Default: "beamq"
	Database string

	// SSLMode is the SSL mode for connection.
	// Options: "disable", "require", "verify-ca", "verify-full"
	// Default: "disable"
	SSLMode string

	// TableName is the name of the table to store records.
	// Default: "beamq_records"
	TableName string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 25
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// AutoMigrate automatically creates the table if it doesn't exist.
	// Default: true
	AutoMigrate bool
}

// DefaultPostgresConfig returns the default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "",
		Database:        "beamq",
		SSLMode:         "disable",
		TableName:       "beamq_records",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		AutoMigrate:     true,
	}
}

// PostgresDataStore is a DataStore backed by PostgreSQL. Each record is
// one row keyed by (index, sequence); simple filters are translated into
// SQL conditions and pushed down, everything else is filtered in memory.
type PostgresDataStore[T any, I comparable] struct {
	db       *sql.DB
	table    string
	options  Options[T]
	codec    Codec[T]
	indexKey func(I) string
}

// NewPostgresDataStore opens a PostgreSQL backed store.
func NewPostgresDataStore[T any, I comparable](config *PostgresConfig,
	options Options[T], codec Codec[T]) (*PostgresDataStore[T, I], error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host,
		config.Port,
		config.User,
		config.Password,
		config.Database,
		config.SSLMode,
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.ErrDataStore.Wrap(err).
			WithMessage("failed to open database")
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.ErrDataStore.Wrap(err).
			WithMessage("failed to connect to database")
	}

	s := &PostgresDataStore[T, I]{
		db:      db,
		table:   config.TableName,
		options: options,
		codec:   codec,
		indexKey: func(index I) string {
			return fmt.Sprint(index)
		},
	}
	if config.AutoMigrate {
		if err := s.migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *PostgresDataStore[T, I]) migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			idx TEXT NOT NULL,
			seq NUMERIC(20, 0) NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (idx, seq)
		)`, s.table)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.ErrDataStore.Wrap(err).
			WithMessage("failed to create table")
	}
	return nil
}

// Store inserts a single record.
func (s *PostgresDataStore[T, I]) Store(
	ctx context.Context, value queries.IndexedValue[T, I]) error {
	payload, err := s.codec.Marshal(value.Value)
	if err != nil {
		return err
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (idx, seq, ts, payload) VALUES ($1, $2, $3, $4)",
		s.table)
	_, err = s.db.ExecContext(ctx, insert,
		s.indexKey(value.Index),
		strconv.FormatUint(uint64(value.Sequence), 10),
		s.options.timestampOf(value.Sequenced()),
		payload)
	if err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}

// StoreAll inserts a batch of records in one transaction.
func (s *PostgresDataStore[T, I]) StoreAll(
	ctx context.Context, values []queries.IndexedValue[T, I]) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	insert := fmt.Sprintf(
		"INSERT INTO %s (idx, seq, ts, payload) VALUES ($1, $2, $3, $4)",
		s.table)
	for _, value := range values {
		payload, err := s.codec.Marshal(value.Value)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, insert,
			s.indexKey(value.Index),
			strconv.FormatUint(uint64(value.Sequence), 10),
			s.options.timestampOf(value.Sequenced()),
			payload); err != nil {
			tx.Rollback()
			return errors.ErrDataStore.Wrap(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}

// Load answers a query with a single SELECT. Filters in the SQL
// translator's subset are pushed down; other filters are applied in
// memory after the scan.
func (s *PostgresDataStore[T, I]) Load(ctx context.Context,
	query queries.Query[I]) ([]queries.SequencedValue[T], error) {
	if query.Range.IsEmpty() || query.SnapshotLimit.IsNone() {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	args = append(args, s.indexKey(query.Index))
	conditions = append(conditions, "idx = $1")

	appendEndpoint := func(point queries.RangePoint, op string) {
		if point.IsSequence() {
			args = append(args,
				strconv.FormatUint(uint64(point.Sequence()), 10))
			conditions = append(conditions,
				fmt.Sprintf("seq %s $%d", op, len(args)))
		} else {
			args = append(args, point.Timestamp())
			conditions = append(conditions,
				fmt.Sprintf("ts %s $%d", op, len(args)))
		}
	}
	appendEndpoint(query.Range.Start(), ">=")
	appendEndpoint(query.Range.End(), "<=")

	pushedDown := true
	filterSQL, filterArgs, err := TranslateSQL(
		"payload", len(args)+1, query.Filter)
	if err != nil {
		if !errors.IsTranslation(err) {
			return nil, err
		}
		pushedDown = false
	} else if filterSQL != "" {
		conditions = append(conditions, filterSQL)
		args = append(args, filterArgs...)
	}

	order := "ASC"
	if query.SnapshotLimit.Type() == queries.LimitTail {
		order = "DESC"
	}
	statement := fmt.Sprintf(
		"SELECT seq, payload FROM %s WHERE %s ORDER BY seq %s",
		s.table, strings.Join(conditions, " AND "), order)
	if pushedDown && !query.SnapshotLimit.IsUnlimited() {
		statement += fmt.Sprintf(" LIMIT %d", query.SnapshotLimit.Size())
	}

	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, errors.ErrDataStore.Wrap(err)
	}
	defer rows.Close()

	var matches []queries.SequencedValue[T]
	for rows.Next() {
		var seqText string
		var payload []byte
		if err := rows.Scan(&seqText, &payload); err != nil {
			return nil, errors.ErrDataStore.Wrap(err)
		}
		ordinal, err := strconv.ParseUint(seqText, 10, 64)
		if err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		value, err := s.codec.Unmarshal(payload)
		if err != nil {
			return nil, err
		}
		matches = append(matches, queries.SequencedValue[T]{
			Value: value, Sequence: queries.Sequence(ordinal)})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDataStore.Wrap(err)
	}

	if query.SnapshotLimit.Type() == queries.LimitTail {
		for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
			matches[i], matches[j] = matches[j], matches[i]
		}
	}
	if !pushedDown {
		filter, err := s.options.CompileFilter(query.Filter)
		if err != nil {
			return nil, err
		}
		filtered := matches[:0]
		for _, match := range matches {
			if filter(match.Value) {
				filtered = append(filtered, match)
			}
		}
		matches = applyLimit(filtered, query.SnapshotLimit)
	}
	return matches, nil
}

// Close closes the connection pool.
func (s *PostgresDataStore[T, I]) Close(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.ErrDataStore.Wrap(err)
	}
	return nil
}
