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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beam-project/beamq/config"
	"github.com/beam-project/beamq/observability/logging"
	"github.com/beam-project/beamq/observability/metrics"
	"github.com/beam-project/beamq/queries"
)

var (
	loadConfig string
	loadStart  uint64
	loadEnd    uint64
	loadHead   int
	loadTail   int
	loadFilter string
)

var loadCmd = &cobra.Command{
	Use:   "load <index>",
	Short: "Load a historical snapshot of an index",
	Long: `Load the records of an index matching a range, snapshot limit and
optional filter expression (serialized JSON).

Example:
  beamq load eurusd --start 1 --end 500 --head 10
  beamq load eurusd --filter '{"type":"constant","value":{"type":"bool","value":true}}'`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadConfig, "config", "c", "config.yaml",
		"Path to configuration file")
	loadCmd.Flags().Uint64Var(&loadStart, "start", 0,
		"Start sequence (0 selects the first)")
	loadCmd.Flags().Uint64Var(&loadEnd, "end", uint64(queries.SequenceLast),
		"End sequence")
	loadCmd.Flags().IntVar(&loadHead, "head", 0,
		"Keep the first N matches")
	loadCmd.Flags().IntVar(&loadTail, "tail", 0,
		"Keep the last N matches")
	loadCmd.Flags().StringVar(&loadFilter, "filter", "",
		"Serialized filter expression")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(loadConfig)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	m := metrics.NewStoreMetrics()
	serveMetrics(cfg, m)

	stack, err := buildStack(cfg, m)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer stack.Close(ctx)

	query, err := buildQuery(args[0])
	if err != nil {
		return err
	}
	matches, err := stack.Load(ctx, query)
	if err != nil {
		logger.Error(ctx, "load failed",
			logging.String("index", args[0]), logging.Error(err))
		return err
	}
	for _, match := range matches {
		fmt.Printf("%d\t%s\n", match.Sequence, match.Value)
	}
	logger.Info(ctx, "load complete",
		logging.String("index", args[0]), logging.Int("count", len(matches)))
	return nil
}

// buildQuery assembles the query from the load command's flags.
func buildQuery(index string) (queries.Query[string], error) {
	query := queries.NewQuery(index)
	r, err := queries.NewSequenceRange(
		queries.Sequence(loadStart), queries.Sequence(loadEnd))
	if err != nil {
		return query, err
	}
	query.Range = r
	switch {
	case loadHead > 0:
		query.SnapshotLimit = queries.NewSnapshotLimit(
			queries.LimitHead, loadHead)
	case loadTail > 0:
		query.SnapshotLimit = queries.NewSnapshotLimit(
			queries.LimitTail, loadTail)
	}
	if loadFilter != "" {
		filter, err := queries.UnmarshalExpression([]byte(loadFilter))
		if err != nil {
			return query, err
		}
		query.Filter = filter
	}
	return query, nil
}
