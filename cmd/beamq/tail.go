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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beam-project/beamq/config"
	"github.com/beam-project/beamq/observability/logging"
	"github.com/beam-project/beamq/observability/metrics"
	"github.com/beam-project/beamq/pkg/types"
	"github.com/beam-project/beamq/pubsub"
	"github.com/beam-project/beamq/queries"
	"github.com/beam-project/beamq/store"
)

var (
	tailConfig   string
	tailSnapshot int
)

var tailCmd = &cobra.Command{
	Use:   "tail <index>",
	Short: "Follow an index's live updates",
	Long: `Deliver an index's most recent records followed by its live updates.

The snapshot and the live tail are spliced with duplicate suppression;
interrupt with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailConfig, "config", "c", "config.yaml",
		"Path to configuration file")
	tailCmd.Flags().IntVar(&tailSnapshot, "snapshot", 10,
		"Number of historical records delivered before the live tail")
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(tailConfig)
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
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer stack.Close(context.Background())

	publisher := pubsub.NewPublisher(stack, store.ValueOptions(),
		pubsub.WithLogger[types.Value, string](logger),
		pubsub.WithMetrics[types.Value, string](m))
	defer publisher.Close(context.Background())

	query := queries.NewQuery(args[0])
	query.SnapshotLimit = queries.NewSnapshotLimit(
		queries.LimitTail, tailSnapshot)
	queue := pubsub.NewQueue[types.Value](1024, pubsub.OverflowDrop)
	if err := publisher.Monitor(ctx, query, queue); err != nil {
		return err
	}
	logger.Info(ctx, "tailing", logging.String("index", args[0]))

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	for {
		value, err := queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Printf("%s\t%d\t%s\n",
			time.Now().UTC().Format(time.RFC3339), value.Sequence, value.Value)
	}
}
