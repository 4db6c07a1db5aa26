package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/cellar"
	wsevents "github.com/aretw0/cellar/pkg/adapters/lifecycle"
)

var (
	watchNoExport bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Watch the workspace and keep .py exports in sync",
	Long: `Watch prints every notebook change in the workspace. Whenever an
.ipynb file changes, its py:percent sibling is rewritten next to it, so
script exports always track the container.

An optional doublestar pattern (e.g. '**/*.ipynb') narrows the watch.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		service, err := cellar.New(workspaceDir(),
			cellar.WithMustExist(true),
			cellar.WithLogger(slog.Default()),
		)
		if err != nil {
			fatal("Failed to initialize workspace", err)
		}

		events, err := service.Watch(ctx, pattern)
		if err != nil {
			fatal("Failed to start watcher", err)
		}

		exportScript := func(id string) {
			nb, err := service.GetNotebook(ctx, id)
			if err != nil {
				slog.Warn("script export failed", "id", id, "error", err)
				return
			}
			sibling := strings.TrimSuffix(id, ".ipynb") + ".py"
			if err := service.SaveNotebook(ctx, sibling, nb); err != nil {
				slog.Warn("script export failed", "id", sibling, "error", err)
				return
			}
			fmt.Printf("  exported %s\n", sibling)
		}

		handle := func(ev cellar.Event) {
			fmt.Println(ev.String())
			if watchNoExport || ev.Type == cellar.EventDelete || !strings.HasSuffix(ev.ID, ".ipynb") {
				return
			}
			exportScript(ev.ID)
		}

		// Catch up on changes made while nothing was watching. The
		// backlog replays through the same stream as the live feed.
		missed, err := service.Reconcile(ctx)
		if err != nil {
			slog.Warn("reconcile failed", "error", err)
		}
		stream := wsevents.NewSource(missed, events)
		if err := stream.Start(ctx); err != nil {
			fatal("Failed to start event stream", err)
		}

		fmt.Println("Watching for changes. Ctrl+C to stop.")
		for e := range stream.Events() {
			ev, ok := e.(cellar.Event)
			if !ok {
				continue
			}
			handle(ev)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchNoExport, "no-export", false, "Only print events, do not rewrite .py siblings")
}
