package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/yangonmaps/citymap/internal/adapters/postgres"
	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/config"
	"github.com/yangonmaps/citymap/internal/pkg/logging"
	"github.com/yangonmaps/citymap/internal/workflows"
)

func main() {
	cfg, err := config.Load("citymap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "citymap-worker")

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	if len(os.Args) > 1 && os.Args[1] == "enqueue" {
		if len(os.Args) != 3 {
			log.Fatal("usage: worker enqueue <city_id>")
		}
		enqueue(c, cfg.Temporal.TaskQueue, os.Args[2])
		return
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Recompute writes lengths straight to the table; the API instances
	// expire their cached roads on their own TTL.
	roads := usecases.NewRoadService(postgres.NewRoadRepo(db), nil, nil)

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.RecomputeRoadLengthsWorkflow)
	w.RegisterActivity(&workflows.RoadLengthActivities{Roads: roads})

	slog.Info("road length worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// enqueue starts a recompute run for cityID and waits for its result.
func enqueue(c client.Client, queue, cityID string) {
	ctx := context.Background()
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflows.WorkflowID(cityID),
		TaskQueue:             queue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.RecomputeRoadLengthsWorkflow, workflows.RecomputeInput{CityID: cityID})
	if err != nil {
		log.Fatalf("start workflow: %v", err)
	}
	slog.Info("recompute started", "workflow_id", run.GetID(), "run_id", run.GetRunID())

	var result workflows.RecomputeResult
	if err := run.Get(ctx, &result); err != nil {
		log.Fatalf("workflow: %v", err)
	}
	slog.Info("recompute finished",
		"city_id", cityID,
		"checked", result.Checked,
		"updated", result.Updated,
		"failed", len(result.Failed),
	)
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}
