package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RecomputeBatchSize bounds how many road activities run at once.
const RecomputeBatchSize = 20

// RecomputeInput is the input for RecomputeRoadLengthsWorkflow.
type RecomputeInput struct {
	CityID string
}

// RecomputeResult summarizes a recompute run.
type RecomputeResult struct {
	Checked int      `json:"checked"`
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}

// WorkflowID is the workflow ID used for a city's recompute run, so that at
// most one runs per city at a time.
func WorkflowID(cityID string) string {
	return "recompute-road-lengths-" + cityID
}

// RecomputeRoadLengthsWorkflow re-derives length_m for every road of a city
// from its stored geometry. A road that keeps failing after retries is
// reported in the result instead of failing the run.
func RecomputeRoadLengthsWorkflow(ctx workflow.Context, input RecomputeInput) (RecomputeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting road length recompute", "city_id", input.CityID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	var result RecomputeResult

	var ids []string
	if err := workflow.ExecuteActivity(ctx, ListRoadIDsActivity, input.CityID).Get(ctx, &ids); err != nil {
		return result, err
	}

	for start := 0; start < len(ids); start += RecomputeBatchSize {
		batch := ids[start:min(start+RecomputeBatchSize, len(ids))]

		futures := make([]workflow.Future, len(batch))
		for i, id := range batch {
			futures[i] = workflow.ExecuteActivity(ctx, RecomputeRoadLengthActivity, id)
		}

		for i, f := range futures {
			var changed bool
			result.Checked++
			if err := f.Get(ctx, &changed); err != nil {
				logger.Warn("road recompute failed", "road_id", batch[i], "error", err)
				result.Failed = append(result.Failed, batch[i])
				continue
			}
			if changed {
				result.Updated++
			}
		}
	}

	logger.Info("Road length recompute finished",
		"city_id", input.CityID, "checked", result.Checked, "updated", result.Updated, "failed", len(result.Failed))
	return result, nil
}
