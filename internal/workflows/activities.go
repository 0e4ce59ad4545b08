package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

// Activity names, as registered from RoadLengthActivities' methods.
const (
	ListRoadIDsActivity         = "ListRoadIDs"
	RecomputeRoadLengthActivity = "RecomputeRoadLength"
)

// RoadLengthActivities holds the activity implementations for the road
// length recompute workflow.
type RoadLengthActivities struct {
	Roads *usecases.RoadService
}

// ListRoadIDs returns the IDs of every road in a city.
func (a *RoadLengthActivities) ListRoadIDs(ctx context.Context, cityID string) ([]string, error) {
	ids, err := a.Roads.ListIDsByCity(ctx, cityID)
	if err != nil {
		return nil, fmt.Errorf("list roads of city %s: %w", cityID, err)
	}
	return ids, nil
}

// RecomputeRoadLength re-derives a road's segment lengths from its stored
// geometry. It reports whether the stored lengths changed.
func (a *RoadLengthActivities) RecomputeRoadLength(ctx context.Context, roadID string) (bool, error) {
	changed, err := a.Roads.RecomputeLengths(ctx, roadID)
	if err != nil {
		return false, fmt.Errorf("recompute road %s: %w", roadID, err)
	}
	if changed {
		metrics.RoadLengthsRecomputed.Inc()
		activity.GetLogger(ctx).Info("road lengths updated", "road_id", roadID)
	}
	return changed, nil
}
