package workflows_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/workflows"
)

// roadStore is an in-memory ports.RoadRepository.
type roadStore struct {
	roads   map[string]*domain.Road
	order   []string
	failing map[string]bool
}

func newRoadStore() *roadStore {
	return &roadStore{roads: map[string]*domain.Road{}, failing: map[string]bool{}}
}

func (s *roadStore) add(r domain.Road) {
	s.roads[r.ID] = &r
	s.order = append(s.order, r.ID)
}

func (s *roadStore) Create(ctx context.Context, r *domain.Road) error { return nil }
func (s *roadStore) Update(ctx context.Context, r *domain.Road) error { return nil }
func (s *roadStore) Delete(ctx context.Context, id string) error      { return nil }

func (s *roadStore) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	if s.failing[id] {
		return nil, errors.New("connection reset")
	}
	r, ok := s.roads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *roadStore) List(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error) {
	var items []domain.Road
	for _, id := range s.order {
		if r := s.roads[id]; r.CityID == f.CityID {
			items = append(items, *r)
		}
	}
	total := len(items)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	return ports.Page[domain.Road]{Items: items[start:end], Total: total}, nil
}

func (s *roadStore) UpdateLengths(ctx context.Context, id string, lengths []float64) error {
	s.roads[id].SegmentLengths = lengths
	return nil
}

func TestRecomputeRoadLengthsWorkflow(t *testing.T) {
	store := newRoadStore()
	for i := 0; i < 25; i++ {
		lengths := []float64{111194.93}
		if i%5 == 0 {
			lengths = []float64{1} // stale
		}
		store.add(domain.Road{
			ID:             fmt.Sprintf("r%02d", i),
			CityID:         "c1",
			Geometry:       "LINESTRING(0 0, 0 1)",
			SegmentLengths: lengths,
		})
	}
	store.add(domain.Road{ID: "other", CityID: "c2", Geometry: "LINESTRING(0 0, 0 1)"})
	store.failing["r07"] = true

	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.RecomputeRoadLengthsWorkflow)
	env.RegisterActivity(&workflows.RoadLengthActivities{
		Roads: usecases.NewRoadService(store, nil, nil),
	})

	env.ExecuteWorkflow(workflows.RecomputeRoadLengthsWorkflow, workflows.RecomputeInput{CityID: "c1"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.RecomputeResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Equal(t, 25, result.Checked)
	assert.Equal(t, 5, result.Updated)
	assert.Equal(t, []string{"r07"}, result.Failed)

	assert.Equal(t, []float64{111194.93}, store.roads["r00"].SegmentLengths)
	assert.Nil(t, store.roads["other"].SegmentLengths, "roads of other cities are untouched")
}

func TestRecomputeRoadLengthsWorkflow_EmptyCity(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivity(&workflows.RoadLengthActivities{
		Roads: usecases.NewRoadService(newRoadStore(), nil, nil),
	})

	env.ExecuteWorkflow(workflows.RecomputeRoadLengthsWorkflow, workflows.RecomputeInput{CityID: "empty"})
	require.NoError(t, env.GetWorkflowError())

	var result workflows.RecomputeResult
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.Zero(t, result.Checked)
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "recompute-road-lengths-c1", workflows.WorkflowID("c1"))
}
