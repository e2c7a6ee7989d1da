package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisight/agrisight/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 100)
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusPending, run.Status)
	assert.InDelta(t, 100, run.FarmSizeHa, 0.001)

	run.WeatherSummary = "2019: Avg Temp 25.0°C"
	run.Demo = true
	run.Recommendation = []byte(`{"watering":{"schedule":"weekly"}}`)
	run.Report = []byte(`{"farmSize":100}`)
	require.NoError(t, s.CompleteRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.Equal(t, "2019: Avg Temp 25.0°C", got.WeatherSummary)
	assert.True(t, got.Demo)
	assert.JSONEq(t, `{"watering":{"schedule":"weekly"}}`, string(got.Recommendation))
	assert.JSONEq(t, `{"farmSize":100}`, string(got.Report))
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
}

func TestFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, 50)
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Empty(t, got.Recommendation)
}

func TestGetRunMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRun(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, s.FailRun(context.Background(), "no-such-id"))
}

func TestListRunsFilterAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		run, err := s.CreateRun(ctx, 10)
		require.NoError(t, err)
		if i == 0 {
			require.NoError(t, s.FailRun(ctx, run.ID))
		}
	}

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	failed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	assert.Len(t, failed, 1)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDocuments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveDocument(ctx, "records-2023.txt", "harvest notes")
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, "records-2024.txt", "more notes")
	require.NoError(t, err)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "records-2023.txt", docs[0].Filename)
	assert.Equal(t, "harvest notes", docs[0].Content)
}

func TestParcels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SaveParcels(ctx, []model.Parcel{
		{Name: "North Field", AreaHa: 42.5, CentroidLat: -6.37, CentroidLon: 34.89},
		{Name: "East Field", AreaHa: 12.1, CentroidLat: -6.38, CentroidLon: 34.91},
	})
	require.NoError(t, err)

	parcels, err := s.ListParcels(ctx)
	require.NoError(t, err)
	require.Len(t, parcels, 2)
	// Ordered by name.
	assert.Equal(t, "East Field", parcels[0].Name)
	assert.Equal(t, "North Field", parcels[1].Name)
	assert.NotEmpty(t, parcels[0].ID)
	assert.InDelta(t, 12.1, parcels[0].AreaHa, 0.001)
}
