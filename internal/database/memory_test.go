package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

func ptr(v float64) *float64 { return &v }

func statRange(start time.Time, n int, first float64) []models.StatPoint {
	points := make([]models.StatPoint, n)
	for i := range points {
		points[i] = models.StatPoint{
			Start: start.Add(time.Duration(i) * 15 * time.Minute),
			State: first + float64(i),
			Usage: ptr(1),
		}
	}
	return points
}

func TestMemoryStoreUpsertStatisticsOverlap(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	n, err := store.UpsertStatistics(ctx, "AT001", "kWh", statRange(start, 8, 100))
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	// second window overlaps the last four slots
	n, err = store.UpsertStatistics(ctx, "AT001", "kWh", statRange(start.Add(time.Hour), 8, 104))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	stats := store.Statistics("AT001")
	require.Len(t, stats, 12)
	for i := 1; i < len(stats); i++ {
		assert.True(t, stats[i].Start.After(stats[i-1].Start), "statistics must be strictly ordered")
	}

	// replaying the same batch is a no-op
	n, err = store.UpsertStatistics(ctx, "AT001", "kWh", statRange(start, 8, 100))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, store.Statistics("AT001"), 12)
}

func TestMemoryStoreUpsertStatisticsInvalid(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.UpsertStatistics(ctx, "", "kWh", nil)
	assert.ErrorIs(t, err, ErrEmptyPointID)

	_, err = store.UpsertStatistics(ctx, "AT001", "kWh", []models.StatPoint{{State: 1}})
	assert.ErrorIs(t, err, ErrInvalidStat)
	assert.Empty(t, store.Statistics("AT001"))
}

func TestMemoryStoreCurrentValue(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SetCurrentValue(ctx, "AT001", ptr(1234.5), map[string]interface{}{"isActive": true}))
	st, ok := store.State("AT001")
	require.True(t, ok)
	assert.True(t, st.Available)
	assert.Equal(t, 1234.5, *st.Value)

	require.NoError(t, store.MarkUnavailable(ctx, "AT001", "timeout"))
	st, _ = store.State("AT001")
	assert.False(t, st.Available)
	assert.Equal(t, "timeout", st.Reason)

	// attributes only keep the previous value
	require.NoError(t, store.SetCurrentValue(ctx, "AT001", nil, map[string]interface{}{"isActive": true}))
	st, _ = store.State("AT001")
	assert.True(t, st.Available)
	assert.Empty(t, st.Reason)
	require.NotNil(t, st.Value)
	assert.Equal(t, 1234.5, *st.Value)

	assert.ErrorIs(t, store.MarkUnavailable(ctx, "", "x"), ErrEmptyPointID)
}

func TestMemoryStoreCurrentValueNeverLowered(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, v := range []float64{100, 90, 120} {
		require.NoError(t, store.SetCurrentValue(ctx, "AT001", ptr(v), map[string]interface{}{"reading": v}))
	}
	st, _ := store.State("AT001")
	require.NotNil(t, st.Value)
	assert.Equal(t, 120.0, *st.Value)

	// a fresh guard in front of the store still cannot lower it
	sink, err := NewMonotonicSink(store, 8, quietLogger())
	require.NoError(t, err)
	require.NoError(t, sink.SetCurrentValue(ctx, "AT001", ptr(50), nil))
	st, _ = store.State("AT001")
	assert.Equal(t, 120.0, *st.Value)
	assert.True(t, st.Available)
}

func TestMemoryStoreCursor(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.GetCursor(ctx, "AT001")
	require.NoError(t, err)
	assert.False(t, ok)

	cursor := models.ImportCursor{
		PointID:         "AT001",
		ImportedThrough: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		LastSample:      time.Date(2024, 3, 1, 23, 45, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveCursor(ctx, cursor))

	got, ok, err := store.GetCursor(ctx, "AT001")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cursor, got)

	assert.ErrorIs(t, store.SaveCursor(ctx, models.ImportCursor{}), ErrEmptyPointID)
}
