//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/database"
	"github.com/tejusbharadwaj/wnsm-sync/internal/importer"
	"github.com/tejusbharadwaj/wnsm-sync/internal/metrics"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
	"github.com/tejusbharadwaj/wnsm-sync/internal/poller"
	"github.com/tejusbharadwaj/wnsm-sync/internal/session"
)

var logger = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}()

// Helper function to get environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func connString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "smartmeter"),
		getEnvOrDefault("DB_PASSWORD", "smartmeter"),
		getEnvOrDefault("DB_NAME", "smartmeter"),
	)
}

func setupTestDB(t *testing.T) *database.PostgresRepo {
	t.Helper()

	repo, err := database.NewPostgresRepo(connString())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.Migrate(context.Background()))

	// Clean up any existing test data
	db, err := sql.Open("postgres", connString())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("TRUNCATE TABLE point_state, point_statistics, import_cursors")
	require.NoError(t, err)

	return repo
}

func quarterHours(start time.Time, n int, first float64) []models.StatPoint {
	points := make([]models.StatPoint, n)
	for i := range points {
		p := models.StatPoint{Start: start.Add(time.Duration(i) * 15 * time.Minute), State: first + float64(i)}
		if i > 0 {
			usage := 1.0
			p.Usage = &usage
		}
		points[i] = p
	}
	return points
}

func TestUpsertStatisticsIsIdempotent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	inserted, err := repo.UpsertStatistics(ctx, "AT001", "kWh", quarterHours(start, 8, 100))
	require.NoError(t, err)
	assert.Equal(t, 8, inserted)

	inserted, err = repo.UpsertStatistics(ctx, "AT001", "kWh", quarterHours(start.Add(time.Hour), 8, 104))
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	stats, err := repo.Statistics(ctx, "AT001", start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 12)
	assert.Nil(t, stats[0].Usage)
	require.NotNil(t, stats[1].Usage)
	assert.Equal(t, 1.0, *stats[1].Usage)

	// a different point does not collide
	inserted, err = repo.UpsertStatistics(ctx, "AT002", "kWh", quarterHours(start, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestPointState(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	value := 1234.5
	require.NoError(t, repo.SetCurrentValue(ctx, "AT001", &value, map[string]interface{}{"isActive": true}))
	require.NoError(t, repo.MarkUnavailable(ctx, "AT001", "timeout"))

	st, ok, err := repo.State(ctx, "AT001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, st.Available)
	assert.Equal(t, "timeout", st.Reason)

	require.NoError(t, repo.SetCurrentValue(ctx, "AT001", nil, map[string]interface{}{"isActive": true}))
	st, _, err = repo.State(ctx, "AT001")
	require.NoError(t, err)
	assert.True(t, st.Available)
	require.NotNil(t, st.Value)
	assert.Equal(t, 1234.5, *st.Value)
	assert.Equal(t, true, st.Attributes["isActive"])

	// a lower reading never replaces the stored one
	lower := 1000.0
	require.NoError(t, repo.SetCurrentValue(ctx, "AT001", &lower, map[string]interface{}{"isActive": true}))
	st, _, err = repo.State(ctx, "AT001")
	require.NoError(t, err)
	assert.Equal(t, 1234.5, *st.Value)

	_, ok, err = repo.State(ctx, "AT404")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCursorPersistence(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := repo.GetCursor(ctx, "AT001")
	require.NoError(t, err)
	assert.False(t, ok)

	cursor := models.ImportCursor{
		PointID:         "AT001",
		ImportedThrough: time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC),
		LastSample:      time.Date(2024, 3, 1, 23, 45, 0, 0, time.UTC),
		LastValue:       4242.25,
	}
	require.NoError(t, repo.SaveCursor(ctx, cursor))

	got, ok, err := repo.GetCursor(ctx, "AT001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cursor.ImportedThrough.Equal(got.ImportedThrough))
	assert.True(t, cursor.LastSample.Equal(got.LastSample))
	assert.Equal(t, cursor.LastValue, got.LastValue)
}

// vendorAPI serves quarter-hour readings up to the start of the current UTC
// day, mimicking the vendor's data lag.
type vendorAPI struct {
	readingCalls atomic.Int32
	origin       time.Time
	until        time.Time
}

func (v *vendorAPI) valueAt(ts time.Time) float64 {
	return 1000 + ts.Sub(v.origin).Hours()
}

func (v *vendorAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "integration"})
	})
	mux.HandleFunc("/zaehlpunkte/AT001", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"isActive": true, "granularity": "QUARTER_HOUR"})
	})
	mux.HandleFunc("/zaehlpunkte/AT002", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"isActive": false})
	})
	mux.HandleFunc("/zaehlpunkte/AT001/messwerte", func(w http.ResponseWriter, r *http.Request) {
		v.readingCalls.Add(1)
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		end, _ := time.Parse(time.RFC3339, r.URL.Query().Get("end"))

		type point struct {
			Time  int64   `json:"time"`
			Value float64 `json:"value"`
		}
		var result []point
		for ts := v.origin; ts.Before(v.until); ts = ts.Add(15 * time.Minute) {
			if !ts.Before(start) && ts.Before(end) {
				result = append(result, point{Time: ts.Unix(), Value: v.valueAt(ts)})
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": result})
	})
	return mux
}

func TestFullCycleAgainstVendorAPI(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	vendor := &vendorAPI{origin: today.Add(-72 * time.Hour), until: today}
	ts := httptest.NewServer(vendor.handler())
	defer ts.Close()

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	sink, err := database.NewMonotonicSink(repo, 16, logger)
	require.NoError(t, err)

	client := api.NewClient(ts.URL, "user", "pass", api.WithHTTPClient(api.NewHTTPClient(5*time.Second)))
	sess := session.New(client, logger)
	imp := importer.New(sess, sink, repo, logger, importer.WithLookback(48*time.Hour), importer.WithMetrics(m))
	p := poller.New(sess, imp, sink, logger, poller.Config{
		Points: []models.MeteringPoint{
			{ID: "AT001", Unit: "kWh"},
			{ID: "AT002", Unit: "kWh"},
		},
		Location: time.UTC,
	}, poller.WithMetrics(m))

	results, err := p.RunCycle(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	latest := today.Add(-15 * time.Minute)
	require.NotNil(t, results["AT001"].Reading)
	assert.True(t, latest.Equal(results["AT001"].Reading.Time))
	assert.Equal(t, vendor.valueAt(latest), results["AT001"].Reading.Value)
	assert.Nil(t, results["AT002"].Reading)
	assert.Equal(t, int32(2), vendor.readingCalls.Load())

	st, ok, err := repo.State(ctx, "AT001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vendor.valueAt(latest), *st.Value)

	stats, err := repo.Statistics(ctx, "AT001", vendor.origin, today)
	require.NoError(t, err)
	assert.NotEmpty(t, stats)
	first := len(stats)

	// the second cycle polls the reading but skips the import
	_, err = p.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(3), vendor.readingCalls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Imports.WithLabelValues(metrics.ImportSkipped)))

	stats, err = repo.Statistics(ctx, "AT001", vendor.origin, today)
	require.NoError(t, err)
	assert.Len(t, stats, first)
}
