// Package importer backfills long-term statistics from the vendor's
// historical interval readings.
//
// Each metering point has an ImportCursor. An import is attempted at most
// once per refresh threshold; the window runs from just after the newest
// committed sample (or a bounded lookback on the first import) up to now.
// The cursor only moves after the sink has acknowledged the write, so a
// failed or cancelled import simply retries the same window next time.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/wnsm-sync/internal/database"
	"github.com/tejusbharadwaj/wnsm-sync/internal/metrics"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

const (
	DefaultRefreshThreshold = 24 * time.Hour
	DefaultLookback         = 30 * 24 * time.Hour
	DefaultUnit             = "kWh"
)

// Outcome is the non-error result of an import attempt.
type Outcome int

const (
	// Skipped means the cursor was fresh enough and nothing was fetched.
	Skipped Outcome = iota
	// Imported means a window was fetched, written and the cursor advanced.
	Imported
)

func (o Outcome) String() string {
	if o == Imported {
		return "imported"
	}
	return "skipped"
}

// ReadingFetcher returns the interval samples of a point within [start, end).
type ReadingFetcher interface {
	IntervalReadings(ctx context.Context, id string, start, end time.Time) ([]models.ReadingSample, error)
}

type Importer struct {
	fetcher ReadingFetcher
	sink    database.StatisticsSink
	cursors database.CursorStore
	logger  *logrus.Logger
	metrics *metrics.Metrics

	refreshThreshold time.Duration
	lookback         time.Duration
	now              func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

type Option func(*Importer)

func WithRefreshThreshold(d time.Duration) Option {
	return func(i *Importer) {
		if d > 0 {
			i.refreshThreshold = d
		}
	}
}

// WithLookback bounds the window of the first import of a point.
func WithLookback(d time.Duration) Option {
	return func(i *Importer) {
		if d > 0 {
			i.lookback = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

func New(fetcher ReadingFetcher, sink database.StatisticsSink, cursors database.CursorStore, logger *logrus.Logger, opts ...Option) *Importer {
	i := &Importer{
		fetcher:          fetcher,
		sink:             sink,
		cursors:          cursors,
		logger:           logger,
		refreshThreshold: DefaultRefreshThreshold,
		lookback:         DefaultLookback,
		now:              time.Now,
		locks:            make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import brings the statistics of point up to date. Skipped is returned
// without any remote call when the last import is younger than the refresh
// threshold. On error the cursor is left untouched.
//
// A window that yields no usable samples still counts as Imported: the cursor's
// ImportedThrough moves to now, which only restarts the refresh threshold,
// while LastSample stays put so the next window still begins after the last
// committed sample.
func (i *Importer) Import(ctx context.Context, point models.MeteringPoint) (Outcome, error) {
	lock := i.pointLock(point.ID)
	lock.Lock()
	defer lock.Unlock()

	outcome, inserted, err := i.importLocked(ctx, point)
	switch {
	case err != nil:
		i.metrics.ObserveImport(metrics.ImportError, 0)
	case outcome == Skipped:
		i.metrics.ObserveImport(metrics.ImportSkipped, 0)
	default:
		i.metrics.ObserveImport(metrics.ImportImported, inserted)
	}
	return outcome, err
}

func (i *Importer) importLocked(ctx context.Context, point models.MeteringPoint) (Outcome, int, error) {
	now := i.now()
	log := i.logger.WithField("point_id", point.ID)

	cursor, ok, err := i.cursors.GetCursor(ctx, point.ID)
	if err != nil {
		return Skipped, 0, fmt.Errorf("failed to load import cursor: %w", err)
	}
	if ok && now.Sub(cursor.ImportedThrough) < i.refreshThreshold {
		log.WithField("imported_through", cursor.ImportedThrough).Debug("historical import is fresh, skipping")
		return Skipped, 0, nil
	}
	if !ok {
		cursor = models.ImportCursor{PointID: point.ID}
	}

	step := point.Granularity.Step()
	start, end := Window(cursor, now, step, i.lookback)
	if !start.Before(end) {
		return Skipped, 0, nil
	}
	log = log.WithFields(logrus.Fields{
		"window_start": start,
		"window_end":   end,
	})

	samples, err := i.fetcher.IntervalReadings(ctx, point.ID, start, end)
	if err != nil {
		return Skipped, 0, fmt.Errorf("failed to fetch historical window: %w", err)
	}

	window := models.HistoricalWindow{Start: start, End: end, Samples: samples}
	clean := Normalize(window, step, cursor)
	if dropped := len(samples) - len(clean); dropped > 0 {
		log.WithField("dropped", dropped).Warn("discarded anomalous historical samples")
	}

	unit := point.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	inserted := 0
	if len(clean) > 0 {
		inserted, err = i.sink.UpsertStatistics(ctx, point.ID, unit, ToStatPoints(clean, step, cursor))
		if err != nil {
			return Skipped, 0, fmt.Errorf("failed to write statistics: %w", err)
		}
	}

	next := models.ImportCursor{
		PointID:         point.ID,
		ImportedThrough: end,
		LastSample:      cursor.LastSample,
		LastValue:       cursor.LastValue,
	}
	if n := len(clean); n > 0 {
		next.LastSample = clean[n-1].Time
		next.LastValue = clean[n-1].Value
	}
	if err := i.cursors.SaveCursor(ctx, next); err != nil {
		return Skipped, inserted, fmt.Errorf("failed to save import cursor: %w", err)
	}

	log.WithFields(logrus.Fields{
		"samples":  len(clean),
		"inserted": inserted,
	}).Info("historical import complete")
	return Imported, inserted, nil
}

func (i *Importer) pointLock(id string) *sync.Mutex {
	i.locksMu.Lock()
	defer i.locksMu.Unlock()
	l, ok := i.locks[id]
	if !ok {
		l = &sync.Mutex{}
		i.locks[id] = l
	}
	return l
}

// Window returns the half-open import range for a point. It starts one step
// after the newest committed sample, or lookback before now aligned down to
// the step when nothing was committed yet, and ends at now.
func Window(cursor models.ImportCursor, now time.Time, step, lookback time.Duration) (time.Time, time.Time) {
	if !cursor.LastSample.IsZero() {
		return cursor.LastSample.Add(step), now
	}
	return now.Add(-lookback).Truncate(step), now
}

// Normalize orders the window's samples and drops what cannot be trusted:
// duplicates, samples outside [Start, End), samples off the step grid and
// samples lower than the value before them.
func Normalize(window models.HistoricalWindow, step time.Duration, cursor models.ImportCursor) []models.ReadingSample {
	samples := make([]models.ReadingSample, len(window.Samples))
	copy(samples, window.Samples)
	sort.SliceStable(samples, func(a, b int) bool { return samples[a].Time.Before(samples[b].Time) })

	hasPrev := !cursor.LastSample.IsZero()
	prev := models.ReadingSample{Time: cursor.LastSample, Value: cursor.LastValue}

	out := samples[:0]
	for _, s := range samples {
		if s.Time.Before(window.Start) || !s.Time.Before(window.End) {
			continue
		}
		if !s.Time.Truncate(step).Equal(s.Time) {
			continue
		}
		if hasPrev && !s.Time.After(prev.Time) {
			continue
		}
		// cumulative register, a drop is a vendor anomaly
		if hasPrev && s.Value < prev.Value {
			continue
		}
		out = append(out, s)
		prev, hasPrev = s, true
	}
	return out
}

// ToStatPoints converts normalized samples into statistic points. Usage is
// only set when the slot directly before a sample is known; a gap leaves it
// nil.
func ToStatPoints(samples []models.ReadingSample, step time.Duration, cursor models.ImportCursor) []models.StatPoint {
	points := make([]models.StatPoint, 0, len(samples))

	hasPrev := !cursor.LastSample.IsZero()
	prev := models.ReadingSample{Time: cursor.LastSample, Value: cursor.LastValue}

	for _, s := range samples {
		p := models.StatPoint{Start: s.Time, State: s.Value}
		if hasPrev && s.Time.Sub(prev.Time) == step {
			usage := s.Value - prev.Value
			p.Usage = &usage
		}
		points = append(points, p)
		prev, hasPrev = s, true
	}
	return points
}
