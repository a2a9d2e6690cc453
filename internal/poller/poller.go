//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/poller.go -package=mocks . Session,Importer

// Package poller runs one poll cycle over the configured metering points.
//
// A cycle is START → ENSURE_SESSION → (FAILED_AUTH | PER_POINT_LOOP) → DONE.
// A failed login aborts the cycle before any point is touched. Inside the
// loop every point is handled on its own: a transient failure becomes an
// error result for that point and the others carry on. Rejected credentials
// are the exception: they end the cycle wherever they surface. After the loop the
// complete result map is published to the sink and replaces the previous one.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/database"
	"github.com/tejusbharadwaj/wnsm-sync/internal/importer"
	"github.com/tejusbharadwaj/wnsm-sync/internal/metrics"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
	"github.com/tejusbharadwaj/wnsm-sync/internal/session"
)

// ErrCycleInProgress is returned when RunCycle is called while another cycle
// of the same poller is still running.
var ErrCycleInProgress = errors.New("poll cycle already in progress")

// TimestampFormat is the layout of the poll timestamp attribute.
const TimestampFormat = "02.01.2006 15:04:05"

// Attribute keys added on top of the point details.
const (
	AttrLastPoll    = "last_poll"
	AttrReadingTime = "reading_time"
)

// Session is the part of session.Session used by a cycle.
type Session interface {
	EnsureSession(ctx context.Context) error
	FetchPointDetails(ctx context.Context, id string) (models.PointDetails, error)
	IsActive(details models.PointDetails) bool
	LatestReading(ctx context.Context, id string, candidateDates []time.Time, now time.Time) (models.ReadingSample, bool, error)
	ActivePoints(ctx context.Context) ([]string, error)
}

// Importer backfills statistics for an active point.
type Importer interface {
	Import(ctx context.Context, point models.MeteringPoint) (importer.Outcome, error)
}

// Config controls which points a cycle visits and how.
type Config struct {
	Points []models.MeteringPoint
	// DiscoverPoints lists the account's active points when Points is empty.
	DiscoverPoints bool
	// Concurrency bounds how many points are processed at once; 1 is sequential.
	Concurrency int
	Location    *time.Location
	Unit        string
}

type Poller struct {
	session  Session
	importer Importer
	sink     database.StatisticsSink
	logger   *logrus.Logger
	metrics  *metrics.Metrics
	cfg      Config
	now      func() time.Time

	cycleMu sync.Mutex

	resultsMu sync.RWMutex
	last      map[string]models.PollResult
}

type Option func(*Poller)

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

func New(s Session, imp Importer, sink database.StatisticsSink, logger *logrus.Logger, cfg Config, opts ...Option) *Poller {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Unit == "" {
		cfg.Unit = importer.DefaultUnit
	}
	p := &Poller{
		session:  s,
		importer: imp,
		sink:     sink,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunCycle polls every point once and publishes the results.
//
// If the session cannot be established, before or during the per-point loop,
// the error is returned together with a nil map, the remaining points are
// abandoned and nothing is published. A cancelled ctx abandons in-flight
// work and also publishes nothing.
func (p *Poller) RunCycle(ctx context.Context) (map[string]models.PollResult, error) {
	if !p.cycleMu.TryLock() {
		p.metrics.ObserveCycle(metrics.CycleOverlapped, 0)
		return nil, ErrCycleInProgress
	}
	defer p.cycleMu.Unlock()

	started := p.now()
	log := p.logger.WithField("cycle_id", uuid.NewString())
	log.Info("poll cycle started")

	if err := p.session.EnsureSession(ctx); err != nil {
		p.metrics.ObserveCycle(cycleFailure(err), 0)
		log.WithError(err).Error("could not establish smart meter session, cycle aborted")
		return nil, fmt.Errorf("ensure session: %w", err)
	}

	points, err := p.points(ctx)
	if err != nil {
		p.metrics.ObserveCycle(cycleFailure(err), 0)
		log.WithError(err).Error("could not discover metering points, cycle aborted")
		return nil, fmt.Errorf("discover points: %w", err)
	}

	var (
		mu      sync.Mutex
		results = make(map[string]models.PollResult, len(points))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, point := range points {
		point := point
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res, err := p.pollPoint(gctx, log.WithField("point_id", point.ID), point)
			if err != nil {
				return err
			}
			mu.Lock()
			results[point.ID] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.metrics.ObserveCycle(metrics.CycleAuthFailed, 0)
		log.WithError(err).Error("smart meter credentials rejected mid-cycle, cycle aborted")
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		p.metrics.ObserveCycle(metrics.CycleCanceled, 0)
		log.WithError(err).Warn("poll cycle abandoned")
		return nil, err
	}

	p.publish(ctx, log, results)

	p.resultsMu.Lock()
	p.last = results
	p.resultsMu.Unlock()

	elapsed := p.now().Sub(started)
	p.metrics.ObserveCycle(metrics.CycleOK, elapsed)
	log.WithFields(logrus.Fields{
		"points":   len(results),
		"duration": elapsed.String(),
	}).Info("poll cycle finished")

	return results, nil
}

// LastResults returns the result map of the latest completed cycle.
func (p *Poller) LastResults() map[string]models.PollResult {
	p.resultsMu.RLock()
	defer p.resultsMu.RUnlock()

	out := make(map[string]models.PollResult, len(p.last))
	for k, v := range p.last {
		out[k] = v
	}
	return out
}

func cycleFailure(err error) string {
	if errors.Is(err, api.ErrAuth) {
		return metrics.CycleAuthFailed
	}
	return metrics.CycleFailed
}

func (p *Poller) points(ctx context.Context) ([]models.MeteringPoint, error) {
	if len(p.cfg.Points) > 0 || !p.cfg.DiscoverPoints {
		return p.cfg.Points, nil
	}

	ids, err := p.session.ActivePoints(ctx)
	if err != nil {
		return nil, err
	}
	points := make([]models.MeteringPoint, 0, len(ids))
	for _, id := range ids {
		points = append(points, models.MeteringPoint{ID: id, Unit: p.cfg.Unit})
	}
	return points, nil
}

// pollPoint records every point-local failure in the result. The returned
// error is non-nil only when the credentials were rejected, which ends the cycle.
func (p *Poller) pollPoint(ctx context.Context, log *logrus.Entry, point models.MeteringPoint) (models.PollResult, error) {
	res := models.PollResult{PointID: point.ID}

	details, err := p.session.FetchPointDetails(ctx, point.ID)
	if errors.Is(err, api.ErrAuth) {
		return res, fmt.Errorf("point %s details: %w", point.ID, err)
	}
	if err != nil {
		log.WithError(err).Warn("failed to fetch point details")
		p.metrics.ObservePoint(metrics.PointError)
		res.Err = err
		res.Timestamp = p.now()
		return res, nil
	}
	res.Details = details

	if !p.session.IsActive(details) {
		log.Debug("point is inactive, skipping readings")
		p.metrics.ObservePoint(metrics.PointInactive)
		res.Timestamp = p.now()
		return res, nil
	}

	now := p.now()
	sample, found, err := p.session.LatestReading(ctx, point.ID, session.CandidateDates(now, p.cfg.Location), now)
	if errors.Is(err, api.ErrAuth) {
		return res, fmt.Errorf("point %s reading: %w", point.ID, err)
	}
	if err != nil {
		log.WithError(err).Warn("failed to fetch latest reading")
		p.metrics.ObservePoint(metrics.PointError)
		res.Err = err
		res.Timestamp = p.now()
		return res, nil
	}
	if found {
		res.Reading = &sample
		p.metrics.ObservePoint(metrics.PointReading)
	} else {
		log.Info("no reading available on candidate dates")
		p.metrics.ObservePoint(metrics.PointNoReading)
	}

	if point.Granularity == "" {
		point.Granularity = details.Granularity()
	}
	if point.Unit == "" {
		point.Unit = p.cfg.Unit
	}
	outcome, err := p.importer.Import(ctx, point)
	if errors.Is(err, api.ErrAuth) {
		return res, fmt.Errorf("point %s import: %w", point.ID, err)
	}
	if err != nil {
		log.WithError(err).Warn("historical import failed")
	} else {
		log.WithField("outcome", outcome.String()).Debug("historical import done")
	}

	res.Timestamp = p.now()
	return res, nil
}

func (p *Poller) publish(ctx context.Context, log *logrus.Entry, results map[string]models.PollResult) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := results[id]
		plog := log.WithField("point_id", id)

		if !res.Available() {
			if err := p.sink.MarkUnavailable(ctx, id, res.Err.Error()); err != nil {
				plog.WithError(err).Error("failed to mark point unavailable")
			}
			continue
		}

		var value *float64
		if res.Reading != nil {
			v := res.Reading.Value
			value = &v
		}
		if err := p.sink.SetCurrentValue(ctx, id, value, p.attributes(res)); err != nil {
			plog.WithError(err).Error("failed to publish current value")
		}
	}
}

func (p *Poller) attributes(res models.PollResult) map[string]interface{} {
	attrs := make(map[string]interface{}, len(res.Details)+2)
	for k, v := range res.Details {
		attrs[k] = v
	}
	attrs[AttrLastPoll] = res.Timestamp.In(p.cfg.Location).Format(TimestampFormat)
	if res.Reading != nil {
		attrs[AttrReadingTime] = res.Reading.Time.In(p.cfg.Location).Format(TimestampFormat)
	}
	return attrs
}
