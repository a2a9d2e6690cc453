// Package session wraps the remote smart meter client with a single
// logical login per pipeline instance.
//
// Remote calls are executed on their own goroutine so that a slow upstream
// never blocks the goroutine that drives scheduling; when the caller's
// context is cancelled the call is abandoned and its result discarded.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

// DefaultTTL is how long a login is trusted before it is renewed.
const DefaultTTL = 55 * time.Minute

// Session holds the login state for one pipeline instance.
type Session struct {
	client api.RemoteClient
	logger *logrus.Logger
	ttl    time.Duration
	now    func() time.Time

	mu            sync.Mutex
	valid         bool
	establishedAt time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Session around client.
func New(client api.RemoteClient, logger *logrus.Logger, opts ...Option) *Session {
	s := &Session{
		client: client,
		logger: logger,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSession logs in unless a valid session is already held.
// Rejected credentials are returned wrapped in api.ErrAuth.
func (s *Session) EnsureSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.valid && s.now().Sub(s.establishedAt) < s.ttl {
		return nil
	}

	s.valid = false
	_, err := dispatch(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.client.Login(ctx)
	})
	if err != nil {
		return err
	}

	s.valid = true
	s.establishedAt = s.now()
	s.logger.Debug("smart meter session established")
	return nil
}

// Invalidate forgets the current login so the next EnsureSession logs in again.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// FetchPointDetails returns the current attributes of a metering point.
func (s *Session) FetchPointDetails(ctx context.Context, id string) (models.PointDetails, error) {
	return callWithReauth(ctx, s, func(ctx context.Context) (models.PointDetails, error) {
		return s.client.PointDetails(ctx, id)
	})
}

// IntervalReadings fetches the samples of id within [start, end).
func (s *Session) IntervalReadings(ctx context.Context, id string, start, end time.Time) ([]models.ReadingSample, error) {
	return callWithReauth(ctx, s, func(ctx context.Context) ([]models.ReadingSample, error) {
		return s.client.IntervalReadings(ctx, id, start, end)
	})
}

// IsActive classifies a point from its details. It performs no I/O.
func (s *Session) IsActive(details models.PointDetails) bool {
	return details.Active()
}

// LatestReading walks candidateDates in order and returns the last sample of
// the first date whose window [date 00:00, now) is not empty. found is false
// when every candidate is empty; that is not an error.
func (s *Session) LatestReading(ctx context.Context, id string, candidateDates []time.Time, now time.Time) (sample models.ReadingSample, found bool, err error) {
	for _, date := range candidateDates {
		y, m, d := date.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
		if !start.Before(now) {
			continue
		}

		samples, err := s.IntervalReadings(ctx, id, start, now)
		if err != nil {
			return models.ReadingSample{}, false, err
		}
		if len(samples) == 0 {
			s.logger.WithFields(logrus.Fields{
				"point_id": id,
				"date":     start.Format("2006-01-02"),
			}).Debug("no readings for candidate date")
			continue
		}

		latest := samples[0]
		for _, smp := range samples[1:] {
			if smp.Time.After(latest.Time) {
				latest = smp
			}
		}
		return latest, true, nil
	}
	return models.ReadingSample{}, false, nil
}

// ActivePoints lists the account's metering points and keeps the active ones,
// sorted by id.
func (s *Session) ActivePoints(ctx context.Context) ([]string, error) {
	points, err := callWithReauth(ctx, s, func(ctx context.Context) ([]models.PointSummary, error) {
		return s.client.ListPoints(ctx)
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, p := range points {
		// inactive points linger on old contracts
		if p.Active && p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// CandidateDates returns yesterday and the day before in loc, the dates on
// which the latest meter reading is looked up.
func CandidateDates(now time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return []time.Time{today.AddDate(0, 0, -1), today.AddDate(0, 0, -2)}
}

// callWithReauth runs fn and, if the upstream reports an expired session,
// logs in once more and retries fn a single time.
func callWithReauth[T any](ctx context.Context, s *Session, fn func(context.Context) (T, error)) (T, error) {
	v, err := dispatch(ctx, fn)
	if err == nil || !errors.Is(err, api.ErrAuth) {
		return v, err
	}

	s.logger.WithError(err).Info("smart meter session expired, logging in again")
	s.Invalidate()
	if err := s.EnsureSession(ctx); err != nil {
		var zero T
		return zero, err
	}
	return dispatch(ctx, fn)
}

// dispatch executes fn on a separate goroutine and waits for it or for ctx.
func dispatch[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}

	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.v, r.err
	}
}
