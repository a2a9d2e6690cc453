package database

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
)

// MonotonicSink wraps a StatisticsSink and refuses to publish a current value
// lower than the last one it published for the same point. Meter readings are
// cumulative, so a lower value is a vendor glitch and the previous value is
// republished instead.
//
// MarkUnavailable and UpsertStatistics pass straight through. The last
// values live in an LRU cache. Both stores also refuse to lower a stored
// value, which covers evicted points and the first publish after a restart.
type MonotonicSink struct {
	StatisticsSink
	last   *lru.Cache
	logger *logrus.Logger
}

// NewMonotonicSink wraps next with a guard remembering up to size points.
func NewMonotonicSink(next StatisticsSink, size int, logger *logrus.Logger) (*MonotonicSink, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MonotonicSink{StatisticsSink: next, last: cache, logger: logger}, nil
}

func (m *MonotonicSink) SetCurrentValue(ctx context.Context, pointID string, value *float64, attrs map[string]interface{}) error {
	if value != nil {
		if prev, ok := m.last.Get(pointID); ok {
			if p := prev.(float64); *value < p {
				m.logger.WithFields(logrus.Fields{
					"point_id": pointID,
					"value":    *value,
					"previous": p,
				}).Warn("meter reading decreased, keeping previous value")
				value = &p
			}
		}
	}

	if err := m.StatisticsSink.SetCurrentValue(ctx, pointID, value, attrs); err != nil {
		return err
	}
	if value != nil {
		m.last.Add(pointID, *value)
	}
	return nil
}

var _ StatisticsSink = (*MonotonicSink)(nil)
