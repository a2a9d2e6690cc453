//go:generate go run github.com/golang/mock/mockgen -destination=./mocks/sink.go -package=mocks . StatisticsSink,CursorStore

package database

import (
	"context"
	"errors"
	"time"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

var (
	ErrEmptyPointID = errors.New("empty point id")
	ErrInvalidStat  = errors.New("invalid statistic point")
)

// StatisticsSink is where the pipeline publishes current values and
// long-term statistics for each metering point.
//
// UpsertStatistics must be idempotent per (pointID, StatPoint.Start): points
// whose key already exists are left untouched, so replaying an overlapping
// window never produces duplicates.
type StatisticsSink interface {
	// SetCurrentValue publishes the current state of a point and marks it
	// available. A nil value keeps the previously published value and only
	// refreshes the attributes. A stored value is never lowered.
	SetCurrentValue(ctx context.Context, pointID string, value *float64, attrs map[string]interface{}) error

	// MarkUnavailable flags the point so consumers stop showing its last value as fresh.
	MarkUnavailable(ctx context.Context, pointID string, reason string) error

	// UpsertStatistics writes the points for pointID and returns how many were new.
	UpsertStatistics(ctx context.Context, pointID, unit string, points []models.StatPoint) (int, error)
}

// CursorStore persists the historical import cursor of each point.
type CursorStore interface {
	// GetCursor returns the cursor of pointID; ok is false if none was saved yet.
	GetCursor(ctx context.Context, pointID string) (cursor models.ImportCursor, ok bool, err error)

	// SaveCursor stores the cursor, replacing any previous one for the same point.
	SaveCursor(ctx context.Context, cursor models.ImportCursor) error
}

// PointState is the published state of a point as seen by consumers.
type PointState struct {
	Value      *float64
	Available  bool
	Reason     string
	Attributes map[string]interface{}
	UpdatedAt  time.Time
}

func validateStats(pointID string, points []models.StatPoint) error {
	if pointID == "" {
		return ErrEmptyPointID
	}
	for _, p := range points {
		if p.Start.IsZero() {
			return ErrInvalidStat
		}
	}
	return nil
}
