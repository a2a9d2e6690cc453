package models

import (
	"strings"
	"time"
)

// Granularity is the expected spacing between historical interval samples.
type Granularity string

const (
	QuarterHour Granularity = "QUARTER_HOUR"
	Hour        Granularity = "HOUR"
)

// ParseGranularity maps the vendor string onto a Granularity.
// Anything unrecognised falls back to QuarterHour.
func ParseGranularity(s string) Granularity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Hour):
		return Hour
	default:
		return QuarterHour
	}
}

// Step returns the slot width for the granularity.
func (g Granularity) Step() time.Duration {
	if g == Hour {
		return time.Hour
	}
	return 15 * time.Minute
}

// MeteringPoint identifies a single zaehlpunkt together with how its history is shaped.
type MeteringPoint struct {
	ID          string
	Granularity Granularity
	Unit        string
}

// PointSummary is one entry of the account's point listing.
type PointSummary struct {
	ID     string `json:"zaehlpunktnummer"`
	Name   string `json:"name"`
	Active bool   `json:"isActive"`
}

// PointDetails is the raw attribute map returned for a metering point.
type PointDetails map[string]interface{}

// Active reports whether the details mark the point as active.
func (d PointDetails) Active() bool {
	for _, key := range []string{"isActive", "active"} {
		if v, ok := d[key].(bool); ok {
			return v
		}
	}
	return false
}

// Granularity reads the granularity attribute, defaulting to QuarterHour.
func (d PointDetails) Granularity() Granularity {
	s, _ := d["granularity"].(string)
	return ParseGranularity(s)
}

// ReadingSample is a cumulative meter value at an instant.
type ReadingSample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// HistoricalWindow is the half-open range [Start, End) and the samples it yielded.
type HistoricalWindow struct {
	Start   time.Time
	End     time.Time
	Samples []ReadingSample
}

// ImportCursor records how far the historical import for a point has progressed.
type ImportCursor struct {
	PointID string
	// ImportedThrough is the end of the last committed window.
	ImportedThrough time.Time
	// LastSample is the newest sample committed so far; zero if none yet.
	LastSample time.Time
	// LastValue is the meter value at LastSample.
	LastValue float64
}

// StatPoint is one entry of the long-term statistics series of a point.
type StatPoint struct {
	Start time.Time
	State float64
	// Usage is the consumption since the previous slot. Nil when that slot is absent.
	Usage *float64
}

// PollResult is the outcome of one poll cycle for one metering point.
type PollResult struct {
	PointID   string
	Details   PointDetails
	Reading   *ReadingSample
	Timestamp time.Time
	Err       error
}

// Available reports whether the point should be shown as available.
func (r PollResult) Available() bool {
	return r.Err == nil
}
