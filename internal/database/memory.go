package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

// MemoryStore is an in-memory StatisticsSink and CursorStore.
// It is used by tests and by the service when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	states  map[string]PointState
	stats   map[string]map[int64]models.StatPoint
	units   map[string]string
	cursors map[string]models.ImportCursor
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:  make(map[string]PointState),
		stats:   make(map[string]map[int64]models.StatPoint),
		units:   make(map[string]string),
		cursors: make(map[string]models.ImportCursor),
		now:     time.Now,
	}
}

func (m *MemoryStore) SetCurrentValue(ctx context.Context, pointID string, value *float64, attrs map[string]interface{}) error {
	if pointID == "" {
		return ErrEmptyPointID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.states[pointID]
	if value != nil && (st.Value == nil || *value > *st.Value) {
		v := *value
		st.Value = &v
	}
	st.Available = true
	st.Reason = ""
	st.Attributes = copyAttrs(attrs)
	st.UpdatedAt = m.now()
	m.states[pointID] = st
	return nil
}

func (m *MemoryStore) MarkUnavailable(ctx context.Context, pointID string, reason string) error {
	if pointID == "" {
		return ErrEmptyPointID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.states[pointID]
	st.Available = false
	st.Reason = reason
	st.UpdatedAt = m.now()
	m.states[pointID] = st
	return nil
}

func (m *MemoryStore) UpsertStatistics(ctx context.Context, pointID, unit string, points []models.StatPoint) (int, error) {
	if err := validateStats(pointID, points); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	series := m.stats[pointID]
	if series == nil {
		series = make(map[int64]models.StatPoint)
		m.stats[pointID] = series
	}
	m.units[pointID] = unit

	inserted := 0
	for _, p := range points {
		key := p.Start.UnixNano()
		if _, exists := series[key]; exists {
			continue
		}
		series[key] = p
		inserted++
	}
	return inserted, nil
}

// Statistics returns all stored points of pointID ordered by time.
func (m *MemoryStore) Statistics(pointID string) []models.StatPoint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	series := m.stats[pointID]
	result := make([]models.StatPoint, 0, len(series))
	for _, p := range series {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

// State returns the published state of pointID.
func (m *MemoryStore) State(pointID string) (PointState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[pointID]
	return st, ok
}

func (m *MemoryStore) GetCursor(ctx context.Context, pointID string) (models.ImportCursor, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cursors[pointID]
	return c, ok, nil
}

func (m *MemoryStore) SaveCursor(ctx context.Context, cursor models.ImportCursor) error {
	if cursor.PointID == "" {
		return ErrEmptyPointID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[cursor.PointID] = cursor
	return nil
}

func copyAttrs(attrs map[string]interface{}) map[string]interface{} {
	if attrs == nil {
		return nil
	}
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

var (
	_ StatisticsSink = (*MemoryStore)(nil)
	_ CursorStore    = (*MemoryStore)(nil)
)
