package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/wnsm-sync/internal/api"
	"github.com/tejusbharadwaj/wnsm-sync/internal/api/mocks"
	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestEnsureSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	s := New(client, quietLogger(), WithTTL(time.Hour), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	client.EXPECT().Login(gomock.Any()).Return(nil).Times(1)
	require.NoError(t, s.EnsureSession(ctx))
	require.NoError(t, s.EnsureSession(ctx))

	// ttl elapsed
	now = now.Add(2 * time.Hour)
	client.EXPECT().Login(gomock.Any()).Return(nil).Times(1)
	require.NoError(t, s.EnsureSession(ctx))

	// explicit invalidation
	s.Invalidate()
	client.EXPECT().Login(gomock.Any()).Return(nil).Times(1)
	require.NoError(t, s.EnsureSession(ctx))
}

func TestEnsureSessionRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	s := New(client, quietLogger())

	client.EXPECT().Login(gomock.Any()).Return(fmt.Errorf("%w: got 401", api.ErrAuth)).Times(2)

	err := s.EnsureSession(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrAuth))

	// a failed login is not remembered as a session
	err = s.EnsureSession(context.Background())
	assert.True(t, errors.Is(err, api.ErrAuth))
}

func TestFetchPointDetailsRelogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	s := New(client, quietLogger())
	ctx := context.Background()

	gomock.InOrder(
		client.EXPECT().Login(gomock.Any()).Return(nil),
		client.EXPECT().PointDetails(gomock.Any(), "AT001").Return(nil, api.ErrAuth),
		client.EXPECT().Login(gomock.Any()).Return(nil),
		client.EXPECT().PointDetails(gomock.Any(), "AT001").Return(models.PointDetails{"isActive": true}, nil),
	)

	require.NoError(t, s.EnsureSession(ctx))
	details, err := s.FetchPointDetails(ctx, "AT001")
	require.NoError(t, err)
	assert.True(t, s.IsActive(details))
}

func TestFetchPointDetailsTransient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	s := New(client, quietLogger())

	client.EXPECT().PointDetails(gomock.Any(), "AT002").Return(nil, fmt.Errorf("%w: timeout", api.ErrTransientFetch))

	_, err := s.FetchPointDetails(context.Background(), "AT002")
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrTransientFetch))
}

func TestLatestReading(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 5, 10, 9, 30, 0, 0, loc)
	dayMinus1 := time.Date(2024, 5, 9, 0, 0, 0, 0, loc)
	dayMinus2 := time.Date(2024, 5, 8, 0, 0, 0, 0, loc)
	candidates := []time.Time{dayMinus1, dayMinus2}

	tests := []struct {
		name      string
		setupMock func(c *mocks.MockRemoteClient)
		wantFound bool
		want      models.ReadingSample
		wantErr   bool
	}{
		{
			name: "falls back to the day before",
			setupMock: func(c *mocks.MockRemoteClient) {
				gomock.InOrder(
					c.EXPECT().IntervalReadings(gomock.Any(), "AT001", dayMinus1, now).Return(nil, nil),
					c.EXPECT().IntervalReadings(gomock.Any(), "AT001", dayMinus2, now).Return([]models.ReadingSample{
						{Time: dayMinus2.Add(14 * time.Hour), Value: 1200.25},
					}, nil),
				)
			},
			wantFound: true,
			want:      models.ReadingSample{Time: dayMinus2.Add(14 * time.Hour), Value: 1200.25},
		},
		{
			name: "stops at first non-empty date",
			setupMock: func(c *mocks.MockRemoteClient) {
				c.EXPECT().IntervalReadings(gomock.Any(), "AT001", dayMinus1, now).Return([]models.ReadingSample{
					{Time: dayMinus1.Add(23 * time.Hour), Value: 1234.5},
					{Time: dayMinus1.Add(22 * time.Hour), Value: 1233.0},
				}, nil)
			},
			wantFound: true,
			want:      models.ReadingSample{Time: dayMinus1.Add(23 * time.Hour), Value: 1234.5},
		},
		{
			name: "no reading on any date",
			setupMock: func(c *mocks.MockRemoteClient) {
				c.EXPECT().IntervalReadings(gomock.Any(), "AT001", gomock.Any(), now).Return(nil, nil).Times(2)
			},
			wantFound: false,
		},
		{
			name: "fetch failure propagates",
			setupMock: func(c *mocks.MockRemoteClient) {
				c.EXPECT().IntervalReadings(gomock.Any(), "AT001", dayMinus1, now).Return(nil, api.ErrTransientFetch)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockRemoteClient(ctrl)
			tt.setupMock(client)
			s := New(client, quietLogger())

			sample, found, err := s.LatestReading(context.Background(), "AT001", candidates, now)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, sample)
			}
		})
	}
}

func TestDispatchAbandonsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	release := make(chan struct{})
	defer close(release)

	client.EXPECT().PointDetails(gomock.Any(), "SLOW").DoAndReturn(func(ctx context.Context, id string) (models.PointDetails, error) {
		<-release
		return models.PointDetails{}, nil
	})

	s := New(client, quietLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.FetchPointDetails(ctx, "SLOW")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestActivePoints(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRemoteClient(ctrl)
	client.EXPECT().ListPoints(gomock.Any()).Return([]models.PointSummary{
		{ID: "AT003", Active: true},
		{ID: "AT002", Active: false},
		{ID: "AT001", Active: true},
	}, nil)

	ids, err := New(client, quietLogger()).ActivePoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AT001", "AT003"}, ids)
}

func TestCandidateDates(t *testing.T) {
	vienna := time.FixedZone("CEST", 2*60*60)

	// 23:30 UTC is already the next day in Vienna
	now := time.Date(2024, 5, 9, 23, 30, 0, 0, time.UTC)
	dates := CandidateDates(now, vienna)

	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2024, 5, 9, 0, 0, 0, 0, vienna), dates[0])
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, vienna), dates[1])
}
