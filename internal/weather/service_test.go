package weather

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/location"
)

type fakeUpstream struct {
	current     CurrentConditions
	series      ForecastSeries
	currentErr  error
	forecastErr error

	currentCalls  atomic.Int32
	forecastCalls atomic.Int32
	queries       []location.Query
	mu            sync.Mutex
}

func (f *fakeUpstream) Name() string { return "fake" }

func (f *fakeUpstream) FetchCurrent(_ context.Context, q location.Query) (CurrentConditions, error) {
	f.currentCalls.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakeUpstream) FetchForecast(_ context.Context, _ location.Query) (ForecastSeries, error) {
	f.forecastCalls.Add(1)
	return f.series, f.forecastErr
}

type fakeRadar struct {
	frame RadarFrame
	err   error
	calls atomic.Int32

	// release, when set, holds every fetch until it is closed.
	release chan struct{}
}

func (f *fakeRadar) Name() string { return "fake-radar" }

func (f *fakeRadar) FetchLatestFrame(context.Context) (RadarFrame, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.frame, f.err
}

type mapStore struct {
	mu      sync.Mutex
	reports map[string]Report
	saveErr error
}

func newMapStore() *mapStore { return &mapStore{reports: map[string]Report{}} }

func (m *mapStore) Save(_ context.Context, key string, r Report) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[key] = r
	return nil
}

func (m *mapStore) Get(_ context.Context, key string) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[key]
	if !ok {
		return Report{}, ErrNotFound
	}
	return r, nil
}

// 2026-10-19 is a Monday.
var day0 = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func sampleUpstream() *fakeUpstream {
	return &fakeUpstream{
		current: CurrentConditions{
			Name:        "Mason City",
			Country:     "US",
			DisplayName: "Mason City",
			Lat:         43.15,
			Lon:         -93.2,
			Temperature: 63.7,
			Description: "Clear Sky",
			Icon:        "01d",
			Raw:         []byte(`{"name":"Mason City"}`),
		},
		series: ForecastSeries{
			City:    "Mason City",
			Country: "US",
			Entries: []forecast.Entry{
				{Timestamp: day0.Add(3 * time.Hour).Unix(), Temperature: 51.4, Condition: "light rain", Icon: "10n"},
				{Timestamp: day0.Add(15 * time.Hour).Unix(), Temperature: 64.5, Condition: "clear sky", Icon: "01d"},
				{Timestamp: day0.Add(27 * time.Hour).Unix(), Temperature: 49.6, Condition: "overcast clouds", Icon: "04n"},
			},
			Raw: []byte(`{"cnt":3}`),
		},
	}
}

func TestLookupAssemblesReport(t *testing.T) {
	up := sampleUpstream()
	radar := &fakeRadar{frame: RadarFrame{Time: day0, Path: "/v2/radar/abc", TileURL: "https://tiles/{z}/{x}/{y}.png"}}
	fixed := day0.Add(90 * time.Minute)

	svc := NewService(up, up,
		WithRadar(radar),
		WithLogger(zaptest.NewLogger(t)),
		withClock(func() time.Time { return fixed }),
	)

	report, err := svc.Lookup(context.Background(), " 50401 ")
	require.NoError(t, err)

	assert.Equal(t, location.ZipQuery("50401"), report.Query)
	assert.Equal(t, "Mason City", report.Current.DisplayName)
	assert.Equal(t, fixed, report.FetchedAt)

	require.Len(t, report.Daily, 2)
	assert.Equal(t, "Mon", report.Daily[0].Day)
	assert.Equal(t, 65, report.Daily[0].High)
	assert.Equal(t, 51, report.Daily[0].Low)
	assert.Equal(t, "Light Rain", report.Daily[0].Condition)
	assert.Equal(t, "Tue", report.Daily[1].Day)

	require.NotNil(t, report.Radar)
	assert.Equal(t, RadarZoom, report.Radar.Zoom)
	assert.Equal(t, 43.15, report.Radar.Lat)
	assert.Equal(t, -93.2, report.Radar.Lon)
	assert.Equal(t, "/v2/radar/abc", report.Radar.Frame.Path)
}

func TestLookupUsesCache(t *testing.T) {
	up := sampleUpstream()
	store := newMapStore()
	svc := NewService(up, up, WithStore(store))

	first, err := svc.Lookup(context.Background(), "Baxter, IA")
	require.NoError(t, err)
	_, ok := store.reports["city_state:baxter,ia"]
	require.True(t, ok)

	second, err := svc.Lookup(context.Background(), "baxter,ia")
	require.NoError(t, err)

	assert.Equal(t, int32(1), up.currentCalls.Load())
	assert.Equal(t, int32(1), up.forecastCalls.Load())
	assert.Equal(t, first.Current, second.Current)
}

func TestLookupStoreFailureDoesNotFail(t *testing.T) {
	up := sampleUpstream()
	store := newMapStore()
	store.saveErr = errors.New("disk full")

	svc := NewService(up, up, WithStore(store), WithLogger(zaptest.NewLogger(t)))
	_, err := svc.Lookup(context.Background(), "Chicago")
	require.NoError(t, err)
}

func TestLookupPropagatesUpstreamErrors(t *testing.T) {
	up := sampleUpstream()
	up.currentErr = ErrLocationNotFound

	svc := NewService(up, up)
	_, err := svc.Lookup(context.Background(), "Nowhere")
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestLookupWithoutProvidersIsNotConfigured(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Lookup(context.Background(), "Chicago")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestLookupRadarFailureLeavesOverlayEmpty(t *testing.T) {
	up := sampleUpstream()
	radar := &fakeRadar{err: errors.New("boom")}

	svc := NewService(up, up, WithRadar(radar), WithLogger(zaptest.NewLogger(t)))
	report, err := svc.Lookup(context.Background(), "Chicago")
	require.NoError(t, err)
	assert.Nil(t, report.Radar)
}

func TestRadarIsReusedUntilStale(t *testing.T) {
	radar := &fakeRadar{frame: RadarFrame{Path: "/v2/radar/one"}}
	now := day0
	svc := NewService(nil, nil, WithRadar(radar), withClock(func() time.Time { return now }))

	_, err := svc.Radar(context.Background())
	require.NoError(t, err)
	_, err = svc.Radar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), radar.calls.Load())

	now = now.Add(radarMaxAge)
	radar.err = errors.New("upstream down")
	frame, err := svc.Radar(context.Background())
	require.NoError(t, err, "stale frame is served when refresh fails")
	assert.Equal(t, "/v2/radar/one", frame.Path)
	assert.Equal(t, int32(2), radar.calls.Load())
}

func TestConcurrentRadarRefreshIsShared(t *testing.T) {
	radar := &fakeRadar{frame: RadarFrame{Path: "/v2/radar/shared"}, release: make(chan struct{})}
	svc := NewService(nil, nil, WithRadar(radar))

	const callers = 8
	var wg sync.WaitGroup
	frames := make([]RadarFrame, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			frames[i], errs[i] = svc.Radar(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return radar.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(radar.release)
	wg.Wait()

	assert.Equal(t, int32(1), radar.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "/v2/radar/shared", frames[i].Path)
	}
}

func TestRadarWithoutProvider(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Radar(context.Background())
	require.ErrorIs(t, err, ErrRadarUnavailable)

	_, err = svc.RefreshRadar(context.Background())
	require.ErrorIs(t, err, ErrRadarUnavailable)
}

func TestDailyTimezonePolicy(t *testing.T) {
	up := sampleUpstream()
	// 03:00 UTC Tuesday is Monday evening at UTC-5.
	up.series.Entries = []forecast.Entry{
		{Timestamp: day0.Add(18 * time.Hour).Unix(), Temperature: 55, Condition: "clouds"},
		{Timestamp: day0.Add(27 * time.Hour).Unix(), Temperature: 48, Condition: "mist"},
	}

	t.Run("utc fallback", func(t *testing.T) {
		days, err := NewService(up, up).Daily(context.Background(), "Chicago")
		require.NoError(t, err)
		assert.Len(t, days, 2)
	})

	t.Run("location offset", func(t *testing.T) {
		offset := -5 * 60 * 60
		up.series.TimezoneOffset = &offset
		defer func() { up.series.TimezoneOffset = nil }()

		days, err := NewService(up, up).Daily(context.Background(), "Chicago")
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, 48, days[0].Low)
	})

	t.Run("display zone wins", func(t *testing.T) {
		offset := -5 * 60 * 60
		up.series.TimezoneOffset = &offset
		defer func() { up.series.TimezoneOffset = nil }()

		days, err := NewService(up, up, WithDisplayZone(time.UTC)).Daily(context.Background(), "Chicago")
		require.NoError(t, err)
		assert.Len(t, days, 2)
	})
}

func TestRawPassThrough(t *testing.T) {
	up := sampleUpstream()
	svc := NewService(up, up)

	cur, err := svc.CurrentRaw(context.Background(), "50401")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Mason City"}`, string(cur))

	fc, err := svc.ForecastRaw(context.Background(), "50401")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cnt":3}`, string(fc))
}

func TestWarmBypassesCacheAndJoinsErrors(t *testing.T) {
	up := sampleUpstream()
	store := newMapStore()
	svc := NewService(up, up, WithStore(store))

	require.NoError(t, svc.Warm(context.Background(), []string{"50401", "Chicago"}))
	require.NoError(t, svc.Warm(context.Background(), []string{"50401"}))
	assert.Equal(t, int32(3), up.currentCalls.Load())
	assert.Len(t, store.reports, 2)

	up.currentErr = ErrLocationNotFound
	err := svc.Warm(context.Background(), []string{"a", "b"})
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestInvalidLocationNeverReachesUpstream(t *testing.T) {
	ctx := context.Background()
	up := sampleUpstream()
	svc := NewService(up, up, WithStore(newMapStore()))

	for name, tc := range map[string]struct {
		input string
		want  error
	}{
		"empty":    {"", location.ErrEmpty},
		"blank":    {"   ", location.ErrEmpty},
		"too long": {strings.Repeat("a", 150), location.ErrTooLong},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Lookup(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
			_, err = svc.Current(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
			_, err = svc.Daily(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
			_, err = svc.CurrentRaw(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
			_, err = svc.ForecastRaw(ctx, tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Zero(t, up.currentCalls.Load())
	assert.Zero(t, up.forecastCalls.Load())
}

func TestWarmSkipsInvalidLocations(t *testing.T) {
	up := sampleUpstream()
	store := newMapStore()
	svc := NewService(up, up, WithStore(store), WithLogger(zaptest.NewLogger(t)))

	err := svc.Warm(context.Background(), []string{"", strings.Repeat("b", 101), "Chicago"})
	require.ErrorIs(t, err, location.ErrEmpty)
	require.ErrorIs(t, err, location.ErrTooLong)

	assert.Equal(t, int32(1), up.currentCalls.Load())
	assert.Len(t, store.reports, 1)
}
