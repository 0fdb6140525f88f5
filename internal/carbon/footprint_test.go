package carbon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	data map[string][]byte
}

func (m *memCache) GetJSON(key string, v any) error {
	b, ok := m.data[key]
	if !ok {
		return errors.New("miss")
	}
	return json.Unmarshal(b, v)
}

func (m *memCache) SetJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

type fixedFlights float64

func (f fixedFlights) FlightKgCO2e(context.Context, Coordinates, Coordinates) (float64, error) {
	return float64(f), nil
}

func TestCalculator_Static(t *testing.T) {
	calc := NewCalculator(nil)
	ctx := context.Background()

	kg, err := calc.Compute(ctx, Source{Kind: SourceHotel, Nights: 2, Weight: 1})
	require.NoError(t, err)
	assert.InDelta(t, 73.26, kg, 1e-9)

	kg, err = calc.Compute(ctx, Source{Kind: SourceMeal, MassKg: 0.5, Weight: 2})
	require.NoError(t, err)
	assert.InDelta(t, 13.5, kg, 1e-9)

	kg, err = calc.Compute(ctx, Source{Kind: SourceCO2e, KgCO2e: 42, Weight: 1})
	require.NoError(t, err)
	assert.InDelta(t, 42.0, kg, 1e-9)

	_, err = calc.Compute(ctx, Source{Kind: SourceFlight})
	require.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = calc.Compute(ctx, Source{Kind: "train"})
	require.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = calc.Compute(ctx, Source{Kind: SourceHotel, Nights: -1})
	require.ErrorIs(t, err, ErrNegativeValue)
}

func TestCalculator_ZeroWeight(t *testing.T) {
	calc := NewCalculator(fixedFlights(120))
	ctx := context.Background()

	for _, src := range []Source{
		{Kind: SourceHotel, Nights: 3},
		{Kind: SourceMeal, MassKg: 1},
		{Kind: SourceCO2e, KgCO2e: 42},
		{Kind: SourceFlight},
	} {
		kg, err := calc.Compute(ctx, src)
		require.NoError(t, err, src.Kind)
		assert.Zero(t, kg, src.Kind)
	}
}

func TestCalculator_Flight(t *testing.T) {
	calc := NewCalculator(fixedFlights(120))
	kg, err := calc.Compute(context.Background(), Source{Kind: SourceFlight, Weight: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 60.0, kg, 1e-9)
}

const okResponse = `{"status":"OK","output":{"amounts":[
	{"type":"CO2","value":90.1,"unit":"kg"},
	{"type":"totalDirectCO2e","value":95.5,"unit":"kg"}]}}`

func TestCarbonKit_FlightAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "great circle route", r.URL.Query().Get("type"))
		assert.Equal(t, "48.856600", r.URL.Query().Get("values.lat1"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(okResponse))
	}))
	t.Cleanup(srv.Close)

	cache := &memCache{data: map[string][]byte{}}
	ck := NewCarbonKit(srv.URL, "alice", "secret",
		WithHTTPClient(srv.Client()), WithResponseCache(cache), WithRateLimit(100, 1))

	paris := Coordinates{Latitude: 48.8566, Longitude: 2.3522}
	nyc := Coordinates{Latitude: 40.7128, Longitude: -74.0060}

	kg, err := ck.FlightKgCO2e(context.Background(), paris, nyc)
	require.NoError(t, err)
	assert.InDelta(t, 95.5, kg, 1e-9)

	kg, err = ck.FlightKgCO2e(context.Background(), paris, nyc)
	require.NoError(t, err)
	assert.InDelta(t, 95.5, kg, 1e-9)
	assert.Equal(t, int32(1), hits.Load(), "second call is served from cache")
}

func TestCarbonKit_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"malformed", http.StatusOK, `not json`},
		{"not ok", http.StatusOK, `{"status":"ERROR"}`},
		{"no amount", http.StatusOK, `{"status":"OK","output":{"amounts":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			ck := NewCarbonKit(srv.URL, "", "", WithHTTPClient(srv.Client()))
			_, err := ck.FlightKgCO2e(context.Background(), Coordinates{}, Coordinates{Latitude: 1})
			require.ErrorIs(t, err, ErrProviderUnavailable)
		})
	}
}

