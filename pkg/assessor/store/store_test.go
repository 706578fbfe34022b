package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "assessments.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type fakeResult struct {
	TotalEnergyKWh float64 `json:"total_energy_kwh"`
}

func TestSaveAndNearby(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(KindWind, 40.7128, -74.0060, fakeResult{TotalEnergyKWh: 18000}))

	// Same location
	rec, found, err := s.Nearby(KindWind, 40.7128, -74.0060, 50, time.Hour)
	require.NoError(t, err)
	require.True(t, found)

	var result fakeResult
	require.NoError(t, json.Unmarshal(rec.Payload, &result))
	assert.Equal(t, 18000.0, result.TotalEnergyKWh)

	// ~10 km away, inside the 50 km radius
	_, found, err = s.Nearby(KindWind, 40.80, -74.01, 50, time.Hour)
	require.NoError(t, err)
	assert.True(t, found)

	// Philadelphia, ~130 km away, outside the radius
	_, found, err = s.Nearby(KindWind, 39.9526, -75.1652, 50, time.Hour)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNearbyKindIsolation(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(KindSolar, 40.7128, -74.0060, fakeResult{TotalEnergyKWh: 8000}))

	_, found, err := s.Nearby(KindWind, 40.7128, -74.0060, 50, time.Hour)
	require.NoError(t, err)
	assert.False(t, found, "solar record must not satisfy a wind lookup")
}

func TestNearbyMaxAge(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(KindWind, 40.7128, -74.0060, fakeResult{}))

	// A zero max age excludes everything already stored.
	_, found, err := s.Nearby(KindWind, 40.7128, -74.0060, 50, 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLatest(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(KindSolar, 1, 2, fakeResult{TotalEnergyKWh: 1}))
	require.NoError(t, s.Save(KindWind, 3, 4, fakeResult{TotalEnergyKWh: 2}))
	require.NoError(t, s.Save(KindWind, 5, 6, fakeResult{TotalEnergyKWh: 3}))

	records, err := s.Latest(2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCleanup(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(KindWind, 1, 2, fakeResult{}))

	// Retention in the future removes nothing; negative retention (cutoff
	// in the future) removes everything.
	require.NoError(t, s.Cleanup(30))
	records, err := s.Latest(10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, s.Cleanup(-1))
	records, err = s.Latest(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
