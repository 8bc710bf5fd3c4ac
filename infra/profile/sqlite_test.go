package profile

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinjo-energy/kinjo/config"
	core "github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

func newProfile(id, prm string, created time.Time) core.Profile {
	sub := tariff.Subscription{
		PowerKVA: 9,
		Plan:     tariff.PlanPeakOffPeak,
		Rates:    map[tariff.RateKey]float64{tariff.RatePeak: 0.27, tariff.RateOffPeak: 0.2},
	}
	sub.Schedule.OffPeak[0] = tariff.RawRange{Start: "22:30", End: "06:30"}
	segs, _ := tariff.ValidateAndBuild(sub.Input(), tariff.Peak)
	return core.Profile{
		ID:           id,
		PRM:          prm,
		Subscription: sub,
		Description:  "HC (22:30-06:30)",
		Segments:     segs,
		CreatedAt:    created.UTC(),
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, newProfile("a", "11111111111111", base)))
	require.NoError(t, store.Save(ctx, newProfile("b", "11111111111111", base.Add(time.Hour))))
	require.NoError(t, store.Save(ctx, newProfile("c", "22222222222222", base.Add(2*time.Hour))))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "11111111111111", got.PRM)
	assert.True(t, base.Equal(got.CreatedAt))
	assert.Equal(t, tariff.PlanPeakOffPeak, got.Subscription.Plan)
	assert.Equal(t, "22:30", got.Subscription.Schedule.OffPeak[0].Start)
	require.Len(t, got.Segments, 3)
	assert.Equal(t, tariff.OffPeak, got.Segments[0].Kind)
	assert.NoError(t, got.Segments.Validate())

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	list, err := store.List(ctx, core.Query{PRM: "11111111111111"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	list, err = store.List(ctx, core.Query{Since: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)

	list, err = store.List(ctx, core.Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c", list[0].ID)
}

func TestNewStoreSelectsBackend(t *testing.T) {
	s, err := NewStore(config.StoreConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &core.MemoryStore{}, s)

	s, err = NewStore(config.StoreConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(config.StoreConfig{Backend: "redis"})
	assert.Error(t, err)
}
