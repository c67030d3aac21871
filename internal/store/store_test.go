package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	d := sampleData()
	require.True(t, f.store.Save(ctx, d))

	got := f.store.Load(ctx)
	assert.Equal(t, d, got)
	absent(t, f.session, DataKey)
}

func TestLoad_SeedsAndPersistsOnFirstRun(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	d := f.store.Load(ctx)
	assert.Equal(t, model.Seed(), d)

	var stored model.Data
	require.NoError(t, json.Unmarshal(raw(t, f.db, DataKey), &stored))
	assert.Equal(t, 7, stored.NextStudentID)
	assert.Equal(t, 1.0, counter(t, f.metrics, "rollcall_loads_total", "source", sourceSeed))
}

func TestLoad_CustomSeed(t *testing.T) {
	f := newFixture(t, nil, WithSeed(model.New))

	d := f.store.Load(context.Background())
	assert.Empty(t, d.Groups)
	assert.Equal(t, 1, d.NextStudentID)
}

func TestSave_FallsBackToSessionWhenQuotaExceeded(t *testing.T) {
	f := newFixture(t, []kv.SQLiteOption{kv.WithQuota(16)})
	ctx := context.Background()

	d := sampleData()
	require.True(t, f.store.Save(ctx, d))

	absent(t, f.db, DataKey)
	raw(t, f.session, DataKey)

	got := f.store.Load(ctx)
	assert.Equal(t, d, got)
	assert.Equal(t, 1.0, counter(t, f.metrics, "rollcall_saves_total", "tier", "memory"))
}

func TestSave_FailsWhenBothTiersFail(t *testing.T) {
	f := newFixture(t, nil)
	f.primary.FailSets(true)
	f.store.session = kv.NewMemory(1)

	assert.False(t, f.store.Save(context.Background(), sampleData()))
	assert.Equal(t, 1.0, counter(t, f.metrics, "rollcall_save_failures_total"))
}

func TestSave_NoSessionTier(t *testing.T) {
	f := newFixture(t, nil)
	f.store.session = nil
	f.primary.FailSets(true)

	assert.False(t, f.store.Save(context.Background(), sampleData()))
}

func TestLoad_UnreadablePrimaryFallsThroughToSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	put(t, f.db, DataKey, "{not json")
	put(t, f.session, DataKey, sampleData())

	assert.Equal(t, sampleData(), f.store.Load(ctx))
}

func TestLoad_CorruptPrimaryIsNotOverwritten(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	const corrupt = `{"groups": {"A": [1]}, "students": {"1": {"id": 1, "name": "Ivan"}}, "attendance": {"2024-01-10": {"1": "yes"}}, "schedule": [1], "nextStudentId": 2}`
	put(t, f.db, DataKey, corrupt)
	put(t, f.session, DataKey, sampleData())

	d := f.store.Load(ctx)
	assert.Equal(t, model.Seed(), d)
	assert.True(t, f.store.Corrupted())
	assert.Equal(t, corrupt, string(raw(t, f.db, DataKey)))

	assert.False(t, f.store.Save(ctx, d))
	assert.Equal(t, corrupt, string(raw(t, f.db, DataKey)))
	assert.Equal(t, 1.0, counter(t, f.metrics, "rollcall_save_failures_total"))
}

func TestLoad_RepairedPrimaryClearsCorruption(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	put(t, f.db, DataKey, `{"groups": 5}`)
	f.store.Load(ctx)
	require.True(t, f.store.Corrupted())

	put(t, f.db, DataKey, sampleData())
	assert.Equal(t, sampleData(), f.store.Load(ctx))
	assert.False(t, f.store.Corrupted())
	assert.True(t, f.store.Save(ctx, sampleData()))
}

func TestLoad_NullPayloadCountsAsAbsent(t *testing.T) {
	f := newFixture(t, nil)

	put(t, f.db, DataKey, "null")

	d := f.store.Load(context.Background())
	assert.Equal(t, model.Seed(), d)
}

func TestIsOwnWrite(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.False(t, f.store.IsOwnWrite([]byte("{}")))

	require.True(t, f.store.Save(ctx, sampleData()))
	assert.True(t, f.store.IsOwnWrite(raw(t, f.db, DataKey)))

	other := sampleData()
	other.NextStudentID = 99
	b, err := json.Marshal(other)
	require.NoError(t, err)
	assert.False(t, f.store.IsOwnWrite(b))
}
