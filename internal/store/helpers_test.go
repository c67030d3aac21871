package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/rollcall/internal/kv"
	"github.com/roach88/rollcall/internal/metrics"
	"github.com/roach88/rollcall/internal/model"
	"github.com/roach88/rollcall/internal/testutil"
)

type fixture struct {
	store   *Store
	primary *testutil.FailingTier
	db      *kv.SQLite
	session *kv.Memory
	clock   *testutil.FixedClock
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, sqliteOpts []kv.SQLiteOption, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		db:      testutil.OpenSQLite(t, sqliteOpts...),
		session: kv.NewMemory(0),
		clock:   testutil.NewFixedClock(time.Date(2024, time.January, 20, 10, 0, 0, 0, time.UTC)),
		metrics: metrics.New(),
	}
	f.primary = testutil.NewFailingTier(f.db)

	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(f.clock),
		WithMetrics(f.metrics),
		WithTokenGenerator(testutil.NewSequentialTokens("op").Next),
	}
	f.store = New(f.primary, f.session, append(base, opts...)...)
	return f
}

// raw returns the payload under key in tier, failing the test if absent.
func raw(t *testing.T, tier kv.Tier, key string) []byte {
	t.Helper()
	b, ok, err := tier.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "key %q missing from %s tier", key, tier.Name())
	return b
}

func absent(t *testing.T, tier kv.Tier, key string) {
	t.Helper()
	_, ok, err := tier.Get(context.Background(), key)
	require.NoError(t, err)
	require.False(t, ok, "key %q unexpectedly present in %s tier", key, tier.Name())
}

func put(t *testing.T, tier kv.Tier, key string, v any) {
	t.Helper()
	var b []byte
	switch v := v.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		var err error
		b, err = json.Marshal(v)
		require.NoError(t, err)
	}
	require.NoError(t, tier.Set(context.Background(), key, b))
}

// sampleData is a small consistent state: two groups, three students, one day.
func sampleData() *model.Data {
	d := model.New()
	d.Groups.Add("Morning")
	d.Groups.Add("Evening")
	d.Students[1] = model.Student{ID: 1, Name: "Ivan"}
	d.Students[2] = model.Student{ID: 2, Name: "Olga"}
	d.Students[3] = model.Student{ID: 3, Name: "Petr"}
	d.Groups.Append("Morning", 1)
	d.Groups.Append("Morning", 2)
	d.Groups.Append("Evening", 3)
	d.Attendance.Set("2024-01-10", 1, model.Present)
	d.Attendance.Set("2024-01-10", 3, model.Absent)
	d.Schedule = []time.Weekday{time.Monday, time.Wednesday}
	d.NextStudentID = 4
	return d
}

// counter reads a counter value from the registry. labels are name/value pairs.
func counter(t *testing.T, m *metrics.Metrics, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				found := false
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						found = true
					}
				}
				if !found {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}
