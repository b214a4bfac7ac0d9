package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"later today", time.Date(2024, 3, 4, 5, 0, 0, 0, loc), time.Date(2024, 3, 4, 6, 30, 0, 0, loc)},
		{"exactly now", time.Date(2024, 3, 4, 6, 30, 0, 0, loc), time.Date(2024, 3, 5, 6, 30, 0, 0, loc)},
		{"tomorrow", time.Date(2024, 3, 4, 23, 0, 0, 0, loc), time.Date(2024, 3, 5, 6, 30, 0, 0, loc)},
		{"other zone", time.Date(2024, 3, 4, 11, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 6, 30, 0, 0, loc)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NextRun(c.now, "06:30", loc)
			require.NoError(t, err)
			assert.True(t, got.Equal(c.want), "got %s want %s", got, c.want)
		})
	}
}

func TestNextRunInvalid(t *testing.T) {
	_, err := NextRun(time.Now(), "6h", nil)
	assert.Error(t, err)
}

func TestDailyRunsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	var ran []string
	fire := make(chan time.Time)
	d := &Daily{
		RunAt:    "06:00",
		Location: time.UTC,
		Jobs: map[string]Job{
			"ok": func(_ context.Context, at time.Time) error {
				mu.Lock()
				ran = append(ran, "ok "+at.Format("15:04"))
				mu.Unlock()
				cancel()
				return nil
			},
			"fail":  func(context.Context, time.Time) error { return errors.New("boom") },
			"panic": func(context.Context, time.Time) error { panic("bad") },
		},
		now:   func() time.Time { return start },
		after: func(time.Duration) <-chan time.Time { return fire },
	}
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	fire <- start

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"ok 06:00"}, ran)
}
