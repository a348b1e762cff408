package rollupwarmer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/config"
	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	obscontext "github.com/smallbiznis/hsekpi/internal/observability/context"
	"github.com/smallbiznis/hsekpi/internal/weekcalendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRollup struct {
	rollupdomain.Service

	mu     sync.Mutex
	months []weekcalendar.MonthKey
	runIDs []string
	fail   map[weekcalendar.MonthKey]error
}

func (s *stubRollup) Warm(ctx context.Context, month weekcalendar.MonthKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.months = append(s.months, month)
	s.runIDs = append(s.runIDs, obscontext.RunIDFromContext(ctx))
	return s.fail[month]
}

func newWarmer(stub *stubRollup, now time.Time) *Warmer {
	return New(Params{
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(now),
		Config: config.Config{Rollup: config.RollupRuntimeConfig{WarmerInterval: time.Hour}},
		Rollup: stub,
	})
}

func TestRunOnceWarmsCurrentAndPreviousMonth(t *testing.T) {
	stub := &stubRollup{}
	w := newWarmer(stub, time.Date(2024, time.January, 3, 6, 0, 0, 0, time.UTC))

	require.NoError(t, w.RunOnce(context.Background()))
	assert.Equal(t, []weekcalendar.MonthKey{
		{Year: 2024, Month: time.January},
		{Year: 2023, Month: time.December},
	}, stub.months)

	require.Len(t, stub.runIDs, 2)
	assert.NotEmpty(t, stub.runIDs[0])
	assert.Equal(t, stub.runIDs[0], stub.runIDs[1], "one run id per pass")
}

func TestRunOnceJoinsMonthFailures(t *testing.T) {
	feb := weekcalendar.MonthKey{Year: 2024, Month: time.February}
	stub := &stubRollup{fail: map[weekcalendar.MonthKey]error{feb: errors.New("db down")}}
	w := newWarmer(stub, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	err := w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-02")
	assert.Len(t, stub.months, 2)
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	stub := &stubRollup{}
	w := newWarmer(stub, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.RunForever(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("RunForever did not return after cancel")
	}
}
