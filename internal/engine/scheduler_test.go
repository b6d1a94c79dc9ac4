package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/shopee-partner/internal/engine"
	"github.com/ordersync/shopee-partner/pkg/logger"
)

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	eng := engine.New(&fakeSource{}, &fakeStore{}, engine.WithLogger(logger.Nop()))

	sched, err := engine.NewScheduler(eng, 15*time.Minute, logger.Nop())
	require.NoError(t, err)
	assert.Len(t, sched.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	eng := engine.New(&fakeSource{}, &fakeStore{}, engine.WithLogger(logger.Nop()))

	sched, err := engine.NewScheduler(eng, time.Hour, logger.Nop())
	require.NoError(t, err)

	sched.Start()

	select {
	case <-sched.Stop().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}
