package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vttlabs/lifeos/internal/apperr"
)

// fakeClock replaces the timer's time source so elapsed time is exact.
type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time          { return c.at }
func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func newTimerFixture(t *testing.T) (*testEnv, *fakeClock, string) {
	t.Helper()
	env := newTestEnv(t)
	clock := &fakeClock{at: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	env.timers.now = clock.now
	task := env.seedTask(t, "Deep work", nil)
	return env, clock, task.ID
}

func TestTimerStartPauseAccumulates(t *testing.T) {
	env, clock, taskID := newTimerFixture(t)
	ctx := context.Background()

	state, err := env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.True(t, state.IsRunning)
	require.Equal(t, 0, state.AccumulatedSeconds)

	clock.advance(10 * time.Minute)
	state, err = env.timers.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 600, state.ElapsedSeconds, "running elapsed is recomputed on read")

	state, err = env.timers.Pause(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.False(t, state.IsRunning)
	require.Equal(t, 600, state.AccumulatedSeconds)

	// Paused time does not accrue.
	clock.advance(time.Hour)
	state, err = env.timers.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 600, state.ElapsedSeconds)

	// A second run adds onto the accumulator.
	_, err = env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	clock.advance(5 * time.Minute)
	state, err = env.timers.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 900, state.ElapsedSeconds)
}

func TestTimerDoubleStartRejected(t *testing.T) {
	env, _, taskID := newTimerFixture(t)
	ctx := context.Background()

	_, err := env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	_, err = env.timers.Start(ctx, env.userID, taskID)
	require.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestTimerPauseWithoutRunRejected(t *testing.T) {
	env, _, taskID := newTimerFixture(t)
	_, err := env.timers.Pause(context.Background(), env.userID, taskID)
	require.True(t, apperr.Is(err, apperr.InvalidState))
}

func TestTimerStopPersistsRoundedMinutes(t *testing.T) {
	env, clock, taskID := newTimerFixture(t)
	ctx := context.Background()

	_, err := env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	clock.advance(25*time.Minute + 40*time.Second) // rounds up to 26

	state, err := env.timers.Stop(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.False(t, state.IsRunning)
	require.Equal(t, 0, state.AccumulatedSeconds, "stop resets the accumulator")

	task, err := env.tasks.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 26, task.ActualMinutes)

	// A later session adds on top.
	_, err = env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	clock.advance(10 * time.Minute)
	_, err = env.timers.Stop(ctx, env.userID, taskID)
	require.NoError(t, err)

	task, err = env.tasks.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 36, task.ActualMinutes)
}

func TestTimerStopWhilePausedKeepsTotal(t *testing.T) {
	env, clock, taskID := newTimerFixture(t)
	ctx := context.Background()

	_, err := env.timers.Start(ctx, env.userID, taskID)
	require.NoError(t, err)
	clock.advance(4 * time.Minute)
	_, err = env.timers.Pause(ctx, env.userID, taskID)
	require.NoError(t, err)

	_, err = env.timers.Stop(ctx, env.userID, taskID)
	require.NoError(t, err)

	task, err := env.tasks.Get(ctx, env.userID, taskID)
	require.NoError(t, err)
	require.Equal(t, 4, task.ActualMinutes)
}

func TestTimerUnknownTaskIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.timers.Start(context.Background(), env.userID, "no-such-task")
	require.True(t, apperr.Is(err, apperr.NotFound))
}
