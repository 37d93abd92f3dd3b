package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreakConsecutiveDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := "tpl-1"

	for i, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03"} {
		streak, err := env.streaks.RecordCompletion(ctx, env.userID, templateID, date)
		require.NoError(t, err)
		require.Equal(t, i+1, streak.CurrentStreak)
	}

	streak, err := env.streaks.RecordCompletion(ctx, env.userID, templateID, "2026-03-03")
	require.NoError(t, err)
	require.Equal(t, 3, streak.CurrentStreak, "same-day completion must not double count")
	require.Equal(t, 3, streak.LongestStreak)
}

func TestStreakGapResets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := "tpl-1"

	_, err := env.streaks.RecordCompletion(ctx, env.userID, templateID, "2026-03-01")
	require.NoError(t, err)

	// Skipping 2026-03-02 entirely.
	streak, err := env.streaks.RecordCompletion(ctx, env.userID, templateID, "2026-03-03")
	require.NoError(t, err)
	require.Equal(t, 1, streak.CurrentStreak)
	require.Equal(t, 1, streak.LongestStreak)
}

func TestStreakSkipResetsCurrentOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	templateID := "tpl-1"

	for _, date := range []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04"} {
		_, err := env.streaks.RecordCompletion(ctx, env.userID, templateID, date)
		require.NoError(t, err)
	}

	streak, err := env.streaks.RecordSkip(ctx, env.userID, templateID)
	require.NoError(t, err)
	require.Equal(t, 0, streak.CurrentStreak)
	require.Equal(t, 4, streak.LongestStreak, "longest streak survives a skip")
}

func TestStreakIgnoresOlderDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.streaks.RecordCompletion(ctx, env.userID, "tpl-1", "2026-03-04")
	require.NoError(t, err)
	_, err = env.streaks.RecordCompletion(ctx, env.userID, "tpl-1", "2026-03-05")
	require.NoError(t, err)

	// A stale date must not drag the chain backward.
	streak, err := env.streaks.RecordCompletion(ctx, env.userID, "tpl-1", "2026-03-02")
	require.NoError(t, err)
	require.Equal(t, "2026-03-05", streak.LastCompletedDate)
	require.Equal(t, 2, streak.CurrentStreak)
}

func TestStreakMonthBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.streaks.RecordCompletion(ctx, env.userID, "tpl-1", "2026-02-28")
	require.NoError(t, err)
	streak, err := env.streaks.RecordCompletion(ctx, env.userID, "tpl-1", "2026-03-01")
	require.NoError(t, err)
	require.Equal(t, 2, streak.CurrentStreak)
}
