package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
)

func TestSettingsSeededOnFirstRead(t *testing.T) {
	env := newTestEnv(t)
	settings, err := env.settings.Get(context.Background(), env.userID)
	require.NoError(t, err)
	require.Equal(t, "07:00", settings.WakeTime)
	require.Equal(t, "23:00", settings.SleepTime)
	require.Equal(t, "13:00", settings.LunchBreakStart)
	require.Equal(t, 45, settings.LunchBreakDuration)
	require.True(t, settings.AutoPositionRoutines)
	require.True(t, settings.AutoPositionTasks)
}

func TestSettingsUpdateValidatesBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.settings.Update(ctx, env.userID, SettingsInput{
		TimeBlocks: map[model.Moment]model.TimeBlock{
			"dawn": {Start: "05:00", End: "06:00"},
		},
	})
	require.True(t, apperr.Is(err, apperr.ValidationError))

	_, err = env.settings.Update(ctx, env.userID, SettingsInput{
		TimeBlocks: map[model.Moment]model.TimeBlock{
			model.MomentMorning: {Start: "11:00", End: "08:00"},
		},
	})
	require.True(t, apperr.Is(err, apperr.ValidationError))
}

func TestSettingsCustomBlocksMergeWithDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	updated, err := env.settings.Update(ctx, env.userID, SettingsInput{
		TimeBlocks: map[model.Moment]model.TimeBlock{
			model.MomentMorning: {Start: "05:00", End: "09:00"},
		},
		AutoPositionRoutines: true,
		AutoPositionTasks:    true,
	})
	require.NoError(t, err)

	blocks := updated.Blocks()
	require.Equal(t, model.TimeBlock{Start: "05:00", End: "09:00"}, blocks[model.MomentMorning])
	// Unset blocks fall back to the defaults.
	require.Equal(t, model.DefaultTimeBlocks()[model.MomentEvening], blocks[model.MomentEvening])
}
