package service

import (
	"context"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// SettingsInput carries the editable planner settings.
type SettingsInput struct {
	TimeBlocks           map[model.Moment]model.TimeBlock `json:"time_blocks"`
	WakeTime             string                           `json:"wake_time"`
	SleepTime            string                           `json:"sleep_time"`
	LunchBreakStart      string                           `json:"lunch_break_start"`
	LunchBreakDuration   int                              `json:"lunch_break_duration"`
	AutoPositionRoutines bool                             `json:"auto_position_routines"`
	AutoPositionTasks    bool                             `json:"auto_position_tasks"`
}

// SettingsService reads and writes the per-user allocator settings.
type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (*model.PlannerSettings, error) {
	settings, err := s.settings.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "settings")
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, userID string, input SettingsInput) (*model.PlannerSettings, error) {
	for moment, block := range input.TimeBlocks {
		if !moment.Valid() {
			return nil, apperr.New(apperr.ValidationError, "unknown time block %q", moment)
		}
		if _, _, ok := window(block.Start, block.End); !ok {
			return nil, apperr.New(apperr.ValidationError, "invalid window for %s block", moment)
		}
	}

	settings, err := s.settings.GetOrDefault(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "settings")
	}
	if input.TimeBlocks != nil {
		settings.TimeBlocks = input.TimeBlocks
	}
	if input.WakeTime != "" {
		settings.WakeTime = input.WakeTime
	}
	if input.SleepTime != "" {
		settings.SleepTime = input.SleepTime
	}
	if input.LunchBreakStart != "" {
		settings.LunchBreakStart = input.LunchBreakStart
	}
	if input.LunchBreakDuration > 0 {
		settings.LunchBreakDuration = input.LunchBreakDuration
	}
	settings.AutoPositionRoutines = input.AutoPositionRoutines
	settings.AutoPositionTasks = input.AutoPositionTasks

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, apperr.FromDB(err, "settings")
	}
	return settings, nil
}
