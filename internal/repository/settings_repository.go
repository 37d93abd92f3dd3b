package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// SettingsRepository stores per-user planner settings.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetOrDefault returns the user's settings, creating the default row
// on first access.
func (r *SettingsRepository) GetOrDefault(ctx context.Context, userID string) (*model.PlannerSettings, error) {
	var settings model.PlannerSettings
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case err == nil:
		return &settings, nil
	case err == gorm.ErrRecordNotFound:
		settings = model.PlannerSettings{
			ID:                   uuid.New().String(),
			UserID:               userID,
			TimeBlocks:           model.DefaultTimeBlocks(),
			WakeTime:             "07:00",
			SleepTime:            "23:00",
			LunchBreakStart:      "13:00",
			LunchBreakDuration:   45,
			AutoPositionRoutines: true,
			AutoPositionTasks:    true,
		}
		if err := db.Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("create settings: %w", err)
		}
		return &settings, nil
	default:
		return nil, fmt.Errorf("find settings: %w", err)
	}
}

func (r *SettingsRepository) Save(ctx context.Context, settings *model.PlannerSettings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
