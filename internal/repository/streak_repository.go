package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// StreakRepository stores the derived streak rows.
type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

func (r *StreakRepository) GetOrCreate(ctx context.Context, userID, templateID string) (*model.Streak, error) {
	var streak model.Streak
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND template_id = ?", userID, templateID).First(&streak).Error
	switch {
	case err == nil:
		return &streak, nil
	case err == gorm.ErrRecordNotFound:
		streak = model.Streak{ID: uuid.New().String(), UserID: userID, TemplateID: templateID}
		if err := db.Create(&streak).Error; err != nil {
			return nil, fmt.Errorf("create streak: %w", err)
		}
		return &streak, nil
	default:
		return nil, fmt.Errorf("find streak: %w", err)
	}
}

func (r *StreakRepository) Save(ctx context.Context, streak *model.Streak) error {
	if err := r.db.WithContext(ctx).Save(streak).Error; err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

func (r *StreakRepository) ListByUser(ctx context.Context, userID string) ([]model.Streak, error) {
	var streaks []model.Streak
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("current_streak DESC").Find(&streaks).Error; err != nil {
		return nil, err
	}
	return streaks, nil
}
