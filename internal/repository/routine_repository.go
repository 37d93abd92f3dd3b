package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// RoutineRepository manages routine templates, their dated instances
// and the instance/task links.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) CreateTemplate(ctx context.Context, template *model.RoutineTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *RoutineRepository) SaveTemplate(ctx context.Context, template *model.RoutineTemplate) error {
	if err := r.db.WithContext(ctx).Save(template).Error; err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (r *RoutineRepository) FindTemplate(ctx context.Context, userID, id string) (*model.RoutineTemplate, error) {
	var template model.RoutineTemplate
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *RoutineRepository) ListTemplates(ctx context.Context, userID string, activeOnly bool) ([]model.RoutineTemplate, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	var templates []model.RoutineTemplate
	if err := db.Order("created_at ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *RoutineRepository) DeleteTemplate(ctx context.Context, userID, id string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.RoutineTemplate{}).Error; err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (r *RoutineRepository) TemplateHasInstances(ctx context.Context, templateID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.RoutineInstance{}).
		Where("template_id = ?", templateID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count instances: %w", err)
	}
	return count > 0, nil
}

// CreateInstance inserts one dated occurrence. The unique
// (template_id, scheduled_date) index rejects duplicates; callers
// treat that as already-expanded, which makes expansion idempotent.
func (r *RoutineRepository) CreateInstance(ctx context.Context, instance *model.RoutineInstance) error {
	if instance.ID == "" {
		instance.ID = uuid.New().String()
	}
	if instance.Status == "" {
		instance.Status = model.InstancePending
	}
	if err := r.db.WithContext(ctx).Create(instance).Error; err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	return nil
}

func (r *RoutineRepository) FindInstance(ctx context.Context, userID, id string) (*model.RoutineInstance, error) {
	var instance model.RoutineInstance
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&instance).Error; err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *RoutineRepository) ListInstancesByDate(ctx context.Context, userID, date string) ([]model.RoutineInstance, error) {
	var instances []model.RoutineInstance
	if err := r.db.WithContext(ctx).Where("user_id = ? AND scheduled_date = ?", userID, date).
		Order("scheduled_start ASC, created_at ASC").Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *RoutineRepository) ListInstancesBetween(ctx context.Context, userID, from, to string) ([]model.RoutineInstance, error) {
	var instances []model.RoutineInstance
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND scheduled_date >= ? AND scheduled_date <= ?", userID, from, to).
		Order("scheduled_date ASC").Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

// TransitionInstance applies updates only while the instance is still
// pending. The returned count is zero when another request already
// moved it to a terminal state; the optimistic guard against
// double-counted completions.
func (r *RoutineRepository) TransitionInstance(ctx context.Context, id string, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.RoutineInstance{}).
		Where("id = ? AND status = ?", id, model.InstancePending).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("transition instance: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// AmendInstance updates the backfillable fields regardless of status.
func (r *RoutineRepository) AmendInstance(ctx context.Context, id string, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.RoutineInstance{}).
		Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("amend instance: %w", err)
	}
	return nil
}

func (r *RoutineRepository) LinkTask(ctx context.Context, link *model.RoutineInstanceTask) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return fmt.Errorf("link task: %w", err)
	}
	return nil
}

func (r *RoutineRepository) ListLinkedTasks(ctx context.Context, instanceID string) ([]model.RoutineInstanceTask, error) {
	var links []model.RoutineInstanceTask
	if err := r.db.WithContext(ctx).Where("instance_id = ?", instanceID).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
