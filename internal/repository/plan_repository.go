package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// PlanRepository manages generated plans and their slot sets. Slot
// batches are written inside one transaction so an aborted generate
// never leaves a half-written plan.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindByDate loads the plan for (user, date) with slots in order.
func (r *PlanRepository) FindByDate(ctx context.Context, userID, date string) (*model.GeneratedPlan, error) {
	var plan model.GeneratedPlan
	err := r.db.WithContext(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("user_id = ? AND date = ?", userID, date).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateWithSlots inserts the plan row and its slots atomically. A
// duplicate (user, date) surfaces as gorm.ErrDuplicatedKey, which is
// how a losing concurrent generate learns it lost.
func (r *PlanRepository) CreateWithSlots(ctx context.Context, plan *model.GeneratedPlan, slots []model.PlanSlot) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Slots").Create(plan).Error; err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		for i := range slots {
			slots[i].PlanID = plan.ID
			if slots[i].ID == "" {
				slots[i].ID = uuid.New().String()
			}
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return fmt.Errorf("create slots: %w", err)
			}
		}
		plan.Slots = slots
		return nil
	})
}

// ReplaceSlots swaps the plan's slot set atomically, keeping the rows
// whose IDs are listed in preserved untouched.
func (r *PlanRepository) ReplaceSlots(ctx context.Context, plan *model.GeneratedPlan, preserved []string, slots []model.PlanSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("plan_id = ?", plan.ID)
		if len(preserved) > 0 {
			del = del.Where("id NOT IN ?", preserved)
		}
		if err := del.Delete(&model.PlanSlot{}).Error; err != nil {
			return fmt.Errorf("clear slots: %w", err)
		}
		for i := range slots {
			slots[i].PlanID = plan.ID
			if slots[i].ID == "" {
				slots[i].ID = uuid.New().String()
			}
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return fmt.Errorf("create slots: %w", err)
			}
		}
		if err := tx.Omit("Slots").Save(plan).Error; err != nil {
			return fmt.Errorf("save plan: %w", err)
		}
		return nil
	})
}

// UpdateSlotOrder rewrites sort_order for the given slot IDs.
func (r *PlanRepository) UpdateSlotOrder(ctx context.Context, planID string, ordered []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ordered {
			if err := tx.Model(&model.PlanSlot{}).
				Where("plan_id = ? AND id = ?", planID, id).
				UpdateColumn("sort_order", i).Error; err != nil {
				return fmt.Errorf("order slot: %w", err)
			}
		}
		return nil
	})
}
