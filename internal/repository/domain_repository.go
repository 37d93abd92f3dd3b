package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// DomainRepository manages life-area domains.
type DomainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) *DomainRepository {
	return &DomainRepository{db: db}
}

func (r *DomainRepository) Create(ctx context.Context, domain *model.Domain) error {
	if domain.ID == "" {
		domain.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(domain).Error; err != nil {
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

func (r *DomainRepository) Save(ctx context.Context, domain *model.Domain) error {
	if err := r.db.WithContext(ctx).Save(domain).Error; err != nil {
		return fmt.Errorf("save domain: %w", err)
	}
	return nil
}

func (r *DomainRepository) FindByID(ctx context.Context, userID, id string) (*model.Domain, error) {
	var domain model.Domain
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&domain).Error; err != nil {
		return nil, err
	}
	return &domain, nil
}

func (r *DomainRepository) ListByUser(ctx context.Context, userID string) ([]model.Domain, error) {
	var domains []model.Domain
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC, name ASC").Find(&domains).Error; err != nil {
		return nil, err
	}
	return domains, nil
}

// LinkCounts reports how many templates, tasks and projects still
// reference the domain. Deletion is refused while any are non-zero.
type LinkCounts struct {
	Templates int64
	Tasks     int64
	Projects  int64
}

func (c LinkCounts) Total() int64 { return c.Templates + c.Tasks + c.Projects }

func (r *DomainRepository) CountLinks(ctx context.Context, userID, domainID string) (LinkCounts, error) {
	var counts LinkCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.RoutineTemplate{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).Count(&counts.Templates).Error; err != nil {
		return counts, fmt.Errorf("count linked templates: %w", err)
	}
	if err := db.Model(&model.Task{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).Count(&counts.Tasks).Error; err != nil {
		return counts, fmt.Errorf("count linked tasks: %w", err)
	}
	if err := db.Model(&model.Project{}).
		Where("user_id = ? AND domain_id = ?", userID, domainID).Count(&counts.Projects).Error; err != nil {
		return counts, fmt.Errorf("count linked projects: %w", err)
	}
	return counts, nil
}

func (r *DomainRepository) Delete(ctx context.Context, userID, id string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Domain{}).Error; err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	return nil
}
