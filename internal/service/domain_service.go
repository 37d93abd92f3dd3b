package service

import (
	"context"
	"strings"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// DomainInput carries the user-editable domain fields.
type DomainInput struct {
	Name                string
	Color               string
	Icon                string
	SortOrder           int
	IsDefault           bool
	DailyTargetMinutes  *int
	WeeklyTargetMinutes *int
}

// DomainService manages life-area domains. Domains are referenced,
// never owned, by templates/tasks/projects, so deletion is guarded.
type DomainService struct {
	domains *repository.DomainRepository
}

func NewDomainService(domains *repository.DomainRepository) *DomainService {
	return &DomainService{domains: domains}
}

func (s *DomainService) Create(ctx context.Context, userID string, input DomainInput) (*model.Domain, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "domain name is required")
	}
	domain := model.Domain{
		UserID:              userID,
		Name:                strings.TrimSpace(input.Name),
		Color:               input.Color,
		Icon:                input.Icon,
		SortOrder:           input.SortOrder,
		IsDefault:           input.IsDefault,
		DailyTargetMinutes:  input.DailyTargetMinutes,
		WeeklyTargetMinutes: input.WeeklyTargetMinutes,
	}
	if err := s.domains.Create(ctx, &domain); err != nil {
		return nil, apperr.FromDB(err, "domain")
	}
	return &domain, nil
}

func (s *DomainService) Update(ctx context.Context, userID, id string, input DomainInput) (*model.Domain, error) {
	domain, err := s.domains.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "domain")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "domain name is required")
	}
	domain.Name = strings.TrimSpace(input.Name)
	domain.Color = input.Color
	domain.Icon = input.Icon
	domain.SortOrder = input.SortOrder
	domain.IsDefault = input.IsDefault
	domain.DailyTargetMinutes = input.DailyTargetMinutes
	domain.WeeklyTargetMinutes = input.WeeklyTargetMinutes
	if err := s.domains.Save(ctx, domain); err != nil {
		return nil, apperr.FromDB(err, "domain")
	}
	return domain, nil
}

func (s *DomainService) List(ctx context.Context, userID string) ([]model.Domain, error) {
	domains, err := s.domains.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "domains")
	}
	return domains, nil
}

func (s *DomainService) Get(ctx context.Context, userID, id string) (*model.Domain, error) {
	domain, err := s.domains.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "domain")
	}
	return domain, nil
}

// Delete removes a domain only when nothing references it.
func (s *DomainService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.domains.FindByID(ctx, userID, id); err != nil {
		return apperr.FromDB(err, "domain")
	}
	counts, err := s.domains.CountLinks(ctx, userID, id)
	if err != nil {
		return apperr.FromDB(err, "domain links")
	}
	if counts.Total() > 0 {
		return apperr.New(apperr.ValidationError,
			"domain is still referenced by %d routine(s), %d task(s) and %d project(s); reassign or remove them first",
			counts.Templates, counts.Tasks, counts.Projects)
	}
	if err := s.domains.Delete(ctx, userID, id); err != nil {
		return apperr.FromDB(err, "domain")
	}
	return nil
}
