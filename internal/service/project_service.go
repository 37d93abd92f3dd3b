package service

import (
	"context"
	"math"
	"strings"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// ProjectInput carries the user-editable project fields.
type ProjectInput struct {
	Name       string
	DomainID   *string
	Status     model.ProjectStatus
	StartDate  string
	TargetDate string
}

// ProjectProgress is the derived completion view; it is computed on
// read and never stored.
type ProjectProgress struct {
	Project    model.Project `json:"project"`
	TotalTasks int64         `json:"total_tasks"`
	DoneTasks  int64         `json:"done_tasks"`
	Percent    float64       `json:"percent"`
}

// ProjectService manages projects and derives their progress.
type ProjectService struct {
	projects *repository.ProjectRepository
	tasks    *repository.TaskRepository
}

func NewProjectService(projects *repository.ProjectRepository, tasks *repository.TaskRepository) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks}
}

func (s *ProjectService) Create(ctx context.Context, userID string, input ProjectInput) (*model.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "project name is required")
	}
	project := model.Project{
		UserID:     userID,
		Name:       strings.TrimSpace(input.Name),
		DomainID:   input.DomainID,
		Status:     statusOrActive(input.Status),
		StartDate:  input.StartDate,
		TargetDate: input.TargetDate,
	}
	if err := s.projects.Create(ctx, &project); err != nil {
		return nil, apperr.FromDB(err, "project")
	}
	return &project, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id string, input ProjectInput) (*model.Project, error) {
	project, err := s.projects.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "project")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.ValidationError, "project name is required")
	}
	project.Name = strings.TrimSpace(input.Name)
	project.DomainID = input.DomainID
	project.Status = statusOrActive(input.Status)
	project.StartDate = input.StartDate
	project.TargetDate = input.TargetDate
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, apperr.FromDB(err, "project")
	}
	return project, nil
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]ProjectProgress, error) {
	projects, err := s.projects.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "projects")
	}
	out := make([]ProjectProgress, 0, len(projects))
	for _, project := range projects {
		progress, err := s.progress(ctx, project)
		if err != nil {
			return nil, err
		}
		out = append(out, progress)
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, id string) (*ProjectProgress, error) {
	project, err := s.projects.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "project")
	}
	progress, err := s.progress(ctx, *project)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Delete removes a project; its tasks must be detached first.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	project, err := s.projects.FindByID(ctx, userID, id)
	if err != nil {
		return apperr.FromDB(err, "project")
	}
	total, _, err := s.tasks.CountByProject(ctx, project.ID)
	if err != nil {
		return apperr.FromDB(err, "project tasks")
	}
	if total > 0 {
		return apperr.New(apperr.ValidationError, "project still has %d task(s); detach or remove them first", total)
	}
	if err := s.projects.Delete(ctx, userID, id); err != nil {
		return apperr.FromDB(err, "project")
	}
	return nil
}

func (s *ProjectService) progress(ctx context.Context, project model.Project) (ProjectProgress, error) {
	total, done, err := s.tasks.CountByProject(ctx, project.ID)
	if err != nil {
		return ProjectProgress{}, apperr.FromDB(err, "project tasks")
	}
	progress := ProjectProgress{Project: project, TotalTasks: total, DoneTasks: done}
	if total > 0 {
		progress.Percent = math.Round(float64(done)/float64(total)*10000) / 100
	}
	return progress, nil
}

func statusOrActive(status model.ProjectStatus) model.ProjectStatus {
	switch status {
	case model.ProjectActive, model.ProjectPaused, model.ProjectCompleted, model.ProjectArchived:
		return status
	}
	return model.ProjectActive
}
