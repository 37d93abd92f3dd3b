package service

import (
	"context"
	"strings"
	"time"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// TaskInput represents data required to create or update a task.
type TaskInput struct {
	Title            string
	Description      string
	DomainID         *string
	ProjectID        *string
	ParentTaskID     *string
	Priority         model.Priority
	DueDate          string
	DueTime          string
	ScheduledDate    string
	EstimatedMinutes int
	IsDeadlineStrict bool
}

// taskTransitions is the forward edge set of the status machine.
// Cancelled and archived are additionally reachable from anywhere.
var taskTransitions = map[model.TaskStatus][]model.TaskStatus{
	model.TaskBacklog:    {model.TaskTodo},
	model.TaskTodo:       {model.TaskInProgress},
	model.TaskInProgress: {model.TaskDone, model.TaskBlocked},
	model.TaskBlocked:    {model.TaskInProgress},
	model.TaskDone:       {model.TaskArchived},
	model.TaskCancelled:  {model.TaskArchived},
	model.TaskArchived:   {},
}

// TaskService wraps task business logic: CRUD, the status state
// machine, and the subtask/reference guards.
type TaskService struct {
	tasks *repository.TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks *repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.New(apperr.ValidationError, "task title is required")
	}
	task := model.Task{
		UserID:           userID,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		DomainID:         input.DomainID,
		ProjectID:        input.ProjectID,
		ParentTaskID:     input.ParentTaskID,
		Priority:         priorityOrDefault(input.Priority),
		Status:           model.TaskBacklog,
		DueDate:          input.DueDate,
		DueTime:          input.DueTime,
		ScheduledDate:    input.ScheduledDate,
		EstimatedMinutes: input.EstimatedMinutes,
		IsDeadlineStrict: input.IsDeadlineStrict,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id string, input TaskInput) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.New(apperr.ValidationError, "task title is required")
	}
	task.Title = strings.TrimSpace(input.Title)
	task.Description = input.Description
	task.DomainID = input.DomainID
	task.ProjectID = input.ProjectID
	task.ParentTaskID = input.ParentTaskID
	task.Priority = priorityOrDefault(input.Priority)
	task.DueDate = input.DueDate
	task.DueTime = input.DueTime
	task.ScheduledDate = input.ScheduledDate
	task.EstimatedMinutes = input.EstimatedMinutes
	task.IsDeadlineStrict = input.IsDeadlineStrict
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	return task, nil
}

// UpdateStatus moves a task through its lifecycle. Direct jumps to
// cancelled or archived are always allowed.
func (s *TaskService) UpdateStatus(ctx context.Context, userID, id string, status model.TaskStatus) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	if !transitionAllowed(task.Status, status) {
		return nil, apperr.New(apperr.InvalidState, "cannot move task from %s to %s", task.Status, status)
	}
	task.Status = status
	if status == model.TaskDone {
		now := s.now()
		task.CompletedAt = &now
	}
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, statuses []model.TaskStatus) ([]model.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID, statuses)
	if err != nil {
		return nil, apperr.FromDB(err, "tasks")
	}
	return tasks, nil
}

// Delete removes a task; subtasks must be removed or detached first.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	task, err := s.tasks.FindByID(ctx, userID, id)
	if err != nil {
		return apperr.FromDB(err, "task")
	}
	subtasks, err := s.tasks.CountSubtasks(ctx, task.ID)
	if err != nil {
		return apperr.FromDB(err, "subtasks")
	}
	if subtasks > 0 {
		return apperr.New(apperr.ValidationError, "task has %d subtask(s); remove them first", subtasks)
	}
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return apperr.FromDB(err, "task")
	}
	return nil
}

func transitionAllowed(from, to model.TaskStatus) bool {
	if from == to {
		return false
	}
	// Anything can be cancelled or archived directly.
	if to == model.TaskCancelled || to == model.TaskArchived {
		return from != model.TaskArchived
	}
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
