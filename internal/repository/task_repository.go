package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/model"
)

// TaskRepository handles CRUD for tasks and their timers.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.TaskBacklog
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string, statuses []model.TaskStatus) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	var tasks []model.Task
	if err := db.Order("due_date ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListForDate returns plannable tasks due on or pinned to the date.
func (r *TaskRepository) ListForDate(ctx context.Context, userID, date string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ? AND (due_date = ? OR scheduled_date = ?)",
			userID, model.PlannableStatuses, date, date).
		Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListCompletedBetween returns tasks finished inside [from, to].
func (r *TaskRepository) ListCompletedBetween(ctx context.Context, userID string, from, to string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL AND DATE(completed_at) >= ? AND DATE(completed_at) <= ?",
			userID, model.TaskDone, from, to).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) CountSubtasks(ctx context.Context, taskID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("parent_task_id = ?", taskID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count subtasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) CountByProject(ctx context.Context, projectID string) (total, done int64, err error) {
	db := r.db.WithContext(ctx).Model(&model.Task{}).Where("project_id = ?", projectID)
	if err = db.Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("count project tasks: %w", err)
	}
	if err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ? AND status = ?", projectID, model.TaskDone).Count(&done).Error; err != nil {
		return 0, 0, fmt.Errorf("count done project tasks: %w", err)
	}
	return total, done, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// FindTimer returns the task's timer, creating the stopped zero state
// on first use.
func (r *TaskRepository) FindTimer(ctx context.Context, userID, taskID string) (*model.TaskTimer, error) {
	var timer model.TaskTimer
	db := r.db.WithContext(ctx)
	err := db.Where("task_id = ?", taskID).First(&timer).Error
	switch {
	case err == nil:
		return &timer, nil
	case err == gorm.ErrRecordNotFound:
		timer = model.TaskTimer{ID: uuid.New().String(), UserID: userID, TaskID: taskID}
		if err := db.Create(&timer).Error; err != nil {
			return nil, fmt.Errorf("create timer: %w", err)
		}
		return &timer, nil
	default:
		return nil, fmt.Errorf("find timer: %w", err)
	}
}

func (r *TaskRepository) SaveTimer(ctx context.Context, timer *model.TaskTimer) error {
	if err := r.db.WithContext(ctx).Save(timer).Error; err != nil {
		return fmt.Errorf("save timer: %w", err)
	}
	return nil
}

// AddActualMinutes accumulates tracked time onto the task row.
func (r *TaskRepository) AddActualMinutes(ctx context.Context, taskID string, minutes int) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		UpdateColumn("actual_minutes", gorm.Expr("actual_minutes + ?", minutes)).Error; err != nil {
		return fmt.Errorf("add actual minutes: %w", err)
	}
	return nil
}
