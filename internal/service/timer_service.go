package service

import (
	"context"
	"time"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/repository"
)

// TimerState is the authoritative timer view returned to callers.
// ElapsedSeconds is recomputed on every read, so a client that
// restarts mid-run loses nothing.
type TimerState struct {
	TaskID             string     `json:"task_id"`
	IsRunning          bool       `json:"is_running"`
	AccumulatedSeconds int        `json:"accumulated_seconds"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	ElapsedSeconds     int        `json:"elapsed_seconds"`
}

// TimerService accumulates active time per task across
// start/pause/stop cycles.
type TimerService struct {
	tasks *repository.TaskRepository
	now   func() time.Time
}

func NewTimerService(tasks *repository.TaskRepository) *TimerService {
	return &TimerService{tasks: tasks, now: time.Now}
}

func (s *TimerService) Get(ctx context.Context, userID, taskID string) (*TimerState, error) {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	timer, err := s.tasks.FindTimer(ctx, userID, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	return s.state(timer.TaskID, timer.IsRunning, timer.AccumulatedSeconds, timer.StartedAt), nil
}

func (s *TimerService) Start(ctx context.Context, userID, taskID string) (*TimerState, error) {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return nil, apperr.FromDB(err, "task")
	}
	timer, err := s.tasks.FindTimer(ctx, userID, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	if timer.IsRunning {
		return nil, apperr.New(apperr.InvalidState, "timer is already running")
	}
	now := s.now()
	timer.IsRunning = true
	timer.StartedAt = &now
	if err := s.tasks.SaveTimer(ctx, timer); err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	return s.state(timer.TaskID, true, timer.AccumulatedSeconds, timer.StartedAt), nil
}

func (s *TimerService) Pause(ctx context.Context, userID, taskID string) (*TimerState, error) {
	timer, err := s.tasks.FindTimer(ctx, userID, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	if !timer.IsRunning {
		return nil, apperr.New(apperr.InvalidState, "timer is not running")
	}
	timer.AccumulatedSeconds += s.elapsedSince(timer.StartedAt)
	timer.IsRunning = false
	timer.StartedAt = nil
	if err := s.tasks.SaveTimer(ctx, timer); err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	return s.state(timer.TaskID, false, timer.AccumulatedSeconds, nil), nil
}

// Stop pauses if needed, persists the rounded total onto the task's
// actual_minutes, and resets the accumulator.
func (s *TimerService) Stop(ctx context.Context, userID, taskID string) (*TimerState, error) {
	timer, err := s.tasks.FindTimer(ctx, userID, taskID)
	if err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	total := timer.AccumulatedSeconds
	if timer.IsRunning {
		total += s.elapsedSince(timer.StartedAt)
	}

	minutes := (total + 30) / 60 // round to nearest minute
	if minutes > 0 {
		if err := s.tasks.AddActualMinutes(ctx, taskID, minutes); err != nil {
			return nil, apperr.FromDB(err, "task")
		}
	}

	timer.IsRunning = false
	timer.StartedAt = nil
	timer.AccumulatedSeconds = 0
	if err := s.tasks.SaveTimer(ctx, timer); err != nil {
		return nil, apperr.FromDB(err, "timer")
	}
	return s.state(timer.TaskID, false, 0, nil), nil
}

func (s *TimerService) elapsedSince(startedAt *time.Time) int {
	if startedAt == nil {
		return 0
	}
	elapsed := int(s.now().Sub(*startedAt).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s *TimerService) state(taskID string, running bool, accumulated int, startedAt *time.Time) *TimerState {
	state := &TimerState{
		TaskID:             taskID,
		IsRunning:          running,
		AccumulatedSeconds: accumulated,
		StartedAt:          startedAt,
		ElapsedSeconds:     accumulated,
	}
	if running {
		state.ElapsedSeconds += s.elapsedSince(startedAt)
	}
	return state
}
