package service

import (
	"context"
	"time"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
)

// StreakService maintains the per-(user, template) consecutive-day
// counters. It is driven by the routine instance transitions and read
// directly by the API.
type StreakService struct {
	repo *repository.StreakRepository
}

func NewStreakService(repo *repository.StreakRepository) *StreakService {
	return &StreakService{repo: repo}
}

// RecordCompletion updates the streak for a completion or partial on
// the given date (YYYY-MM-DD). Completing the same date twice is a
// no-op, as is any date older than the last recorded one; the next
// day extends the run; anything else restarts it.
func (s *StreakService) RecordCompletion(ctx context.Context, userID, templateID, date string) (*model.Streak, error) {
	streak, err := s.repo.GetOrCreate(ctx, userID, templateID)
	if err != nil {
		return nil, apperr.FromDB(err, "streak")
	}

	switch {
	case streak.LastCompletedDate == date:
		return streak, nil
	case streak.LastCompletedDate != "" && date < streak.LastCompletedDate:
		// The chain only ever moves forward.
		return streak, nil
	case streak.LastCompletedDate != "" && nextDay(streak.LastCompletedDate) == date:
		streak.CurrentStreak++
	default:
		streak.CurrentStreak = 1
	}
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastCompletedDate = date

	if err := s.repo.Save(ctx, streak); err != nil {
		return nil, apperr.FromDB(err, "streak")
	}
	return streak, nil
}

// RecordSkip resets the current run. The longest run is untouched.
func (s *StreakService) RecordSkip(ctx context.Context, userID, templateID string) (*model.Streak, error) {
	streak, err := s.repo.GetOrCreate(ctx, userID, templateID)
	if err != nil {
		return nil, apperr.FromDB(err, "streak")
	}
	streak.CurrentStreak = 0
	if err := s.repo.Save(ctx, streak); err != nil {
		return nil, apperr.FromDB(err, "streak")
	}
	return streak, nil
}

func (s *StreakService) List(ctx context.Context, userID string) ([]model.Streak, error) {
	streaks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "streaks")
	}
	return streaks, nil
}

func nextDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}
