package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vttlabs/lifeos/internal/apperr"
	"github.com/vttlabs/lifeos/internal/model"
)

func slotInterval(t *testing.T, slot model.PlanSlot) interval {
	t.Helper()
	start, end, ok := window(slot.StartTime, slot.EndTime)
	require.True(t, ok, "slot %s has window %q-%q", slot.ID, slot.StartTime, slot.EndTime)
	return interval{start: start, end: end}
}

func requireSlotsDisjoint(t *testing.T, slots []model.PlanSlot) {
	t.Helper()
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			a, b := slotInterval(t, slots[i]), slotInterval(t, slots[j])
			require.False(t, a.overlaps(b),
				"slot %s %s-%s overlaps slot %s %s-%s",
				slots[i].ID, slots[i].StartTime, slots[i].EndTime,
				slots[j].ID, slots[j].StartTime, slots[j].EndTime)
		}
	}
}

func slotForEntity(plan *model.GeneratedPlan, entityID string) *model.PlanSlot {
	for i := range plan.Slots {
		if plan.Slots[i].EntityID == entityID {
			return &plan.Slots[i]
		}
	}
	return nil
}

func TestGeneratePlanAllocatesRoutinesAndTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pinned := env.seedTemplate(t, "Gym", func(in *TemplateInput) {
		in.PreferredStart = "07:30"
		in.DurationMinutes = 45
	})
	flexible := env.seedTemplate(t, "Read", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentEvening
		in.DurationMinutes = 30
	})
	task := env.seedTask(t, "File taxes", func(in *TaskInput) {
		in.DueDate = today()
		in.Priority = model.PriorityHigh
		in.EstimatedMinutes = 30
	})

	plan, err := env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.NoError(t, err)
	require.Equal(t, today(), plan.Date)
	require.Equal(t, model.PlanDraft, plan.Status)

	// One slot per entity plus the default lunch break.
	require.Len(t, plan.Slots, 4)
	requireSlotsDisjoint(t, plan.Slots)

	instances, err := env.routines.ListInstances(ctx, env.userID, today())
	require.NoError(t, err)
	byTemplate := map[string]string{}
	for _, instance := range instances {
		byTemplate[instance.TemplateID] = instance.ID
	}

	gym := slotForEntity(plan, byTemplate[pinned.ID])
	require.NotNil(t, gym)
	require.Equal(t, model.SlotRoutine, gym.SlotType)
	require.Equal(t, "07:30", gym.StartTime)
	require.Equal(t, "08:15", gym.EndTime)

	read := slotForEntity(plan, byTemplate[flexible.ID])
	require.NotNil(t, read)
	require.Equal(t, "18:00", read.StartTime, "flexible routine lands at its block start")

	taxes := slotForEntity(plan, task.ID)
	require.NotNil(t, taxes)
	require.Equal(t, model.SlotTask, taxes.SlotType)
	require.Equal(t, model.EntityTask, taxes.EntityType)

	var lunch *model.PlanSlot
	for i := range plan.Slots {
		if plan.Slots[i].SlotType == model.SlotBreak {
			lunch = &plan.Slots[i]
		}
	}
	require.NotNil(t, lunch)
	require.Equal(t, "13:00", lunch.StartTime)
	require.Equal(t, "13:45", lunch.EndTime)
	require.True(t, lunch.IsLocked)

	// Slots come back in start order with dense sort keys.
	for i := range plan.Slots {
		require.Equal(t, i, plan.Slots[i].SortOrder)
		if i > 0 {
			require.LessOrEqual(t, plan.Slots[i-1].StartTime, plan.Slots[i].StartTime)
		}
	}
}

func TestGenerateRejectsExistingPlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedTemplate(t, "Read", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentEvening
	})

	_, err := env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.NoError(t, err)

	_, err = env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.True(t, apperr.Is(err, apperr.AlreadyExists))
}

func TestLosingConcurrentGenerateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := today()

	// Simulate a rival generation winning between the existence check
	// and the insert: just before the plan row is written, a competing
	// row for the same (user, date) lands on the same connection.
	injected := false
	err := env.db.Callback().Create().Before("gorm:create").Register("rival_plan", func(tx *gorm.DB) {
		if injected || tx.Statement == nil || tx.Statement.Table != "generated_plans" {
			return
		}
		injected = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO generated_plans (id, user_id, date, status) VALUES (?, ?, ?, ?)",
			uuid.New().String(), env.userID, date, model.PlanDraft,
		)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.db.Callback().Create().Remove("rival_plan") })

	_, err = env.planner.Generate(ctx, env.userID, date, false, nil)
	require.True(t, injected, "rival row was not injected")
	require.True(t, apperr.Is(err, apperr.Conflict))

	// The rival rode the same transaction, so the loser's rollback
	// removed it too; nothing half-written remains and a retry works.
	plan, err := env.planner.Generate(ctx, env.userID, date, false, nil)
	require.NoError(t, err)
	require.Equal(t, date, plan.Date)
}

func TestGenerateRejectsInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.planner.Generate(context.Background(), env.userID, "01/02/2026", false, nil)
	require.True(t, apperr.Is(err, apperr.ValidationError))
}

func TestRegeneratePreservesLockedSlots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gym := env.seedTemplate(t, "Gym", func(in *TemplateInput) {
		in.PreferredStart = "07:30"
		in.DurationMinutes = 45
	})
	env.seedTemplate(t, "Read", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentEvening
	})

	plan, err := env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.NoError(t, err)

	instances, err := env.routines.ListInstances(ctx, env.userID, today())
	require.NoError(t, err)
	var gymInstance string
	for _, instance := range instances {
		if instance.TemplateID == gym.ID {
			gymInstance = instance.ID
		}
	}
	locked := slotForEntity(plan, gymInstance)
	require.NotNil(t, locked)
	require.NoError(t, env.db.Model(&model.PlanSlot{}).
		Where("id = ?", locked.ID).
		UpdateColumn("is_locked", true).Error)

	// A new due task changes what regeneration has to fit around.
	env.seedTask(t, "Pay rent", func(in *TaskInput) {
		in.DueDate = today()
		in.DueTime = "07:30" // contends with the locked window
	})

	regenerated, err := env.planner.Generate(ctx, env.userID, today(), true, nil)
	require.NoError(t, err)
	require.Equal(t, plan.ID, regenerated.ID, "regeneration keeps the plan row")

	kept := slotForEntity(regenerated, gymInstance)
	require.NotNil(t, kept)
	require.Equal(t, locked.ID, kept.ID, "locked slot survives with its identity")
	require.Equal(t, locked.StartTime, kept.StartTime)
	require.Equal(t, locked.EndTime, kept.EndTime)

	requireSlotsDisjoint(t, regenerated.Slots)
}

func TestRegenerateWithoutFlagStillGuarded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.NoError(t, err)

	fetched, err := env.planner.GetPlanForDate(ctx, env.userID, today())
	require.NoError(t, err)
	require.Equal(t, first.ID, fetched.ID)

	_, err = env.planner.GetPlanForDate(ctx, env.userID, daysFromNow(1))
	require.True(t, apperr.Is(err, apperr.NotFound))
}

func TestSkippedInstancesGetNoSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	template := env.seedTemplate(t, "Stretch", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentMorning
	})
	instance := env.seedInstance(t, template.ID, today())
	_, err := env.routines.Skip(ctx, env.userID, instance.ID, "travel day")
	require.NoError(t, err)

	plan, err := env.planner.Generate(ctx, env.userID, today(), false, nil)
	require.NoError(t, err)
	require.Nil(t, slotForEntity(plan, instance.ID))
}

func TestGenerateRespectsWakeAndSleepWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	early := env.seedTemplate(t, "Stretch", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentMorning
		in.DurationMinutes = 20
	})
	late := env.seedTemplate(t, "Wind down", func(in *TemplateInput) {
		in.CategoryMoment = model.MomentNight
		in.DurationMinutes = 30
	})

	plan, err := env.planner.Generate(ctx, env.userID, today(), false, &PlanPreferences{
		WakeTime:  "09:30",
		SleepTime: "22:00",
	})
	require.NoError(t, err)

	instances, err := env.routines.ListInstances(ctx, env.userID, today())
	require.NoError(t, err)
	byTemplate := map[string]string{}
	for _, instance := range instances {
		byTemplate[instance.TemplateID] = instance.ID
	}

	// The morning block starts at wake time, not at its configured 06:00.
	stretch := slotForEntity(plan, byTemplate[early.ID])
	require.NotNil(t, stretch)
	require.Equal(t, "09:30", stretch.StartTime)

	// The night block falls entirely past sleep time, so the routine
	// spills into the nearest earlier block instead.
	wind := slotForEntity(plan, byTemplate[late.ID])
	require.NotNil(t, wind)
	require.Equal(t, "18:00", wind.StartTime)

	for _, slot := range plan.Slots {
		require.GreaterOrEqual(t, slot.StartTime, "09:30", "slot %s starts before wake", slot.ID)
		require.LessOrEqual(t, slot.EndTime, "22:00", "slot %s runs past sleep", slot.ID)
	}
}

func TestGenerateHonorsPreferenceOverrides(t *testing.T) {
	env := newTestEnv(t)
	plan, err := env.planner.Generate(context.Background(), env.userID, today(), false, &PlanPreferences{
		LunchBreakStart:    "12:15",
		LunchBreakDuration: 30,
	})
	require.NoError(t, err)
	require.Len(t, plan.Slots, 1)
	require.Equal(t, model.SlotBreak, plan.Slots[0].SlotType)
	require.Equal(t, "12:15", plan.Slots[0].StartTime)
	require.Equal(t, "12:45", plan.Slots[0].EndTime)
}
