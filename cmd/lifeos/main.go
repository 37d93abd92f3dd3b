package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vttlabs/lifeos/internal/config"
	"github.com/vttlabs/lifeos/internal/httpapi"
	"github.com/vttlabs/lifeos/internal/notify"
	"github.com/vttlabs/lifeos/internal/repository"
	"github.com/vttlabs/lifeos/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProductionConfig().Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	planRepo := repository.NewPlanRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	streakSvc := service.NewStreakService(streakRepo)
	domainSvc := service.NewDomainService(domainRepo)
	routineSvc := service.NewRoutineService(routineRepo, streakSvc)
	taskSvc := service.NewTaskService(taskRepo)
	timerSvc := service.NewTimerService(taskRepo)
	projectSvc := service.NewProjectService(projectRepo, taskRepo)
	plannerSvc := service.NewPlannerService(planRepo, routineRepo, taskRepo, settingsRepo, routineSvc)
	analyticsSvc := service.NewAnalyticsService(routineRepo, taskRepo, streakRepo)
	settingsSvc := service.NewSettingsService(settingsRepo)
	reminderSvc := service.NewReminderService(planRepo, routineRepo, taskRepo)

	var notifier *notify.TelegramNotifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramToken, userRepo, reminderSvc, logger)
		if err != nil {
			logger.Fatal("telegram", zap.Error(err))
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.SummaryTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		runDailyJob(jobCtx, logger, userRepo, routineSvc, notifier, cfg.ExpandAheadDays)
	}); err != nil {
		logger.Fatal("schedule daily job", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := httpapi.NewServer(
		userRepo, domainSvc, routineSvc, taskSvc, timerSvc,
		projectSvc, plannerSvc, streakSvc, analyticsSvc, settingsSvc, logger,
	)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// runDailyJob pre-expands routine instances for the coming days and
// pushes plan summaries to linked Telegram chats.
func runDailyJob(
	ctx context.Context,
	logger *zap.Logger,
	users *repository.UserRepository,
	routines *service.RoutineService,
	notifier *notify.TelegramNotifier,
	aheadDays int,
) {
	all, err := users.ListAll(ctx)
	if err != nil {
		logger.Error("daily job: list users", zap.Error(err))
		return
	}
	today := time.Now()
	for _, user := range all {
		if err := routines.ExpandRange(ctx, user.ID, today, aheadDays); err != nil {
			logger.Warn("daily job: expand", zap.String("user", user.ID), zap.Error(err))
		}
	}

	if notifier != nil {
		if err := notifier.SendDailySummaries(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("daily job: summaries", zap.Error(err))
		}
	}
}
