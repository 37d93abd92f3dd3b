package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vttlabs/lifeos/internal/model"
	"github.com/vttlabs/lifeos/internal/repository"
	"github.com/vttlabs/lifeos/internal/service"
)

type apiFixture struct {
	handler http.Handler
	token   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	users := repository.NewUserRepository(db)
	routineRepo := repository.NewRoutineRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	planRepo := repository.NewPlanRepository(db)
	streakRepo := repository.NewStreakRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	streaks := service.NewStreakService(streakRepo)
	routines := service.NewRoutineService(routineRepo, streaks)
	server := NewServer(
		users,
		service.NewDomainService(repository.NewDomainRepository(db)),
		routines,
		service.NewTaskService(taskRepo),
		service.NewTimerService(taskRepo),
		service.NewProjectService(repository.NewProjectRepository(db), taskRepo),
		service.NewPlannerService(planRepo, routineRepo, taskRepo, settingsRepo, routines),
		streaks,
		service.NewAnalyticsService(routineRepo, taskRepo, streakRepo),
		service.NewSettingsService(settingsRepo),
		zap.NewNop(),
	)

	user := &model.User{
		ID:       uuid.New().String(),
		Email:    "api@example.com",
		Name:     "API User",
		APIToken: uuid.New().String(),
	}
	require.NoError(t, users.Create(context.Background(), user))

	return &apiFixture{handler: server.Handler(), token: user.APIToken}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func todayDate() string {
	return time.Now().Format("2006-01-02")
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/domains", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/domains", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var env struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "unauthenticated", env.Error.Kind)
}

func TestDomainLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/domains", map[string]string{
		"name":  "Health",
		"color": "#4caf50",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Domain
	decodeData(t, rec, &created)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Health", created.Name)

	// Duplicate name maps to 409.
	rec = f.do(t, http.MethodPost, "/api/domains", map[string]string{"name": "Health"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/domains", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var domains []model.Domain
	decodeData(t, rec, &domains)
	require.Len(t, domains, 1)

	rec = f.do(t, http.MethodDelete, "/api/domains/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/domains/"+created.ID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanGenerationOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/routines", map[string]interface{}{
		"name":             "Gym",
		"preferred_start":  "07:30",
		"duration_minutes": 45,
		"recurrence_rule":  "FREQ=DAILY",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	date := todayDate()
	rec = f.do(t, http.MethodPost, "/api/plans/"+date+"/generate", map[string]interface{}{})
	require.Equal(t, http.StatusCreated, rec.Code)
	var plan model.GeneratedPlan
	decodeData(t, rec, &plan)
	require.Equal(t, date, plan.Date)
	require.NotEmpty(t, plan.Slots)

	// A second generate without the regenerate flag is a conflict.
	rec = f.do(t, http.MethodPost, "/api/plans/"+date+"/generate", map[string]interface{}{})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/plans/"+date, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/plans/1999-01-01", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidStateMapsTo422(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title": "Write report",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	decodeData(t, rec, &task)

	rec = f.do(t, http.MethodPost, "/api/tasks/"+task.ID+"/status", map[string]string{
		"status": "done",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
