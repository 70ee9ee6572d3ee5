package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

type authStub struct {
	services.AuthService
	login func(params services.LoginParams) (*services.LoginResult, error)
}

func (a *authStub) Login(_ context.Context, params services.LoginParams) (*services.LoginResult, error) {
	return a.login(params)
}

func (a *authStub) Register(_ context.Context, params services.RegisterParams) (*models.User, error) {
	return &models.User{ID: "new", Email: params.Email, FullName: params.FullName}, nil
}

func (a *authStub) IssueToken(userID string) (*services.LoginResult, error) {
	return &services.LoginResult{AccessToken: "token-" + userID}, nil
}

// ParseJWTToken treats the raw token as the subject.
func (a *authStub) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	if token == "bad" {
		return nil, jwt.ErrTokenMalformed
	}
	return &jwt.RegisteredClaims{Subject: token}, nil
}

type usersStub struct {
	services.UserService
	users map[string]*models.User
}

func (u *usersStub) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := u.users[userID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return user, nil
}

type tasksStub struct {
	services.TaskService
	create       func(actor services.Actor, params services.CreateTaskParams) (*models.Task, error)
	list         func(actor services.Actor, params services.ListTasksParams) ([]*models.Task, error)
	updateStatus func(actor services.Actor, id string, status models.Status) (*models.Task, error)
	addTime      func(actor services.Actor, id string, minutes int) (*models.Task, error)
	update       func(actor services.Actor, id string, patch models.TaskPatch) (*models.Task, error)
}

func (t *tasksStub) CreateTask(_ context.Context, actor services.Actor, params services.CreateTaskParams) (*models.Task, error) {
	return t.create(actor, params)
}

func (t *tasksStub) ListTasks(_ context.Context, actor services.Actor, params services.ListTasksParams) ([]*models.Task, error) {
	return t.list(actor, params)
}

func (t *tasksStub) UpdateTaskStatus(_ context.Context, actor services.Actor, id string, status models.Status) (*models.Task, error) {
	return t.updateStatus(actor, id, status)
}

func (t *tasksStub) AddTime(_ context.Context, actor services.Actor, id string, minutes int) (*models.Task, error) {
	return t.addTime(actor, id, minutes)
}

func (t *tasksStub) UpdateTask(_ context.Context, actor services.Actor, id string, patch models.TaskPatch) (*models.Task, error) {
	return t.update(actor, id, patch)
}

type aiStub struct {
	services.AIService
	planned []*models.Task
}

func (a *aiStub) DailyPlan(_ context.Context, _ *models.User, tasks []*models.Task) *models.DailyPlan {
	a.planned = tasks
	return &models.DailyPlan{Tasks: []models.DailyPlanTask{}, Success: true, Fallback: true}
}

type testServer struct {
	router *gin.Engine
	tasks  *tasksStub
	ai     *aiStub
	auth   *authStub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		router: gin.New(),
		tasks:  &tasksStub{},
		ai:     &aiStub{},
		auth:   &authStub{},
	}
	h := New(Params{
		Logger: zerolog.Nop(),
		Auth:   ts.auth,
		Users: &usersStub{users: map[string]*models.User{
			"demo":  {ID: "demo", Email: "demo@sprintsync.com", FullName: "Demo User"},
			"admin": {ID: "admin", Email: "admin@sprintsync.com", FullName: "Admin User", IsAdmin: true},
		}},
		Tasks:          ts.tasks,
		AI:             ts.ai,
		AllowedOrigins: []string{"http://localhost:3000"},
		LoginRateLimit: 1,
		LoginRateBurst: 2,
	})
	h.RegisterRoutes(ts.router)
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		r = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Detail
}

func demoTask(status models.Status, minutes int) *models.Task {
	owner := "demo"
	return &models.Task{
		ID:           "t1",
		Title:        "Write tests",
		Status:       status,
		TotalMinutes: minutes,
		UserID:       owner,
		AssignedTo:   &owner,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"SprintSync API","version":"1.0.0"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", errNotAuthenticated.Error()},
		{"wrong scheme", "Basic abc", errNotAuthenticated.Error()},
		{"bad token", "Bearer bad", errNotAuthenticated.Error()},
		{"deleted user", "Bearer ghost", errInactiveUser.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, tt.want, detail(t, w))
		})
	}
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/auth/me", "demo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "demo@sprintsync.com", user.Email)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.login = func(params services.LoginParams) (*services.LoginResult, error) {
		if params.Email != "demo@sprintsync.com" || params.Password != "demo123" {
			return nil, services.ErrInvalidCredentials
		}
		return &services.LoginResult{
			User:        &models.User{ID: "demo", Email: params.Email},
			AccessToken: "signed",
		}, nil
	}

	login := func(username, password string) *httptest.ResponseRecorder {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		ts.router.ServeHTTP(w, req)
		return w
	}

	w := login("demo@sprintsync.com", "demo123")
	require.Equal(t, http.StatusOK, w.Code)
	var body tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signed", body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
	assert.Equal(t, "demo", body.User.ID)

	w = login("demo@sprintsync.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, services.ErrInvalidCredentials.Error(), detail(t, w))

	// Burst of two is spent.
	w = login("demo@sprintsync.com", "demo123")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/auth/register", "", gin.H{
		"email":     "not-an-email",
		"password":  "demo123",
		"full_name": "Demo User",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, detail(t, w), "valid email")

	w = ts.do(http.MethodPost, "/auth/register", "", gin.H{
		"email":     "new@sprintsync.com",
		"password":  "secret1",
		"full_name": "New User",
		"is_admin":  true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":false`)
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/auth/refresh", "demo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"access_token":"token-demo","token_type":"bearer"}`, w.Body.String())
}

func TestCreateTask(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.create = func(actor services.Actor, params services.CreateTaskParams) (*models.Task, error) {
		assert.Equal(t, "demo", actor.UserID)
		task := demoTask(models.StatusTodo, 0)
		task.Title = params.Title
		return task, nil
	}

	w := ts.do(http.MethodPost, "/tasks", "demo", gin.H{"title": "Write tests"})
	require.Equal(t, http.StatusCreated, w.Code)

	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, "Write tests", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Zero(t, task.TotalMinutes)

	w = ts.do(http.MethodPost, "/tasks", "demo", gin.H{"title": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBlankRequiredStrings(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.create = func(services.Actor, services.CreateTaskParams) (*models.Task, error) {
		t.Fatal("blank title reached the service")
		return nil, nil
	}

	tests := []struct {
		name  string
		path  string
		token string
		body  gin.H
		want  string
	}{
		{"task title", "/tasks", "demo", gin.H{"title": "   "}, "title cannot be blank"},
		{"register full_name", "/auth/register", "", gin.H{
			"email":     "new@sprintsync.com",
			"password":  "secret1",
			"full_name": " \t ",
		}, "full_name cannot be blank"},
		{"admin full_name", "/users", "admin", gin.H{
			"email":     "new@sprintsync.com",
			"password":  "secret1",
			"full_name": "  ",
		}, "full_name cannot be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, tt.want, detail(t, w))
		})
	}
}

func TestGetTasks_StatusFilter(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.list = func(_ services.Actor, params services.ListTasksParams) ([]*models.Task, error) {
		require.NotNil(t, params.Status)
		assert.Equal(t, models.StatusInProgress, *params.Status)
		return []*models.Task{demoTask(models.StatusInProgress, 90)}, nil
	}

	w := ts.do(http.MethodGet, "/tasks?status=in-progress", "demo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/tasks?status=blocked", "demo", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSetTaskStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.updateStatus = func(_ services.Actor, id string, status models.Status) (*models.Task, error) {
		if status == models.StatusTodo {
			return nil, fmt.Errorf("%w: DONE -> TODO", models.ErrTransitionDenied)
		}
		return demoTask(status, 0), nil
	}

	w := ts.do(http.MethodPatch, "/tasks/t1/status", "demo", gin.H{"status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"IN_PROGRESS"`)

	w = ts.do(http.MethodPatch, "/tasks/t1/status", "demo", gin.H{"status": "TODO"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPatch, "/tasks/t1/status", "demo", gin.H{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAddTaskTime(t *testing.T) {
	ts := newTestServer(t)
	calls := 0
	ts.tasks.addTime = func(_ services.Actor, _ string, minutes int) (*models.Task, error) {
		calls++
		return demoTask(models.StatusInProgress, 90+minutes), nil
	}

	w := ts.do(http.MethodPost, "/tasks/t1/time", "demo", gin.H{"minutes": 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_minutes":120`)

	for _, minutes := range []int{0, -10, 1441} {
		w = ts.do(http.MethodPost, "/tasks/t1/time", "demo", gin.H{"minutes": minutes})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "minutes=%d", minutes)
	}
	assert.Equal(t, 1, calls)
}

func TestUpdateTask_Patch(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.update = func(_ services.Actor, _ string, patch models.TaskPatch) (*models.Task, error) {
		assert.True(t, patch.Title.IsZero())
		assert.True(t, patch.Description.IsNull())
		return demoTask(models.StatusTodo, 0), nil
	}

	w := ts.do(http.MethodPut, "/tasks/t1", "demo", map[string]any{"description": nil})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPut, "/tasks/t1", "demo", map[string]any{"title": nil})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestNotFoundMapping(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.updateStatus = func(services.Actor, string, models.Status) (*models.Task, error) {
		return nil, services.ErrTaskNotFound
	}

	w := ts.do(http.MethodPatch, "/tasks/nope/status", "demo", gin.H{"status": "DONE"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "task not found", detail(t, w))
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/admin/tasks", "/users", "/stats/top-users"} {
		w := ts.do(http.MethodGet, path, "demo", nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.Equal(t, errNotEnoughPrivileges.Error(), detail(t, w))
	}
}

func TestDailyPlan_SkipsDoneTasks(t *testing.T) {
	ts := newTestServer(t)
	ts.tasks.list = func(services.Actor, services.ListTasksParams) ([]*models.Task, error) {
		return []*models.Task{
			demoTask(models.StatusDone, 240),
			demoTask(models.StatusInProgress, 90),
			demoTask(models.StatusTodo, 0),
		}, nil
	}

	w := ts.do(http.MethodGet, "/ai/daily-plan", "demo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, ts.ai.planned, 2)
	for _, task := range ts.ai.planned {
		assert.NotEqual(t, models.StatusDone, task.Status)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.do(http.MethodGet, "/health", "", nil)
	w := ts.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `sprintsync_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(0.001, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(limiterIdleTTL + time.Minute)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.Len(t, l.clients, 1)
}
