package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/models"
	servermodels "github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/dmitrijs2005/gophtasks/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- fakes ---

type fakeTasks struct {
	lastOwner string
	lastQuery view.Query
	lastNew   models.NewTask
	lastPatch models.TaskPatch
	lastID    string

	tasks []models.Task
	task  *models.Task
	stats view.Stats
	err   error
	panic bool
}

func (f *fakeTasks) View(ctx context.Context, ownerID string, q view.Query) ([]models.Task, error) {
	if f.panic {
		panic("boom")
	}
	f.lastOwner, f.lastQuery = ownerID, q
	return f.tasks, f.err
}

func (f *fakeTasks) Stats(ctx context.Context, ownerID string) (view.Stats, error) {
	f.lastOwner = ownerID
	return f.stats, f.err
}

func (f *fakeTasks) Create(ctx context.Context, ownerID string, in models.NewTask) (*models.Task, error) {
	f.lastOwner, f.lastNew = ownerID, in
	if f.err != nil {
		return nil, f.err
	}
	n, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return &models.Task{ID: "t1", OwnerID: ownerID, Text: n.Text, Priority: n.Priority, Tags: n.Tags, DueDate: n.DueDate}, nil
}

func (f *fakeTasks) Update(ctx context.Context, ownerID, taskID string, patch models.TaskPatch) (*models.Task, error) {
	f.lastOwner, f.lastID, f.lastPatch = ownerID, taskID, patch
	return f.task, f.err
}

func (f *fakeTasks) Delete(ctx context.Context, ownerID, taskID string) (*models.Task, error) {
	f.lastOwner, f.lastID = ownerID, taskID
	return f.task, f.err
}

type fakeUsers struct {
	registered string
	password   string
	login      *services.LoginResult
	err        error
}

func (f *fakeUsers) Register(ctx context.Context, username string, password []byte) (*servermodels.User, error) {
	f.registered, f.password = username, string(password)
	if f.err != nil {
		return nil, f.err
	}
	return &servermodels.User{ID: "u1", UserName: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username string, password []byte) (*services.LoginResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.login, nil
}

type fakeCreds struct{}

func (fakeCreds) Issue(userID, userName string) (string, error) { return "tok-" + userID, nil }

func (fakeCreds) Verify(token string) (string, error) {
	switch token {
	case "alice-token":
		return "alice", nil
	case "expired":
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrInvalidToken
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// --- helpers ---

func newTestServer(t *testing.T, ts *fakeTasks, us *fakeUsers) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", logging.Nop(), ts, us, fakeCreds{}, fakePinger{}, time.Second)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// --- auth middleware ---

func TestAuth_RejectsMissingAndInvalidTokens(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing", "", "Access denied"},
		{"wrong scheme", "Basic abc", "Access denied"},
		{"empty token", "Bearer ", "Access denied"},
		{"invalid", "Bearer garbage", "Invalid or expired token"},
		{"expired", "Bearer expired", "Invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tc.msg, errorOf(t, w))
		})
	}
}

// --- tasks ---

func TestListTasks_PassesOwnerAndQuery(t *testing.T) {
	ts := &fakeTasks{tasks: []models.Task{{ID: "t1", Tags: []string{}}}}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodGet, "/api/tasks?category=today&q=wor&sort=priority", "alice-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "alice", ts.lastOwner)
	assert.Equal(t, view.Query{Category: view.CategoryToday, Search: "wor", SortBy: view.SortPriority}, ts.lastQuery)

	var got []models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestListTasks_EmptyIsArray(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	w := do(t, s, http.MethodGet, "/tasks", "alice-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListTasks_StoreErrorIsOpaque(t *testing.T) {
	s := newTestServer(t, &fakeTasks{err: errors.New("pq: connection refused")}, &fakeUsers{})

	w := do(t, s, http.MethodGet, "/api/tasks", "alice-token", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorOf(t, w))
}

func TestStats(t *testing.T) {
	ts := &fakeTasks{stats: view.Stats{ActiveTasks: 2, CompletedTasks: 1, ImportantTasks: 1, TodayTasks: 1}}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodGet, "/api/tasks/stats", "alice-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"activeTasks":2,"completedTasks":1,"importantTasks":1,"todayTasks":1}`, w.Body.String())
}

func TestCreateTask(t *testing.T) {
	ts := &fakeTasks{}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodPost, "/api/tasks", "alice-token",
		`{"text":"Buy milk","priority":"high","tags":["home"],"dueDate":"2024-06-01","ownerId":"mallory"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.OwnerID)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-06-01", got.DueDate.String())
}

func TestCreateTask_BlankOrNullDueDateMeansNoDate(t *testing.T) {
	for _, due := range []string{`""`, `"  "`, `null`} {
		t.Run(due, func(t *testing.T) {
			ts := &fakeTasks{}
			s := newTestServer(t, ts, &fakeUsers{})

			w := do(t, s, http.MethodPost, "/api/tasks", "alice-token",
				`{"text":"Buy milk","priority":"medium","tags":[],"dueDate":`+due+`}`)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var got models.Task
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Nil(t, got.DueDate)
		})
	}
}

func TestCreateTask_EmptyPriorityRejected(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	w := do(t, s, http.MethodPost, "/api/tasks", "alice-token", `{"text":"x","priority":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTask_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
		msg  string
	}{
		{"missing text", `{}`, "Task text is required"},
		{"blank text", `{"text":"   "}`, "Task text is required"},
		{"numeric priority", `{"text":"x","priority":5}`, ""},
		{"tags not strings", `{"text":"x","tags":[1]}`, ""},
		{"bad date", `{"text":"x","dueDate":"tomorrow"}`, ""},
		{"not json", `{`, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
			w := do(t, s, http.MethodPost, "/api/tasks", "alice-token", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			msg := errorOf(t, w)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestCreateTask_SchemaNamesField(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	w := do(t, s, http.MethodPost, "/api/tasks", "alice-token", `{"text":"x","priority":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorOf(t, w), "priority")
}

func TestUpdateTask(t *testing.T) {
	ts := &fakeTasks{task: &models.Task{ID: "t9", Completed: true, Tags: []string{}}}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodPut, "/api/tasks/t9", "alice-token", `{"completed":true,"ownerId":"mallory","dueDate":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "t9", ts.lastID)
	assert.Equal(t, "alice", ts.lastOwner)
	require.NotNil(t, ts.lastPatch.Completed)
	assert.True(t, *ts.lastPatch.Completed)
	assert.True(t, ts.lastPatch.ClearDueDate)
}

func TestUpdateTask_BlankDueDateClears(t *testing.T) {
	ts := &fakeTasks{task: &models.Task{ID: "t1", Tags: []string{}}}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodPut, "/api/tasks/t1", "alice-token", `{"dueDate":""}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, ts.lastPatch.ClearDueDate)
	assert.Nil(t, ts.lastPatch.DueDate)
}

func TestUpdateTask_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{common.ErrorNotFound, http.StatusNotFound, "Task not found"},
		{common.ErrorForbidden, http.StatusForbidden, "Unauthorized"},
		{common.NewValidationError("priority", "must be one of low, medium, high"), http.StatusBadRequest, "priority: must be one of low, medium, high"},
		{errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			s := newTestServer(t, &fakeTasks{err: tc.err}, &fakeUsers{})
			w := do(t, s, http.MethodPut, "/api/tasks/t1", "alice-token", `{"text":"y"}`)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, errorOf(t, w))
		})
	}
}

func TestUpdateTask_SchemaRejectsWrongTypes(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	w := do(t, s, http.MethodPut, "/api/tasks/t1", "alice-token", `{"completed":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTask(t *testing.T) {
	ts := &fakeTasks{task: &models.Task{ID: "t1", Text: "Gym", Tags: []string{}}}
	s := newTestServer(t, ts, &fakeUsers{})

	w := do(t, s, http.MethodDelete, "/api/tasks/t1", "alice-token", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message     string      `json:"message"`
		DeletedTask models.Task `json:"deletedTask"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Task deleted successfully", body.Message)
	assert.Equal(t, "Gym", body.DeletedTask.Text)
}

// --- auth routes ---

func TestRegister(t *testing.T) {
	us := &fakeUsers{}
	s := newTestServer(t, &fakeTasks{}, us)

	w := do(t, s, http.MethodPost, "/api/register", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Registration successful!"}`, w.Body.String())
	assert.Equal(t, "alice", us.registered)
}

func TestRegister_Taken(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{err: common.ErrorAlreadyExists})

	w := do(t, s, http.MethodPost, "/register", "", `{"username":"alice","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", errorOf(t, w))
}

func TestLogin(t *testing.T) {
	us := &fakeUsers{login: &services.LoginResult{Token: "tok", UserName: "alice"}}
	s := newTestServer(t, &fakeTasks{}, us)

	w := do(t, s, http.MethodPost, "/api/login", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"token":"tok","username":"alice"}`, w.Body.String())
}

func TestLogin_Invalid(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{err: common.ErrorInvalidCredentials})

	w := do(t, s, http.MethodPost, "/login", "", `{"username":"alice","password":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, w))
}

// --- misc ---

func TestHealth(t *testing.T) {
	for _, path := range []string{"/api/health", "/health"} {
		s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
		w := do(t, s, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var body healthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "connected", body.Database)
		assert.Equal(t, ServiceName, body.Service)
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	s, err := NewServer("", logging.Nop(), &fakeTasks{}, &fakeUsers{}, fakeCreds{}, fakePinger{err: errors.New("down")}, time.Second)
	require.NoError(t, err)

	w := do(t, s, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"disconnected"`)
}

func TestRecovery_PanicBecomes500(t *testing.T) {
	s := newTestServer(t, &fakeTasks{panic: true}, &fakeUsers{})
	w := do(t, s, http.MethodGet, "/api/tasks", "alice-token", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorOf(t, w))
}

func TestRequestID_EchoedOrGenerated(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set(requestIDHeader, "abc")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	assert.Equal(t, "abc", w.Header().Get(requestIDHeader))

	w = do(t, s, http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})
	w := do(t, s, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := newTestServer(t, &fakeTasks{}, &fakeUsers{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s, err := NewServer("127.0.0.1:99999", logging.Nop(), &fakeTasks{}, &fakeUsers{}, fakeCreds{}, nil, time.Second)
	require.NoError(t, err)
	require.Error(t, s.Run(context.Background()))
}

func TestSchemaValidate_UnknownSchema(t *testing.T) {
	schemas, err := compileSchemas()
	require.NoError(t, err)
	require.Error(t, schemas.validate("missing.json", []byte(`{}`)))
	require.NoError(t, schemas.validate(schemaTaskUpdate, bytes.TrimSpace([]byte(` {"foo":1} `))))
}
