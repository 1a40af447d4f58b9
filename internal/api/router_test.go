package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/task-api/internal/api/handler"
	"github.com/taskmanager/task-api/internal/core/service"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
	"github.com/taskmanager/task-api/internal/infrastructure/imaging"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()
	users := memory.NewUserRepository()
	tasks := memory.NewTaskRepository()

	userSvc := service.NewUserService(users, bcrypt.MinCost, log)
	tokens := service.NewTokenService(users, "router-test-secret", 0)

	e := NewRouter(Dependencies{
		Auth:      service.NewAuthService(userSvc, tokens, nil, log),
		Sessions:  tokens,
		Profiles:  userSvc,
		Accounts:  service.NewCascadeCoordinator(users, tasks, nil, log),
		Avatars:   service.NewAvatarService(users, imaging.NewResizer(), log),
		Tasks:     service.NewTaskService(tasks, log),
		Readiness: handler.NewReadinessHandler(nil, nil),
		Registry:  prometheus.NewRegistry(),
		Logger:    log,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type session struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

func (s *testServer) register(name, email string) session {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/users", "", map[string]any{
		"name": name, "email": email, "password": "s3cret-pass", "age": 30,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[session](s.t, rec)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	require.NotEmpty(t, alice.Token)

	rec := s.do(http.MethodPost, "/tasks", alice.Token, map[string]any{"description": "write report"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/tasks", alice.Token, map[string]any{"description": "file taxes", "completed": true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/tasks?completed=false", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[[]map[string]any](t, rec)
	require.Len(t, open, 1)
	assert.Equal(t, "write report", open[0]["description"])

	rec = s.do(http.MethodPost, "/users/logout", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/tasks", alice.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"please authenticate"}`, rec.Body.String())
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)
	s.register("Bob", "bob@example.com")

	rec := s.do(http.MethodPost, "/users/login", "", map[string]any{"email": "bob@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[session](t, rec)

	rec = s.do(http.MethodGet, "/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "bob@example.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "tokens")

	for _, creds := range []map[string]any{
		{"email": "bob@example.com", "password": "wrong-pass"},
		{"email": "nobody@example.com", "password": "s3cret-pass"},
	} {
		rec = s.do(http.MethodPost, "/users/login", "", creds)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"unable to login"}`, rec.Body.String())
	}
}

func TestRouter_RegisterRejectsDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("Carol", "carol@example.com")

	rec := s.do(http.MethodPost, "/users", "", map[string]any{
		"name": "Carol Two", "email": "Carol@Example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_LogoutAll(t *testing.T) {
	s := newTestServer(t)
	first := s.register("Dave", "dave@example.com")
	rec := s.do(http.MethodPost, "/users/login", "", map[string]any{"email": "dave@example.com", "password": "s3cret-pass"})
	second := decode[session](t, rec)

	rec = s.do(http.MethodPost, "/users/logoutAll", second.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, tok := range []string{first.Token, second.Token} {
		rec = s.do(http.MethodGet, "/users/me", tok, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestRouter_TaskOwnership(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("Alice", "alice@example.com")
	mallory := s.register("Mallory", "mallory@example.com")

	rec := s.do(http.MethodPost, "/tasks", alice.Token, map[string]any{"description": "private"})
	task := decode[map[string]any](t, rec)
	path := "/tasks/" + task["id"].(string)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = s.do(method, path, mallory.Token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
	rec = s.do(http.MethodPatch, path, mallory.Token, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/tasks/not-an-id", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPatch, path, alice.Token, map[string]any{"owner": "elsewhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid updates"}`, rec.Body.String())

	rec = s.do(http.MethodPatch, path, alice.Token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["completed"])

	rec = s.do(http.MethodDelete, path, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, path, alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_UpdateAndDeleteMe(t *testing.T) {
	s := newTestServer(t)
	erin := s.register("Erin", "erin@example.com")
	s.do(http.MethodPost, "/tasks", erin.Token, map[string]any{"description": "one"})

	rec := s.do(http.MethodPatch, "/users/me", erin.Token, map[string]any{"name": "Erin B", "age": 31})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Erin B", decode[map[string]any](t, rec)["name"])

	rec = s.do(http.MethodPatch, "/users/me", erin.Token, map[string]any{"tokens": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/users/me", erin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/users/me", erin.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/users/login", "", map[string]any{"email": "erin@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Avatar(t *testing.T) {
	s := newTestServer(t)
	fay := s.register("Fay", "fay@example.com")
	id := fay.User["id"].(string)

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(1, 1, color.White)
	var pic bytes.Buffer
	require.NoError(t, png.Encode(&pic, img))

	upload := func(filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("avatar", filename)
		require.NoError(t, err)
		_, _ = part.Write(content)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/users/me/avatar", &body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+fay.Token)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("notes.txt", pic.Bytes())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"please upload an image"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/users/"+id+"/avatar", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Over the file cap and over the route's body limit: both are 400.
	for _, size := range []int{1_000_001, 2_500_000} {
		rec = upload("big.png", make([]byte, size))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "size %d", size)
		assert.JSONEq(t, `{"error":"file is too large"}`, rec.Body.String(), "size %d", size)
	}

	rec = upload("me.png", pic.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/users/"+id+"/avatar", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, imaging.AvatarSize, cfg.Width)
	assert.Equal(t, imaging.AvatarSize, cfg.Height)

	rec = s.do(http.MethodDelete, "/users/me/avatar", fay.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/users/"+id+"/avatar", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_configured")

	s.do(http.MethodGet, "/users/me", "", nil)
	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "taskmanager_requests_total"), "http metrics missing")

	rec = s.do(http.MethodGet, "/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
