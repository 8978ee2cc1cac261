package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/internal/service"
	"github.com/J0na555/ExitPrep/internal/service/auth"
	"github.com/J0na555/ExitPrep/internal/service/course"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const testSecret = "router-test-secret-0123456789"

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func (r *memUsers) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return app_errors.ErrUserExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUsers) UserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, app_errors.ErrUserNotFound
}

func (r *memUsers) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, app_errors.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) UserByIDAndEmail(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	u, err := r.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Email != email {
		return nil, app_errors.ErrUserNotFound
	}
	return u, nil
}

type memCourses struct {
	mu      sync.Mutex
	courses map[uuid.UUID]models.Course
}

func (r *memCourses) CreateCourse(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.courses {
		if existing.Title == c.Title {
			return app_errors.ErrCourseExists
		}
	}
	c.ID = uuid.New()
	r.courses[c.ID] = *c
	return nil
}

func (r *memCourses) Courses(_ context.Context) ([]models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, nil
}

func (r *memCourses) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &c, nil
}

func (r *memCourses) UpdateCourse(_ context.Context, id uuid.UUID, _ models.CourseUpdate) (*models.Course, error) {
	return nil, errors.New("not implemented")
}

func (r *memCourses) DeleteCourse(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return app_errors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

type noChapters struct{}

func (noChapters) CreateChapter(context.Context, *models.Chapter) error { return nil }
func (noChapters) ChapterByID(context.Context, uuid.UUID) (*models.Chapter, error) {
	return nil, app_errors.ErrChapterNotFound
}
func (noChapters) ChaptersByCourse(context.Context, uuid.UUID) ([]models.Chapter, error) {
	return nil, nil
}
func (noChapters) UpdateChapter(context.Context, uuid.UUID, models.ChapterUpdate) (*models.Chapter, error) {
	return nil, app_errors.ErrChapterNotFound
}
func (noChapters) DeleteChapter(context.Context, uuid.UUID) error { return app_errors.ErrChapterNotFound }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T, db pinger) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := logger.NewNop()

	users := &memUsers{users: map[uuid.UUID]models.User{}}
	courses := &memCourses{courses: map[uuid.UUID]models.Course{}}
	authService := auth.NewAuthService(l, auth.NewHasher(4), auth.NewJWTManager(testSecret, "exitprep"), time.Minute, users)
	u := service.Collection{
		AuthService:   authService,
		CourseService: course.NewCourseService(l, courses, noChapters{}),
	}
	cors := config.CORS{AllowOrigins: []string{"http://localhost:3000"}}
	return &testAPI{router: InitRoutes(l, u, cors, db)}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func register(t *testing.T, api *testAPI) models.AccessToken {
	t.Helper()
	w := api.do(t, http.MethodPost, "/v1/auth/register", "", gin.H{
		"email": "abebe@example.com", "username": "abebe", "password": "correct horse",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}
	return decode[models.AccessToken](t, w)
}

func TestRegisterLoginMe(t *testing.T) {
	api := newTestAPI(t, pinger{})
	reg := register(t, api)
	if reg.TokenType != "bearer" || reg.Token == "" {
		t.Fatalf("unexpected token response %+v", reg)
	}

	w := api.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "abebe@example.com", "password": "correct horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	login := decode[models.AccessToken](t, w)

	w = api.do(t, http.MethodGet, "/v1/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", w.Code, w.Body.String())
	}
	me := decode[map[string]any](t, w)
	if me["email"] != "abebe@example.com" {
		t.Fatalf("me = %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatal("password hash serialized")
	}

	w = api.do(t, http.MethodPost, "/v1/auth/register", "", gin.H{
		"email": "abebe@example.com", "username": "other", "password": "correct horse",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", w.Code)
	}
}

func TestUnauthorizedResponsesAreUniform(t *testing.T) {
	api := newTestAPI(t, pinger{})
	register(t, api)

	foreign, _, err := auth.NewJWTManager("another-secret-0123456789", "exitprep").Issue(uuid.New(), "abebe@example.com", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	wrongPassword := api.do(t, http.MethodPost, "/v1/auth/login", "", gin.H{"email": "abebe@example.com", "password": "nope nope"})

	cases := map[string]*httptest.ResponseRecorder{
		"no token":       api.do(t, http.MethodGet, "/v1/me", "", nil),
		"garbage token":  api.do(t, http.MethodGet, "/v1/courses", "not-a-jwt", nil),
		"wrong secret":   api.do(t, http.MethodGet, "/v1/me", foreign, nil),
		"wrong password": wrongPassword,
	}
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status %d", w.Code)
			}
			if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Fatalf("WWW-Authenticate = %q", got)
			}
			body := decode[map[string]string](t, w)
			if body["error"] != "could not validate credentials" {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t, pinger{})
	token := register(t, api).Token

	w := api.do(t, http.MethodPost, "/v1/courses", token, gin.H{"title": "Operating Systems"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", w.Code, w.Body.String())
	}
	created := decode[models.Course](t, w)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"duplicate title", http.MethodPost, "/v1/courses", gin.H{"title": "Operating Systems"}, http.StatusConflict},
		{"blank title", http.MethodPost, "/v1/courses", gin.H{"title": "   "}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/v1/courses/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown course", http.MethodGet, "/v1/courses/" + uuid.NewString(), nil, http.StatusNotFound},
		{"existing course", http.MethodGet, "/v1/courses/" + created.ID.String(), nil, http.StatusOK},
		{"internal failure", http.MethodPut, "/v1/courses/" + created.ID.String(), gin.H{"title": "x"}, http.StatusInternalServerError},
		{"delete", http.MethodDelete, "/v1/courses/" + created.ID.String(), nil, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, token, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
		})
	}

	w = api.do(t, http.MethodPut, "/v1/courses/"+uuid.NewString(), token, gin.H{"title": "x"})
	body := decode[map[string]string](t, w)
	if body["error"] != "internal error" {
		t.Fatalf("internal detail leaked: %v", body)
	}
}

func TestHealth(t *testing.T) {
	ok := newTestAPI(t, pinger{})
	if w := ok.do(t, http.MethodGet, "/v1/health", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthy: status %d", w.Code)
	}

	down := newTestAPI(t, pinger{err: errors.New("connection refused")})
	if w := down.do(t, http.MethodGet, "/v1/health", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: status %d", w.Code)
	}
}
