package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunova/lms-api/internal/middleware"
	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	"github.com/edunova/lms-api/internal/service"
	appErrors "github.com/edunova/lms-api/pkg/errors"
	"github.com/edunova/lms-api/pkg/response"
)

type courseStoreStub struct {
	courses map[string]*models.CourseDetail
}

func newCourseStoreStub(courses ...*models.CourseDetail) *courseStoreStub {
	s := &courseStoreStub{courses: map[string]*models.CourseDetail{}}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s
}

func (s *courseStoreStub) List(_ context.Context, filter models.CourseFilter, _ query.Params) ([]models.CourseDetail, int, error) {
	out := []models.CourseDetail{}
	for _, c := range s.courses {
		if filter.Approved != nil && c.Approved != *filter.Approved {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (s *courseStoreStub) FindByID(_ context.Context, id string, _ []string) (*models.CourseDetail, error) {
	if c, ok := s.courses[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, appErrors.NotFound("course")
}

func (s *courseStoreStub) Create(_ context.Context, course *models.Course) error {
	course.ID = "c-new"
	s.courses[course.ID] = &models.CourseDetail{Course: *course}
	return nil
}

func (s *courseStoreStub) Update(_ context.Context, course *models.Course) error {
	if _, ok := s.courses[course.ID]; !ok {
		return appErrors.NotFound("course")
	}
	s.courses[course.ID] = &models.CourseDetail{Course: *course}
	return nil
}

func (s *courseStoreStub) Delete(_ context.Context, id string) error {
	if _, ok := s.courses[id]; !ok {
		return appErrors.NotFound("course")
	}
	delete(s.courses, id)
	return nil
}

// principal injects a fixed user the way the auth middleware would.
func principal(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.ContextUserKey, user)
		}
		c.Next()
	}
}

func newCourseRouter(store *courseStoreStub, user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCourseHandler(service.NewCourseService(store, nil, nil, nil))

	r := gin.New()
	r.Use(principal(user))
	r.GET("/courses", h.List)
	r.GET("/courses/:id", h.Get)
	r.POST("/courses", h.Create)
	r.PUT("/courses/:id", h.Update)
	r.DELETE("/courses/:id", h.Delete)
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestCourseHandlerListEnvelope(t *testing.T) {
	store := newCourseStoreStub(
		&models.CourseDetail{Course: models.Course{ID: "c1", Title: "Go Basics", TeacherID: "t1", Approved: true}},
		&models.CourseDetail{Course: models.Course{ID: "c2", Title: "Draft", TeacherID: "t1", Approved: false}},
	)
	r := newCourseRouter(store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/courses?page=1&limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalItems)
	assert.Equal(t, 1, envelope.Pagination.CurrentPage)

	// Only the approved course made it through for an anonymous caller.
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "c1")
	assert.NotContains(t, string(raw), "c2")
}

func TestCourseHandlerGetUnknownID(t *testing.T) {
	r := newCourseRouter(newCourseStoreStub(), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/courses/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.Equal(t, "course not found", envelope.Error)
}

func TestCourseHandlerCreate(t *testing.T) {
	store := newCourseStoreStub()
	r := newCourseRouter(store, &models.User{ID: "t1", Role: models.RoleTeacher, Active: true})

	body := `{"title":"Go Basics","description":"Intro","category":"Programming","level":"Beginner","price":49.99}`
	req := httptest.NewRequest("POST", "/courses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.False(t, store.courses["c-new"].Approved)
	assert.Equal(t, "t1", store.courses["c-new"].TeacherID)
}

func TestCourseHandlerCreateValidationDetails(t *testing.T) {
	r := newCourseRouter(newCourseStoreStub(), &models.User{ID: "t1", Role: models.RoleTeacher, Active: true})

	req := httptest.NewRequest("POST", "/courses", strings.NewReader(`{"title":"Go Basics"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Details)
}

func TestCourseHandlerCreateRequiresPrincipal(t *testing.T) {
	r := newCourseRouter(newCourseStoreStub(), nil)

	req := httptest.NewRequest("POST", "/courses", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCourseHandlerUpdateForbidden(t *testing.T) {
	store := newCourseStoreStub(&models.CourseDetail{Course: models.Course{ID: "c1", TeacherID: "t1", Approved: true}})
	r := newCourseRouter(store, &models.User{ID: "t2", Role: models.RoleTeacher, Active: true})

	req := httptest.NewRequest("PUT", "/courses/c1", strings.NewReader(`{"title":"Hijacked"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCourseHandlerDelete(t *testing.T) {
	store := newCourseStoreStub(&models.CourseDetail{Course: models.Course{ID: "c1", TeacherID: "t1", Approved: true}})
	r := newCourseRouter(store, &models.User{ID: "t1", Role: models.RoleTeacher, Active: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/courses/c1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.courses)
}
