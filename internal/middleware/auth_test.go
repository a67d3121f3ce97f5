package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edunova/lms-api/internal/models"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type authenticatorStub struct {
	users map[string]*models.User
}

func (s *authenticatorStub) Authenticate(_ context.Context, token string) (*models.User, error) {
	if user, ok := s.users[token]; ok {
		return user, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(auth), func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	r.GET("/public", OptionalAuth(auth), func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.String(http.StatusOK, user.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	return r
}

func TestAuthRejectsMissingToken(t *testing.T) {
	r := newAuthRouter(&authenticatorStub{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1"}}}
	r := newAuthRouter(stub)

	for _, header := range []string{"tok", "Basic tok", "Bearer ", "Bearer"} {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1", Role: models.RoleStudent}}}
	r := newAuthRouter(stub)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthFallsBackToCookie(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1"}}}
	r := newAuthRouter(stub)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHeaderWinsOverCookie(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"cookie-tok": {ID: "u1"}}}
	r := newAuthRouter(stub)

	// A bad header is rejected even when a valid cookie rides along.
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-tok"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthNeverBlocks(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1"}}}
	r := newAuthRouter(stub)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req := httptest.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req = httptest.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u1", w.Body.String())
}

func TestRequireRolesFailsClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// No Auth in front: the gate must reject, not wave through.
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1", Role: models.RoleStudent}}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", Auth(stub), RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "role 'student' is not allowed")
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	stub := &authenticatorStub{users: map[string]*models.User{"tok": {ID: "u1", Role: models.RoleTeacher}}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/staff", Auth(stub), RequireRoles(models.RoleTeacher, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/staff", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
