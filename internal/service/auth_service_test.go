package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edunova/lms-api/internal/models"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type authRepoMock struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newAuthRepoMock() *authRepoMock {
	return &authRepoMock{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (m *authRepoMock) add(user *models.User) {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
}

func (m *authRepoMock) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	return nil, appErrors.NotFound("user")
}

func (m *authRepoMock) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		return user, nil
	}
	return nil, appErrors.NotFound("user")
}

func (m *authRepoMock) Create(_ context.Context, user *models.User) error {
	if _, ok := m.byEmail[user.Email]; ok {
		return appErrors.Conflict("email")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.add(user)
	return nil
}

func (m *authRepoMock) UpdatePassword(_ context.Context, id, hash string) error {
	user, ok := m.byID[id]
	if !ok {
		return appErrors.NotFound("user")
	}
	user.PasswordHash = hash
	return nil
}

func newAuthService(repo *authRepoMock) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "lms-api",
	})
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterStudentApproved(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Amara Silva", Email: "amara@edunova.lk", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Equal(t, models.StatusApproved, resp.User.Status)
	assert.Equal(t, "English", resp.User.Language)
	assert.True(t, resp.User.Active)
}

func TestAuthServiceRegisterTeacherPending(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Teacher One", Email: "t1@edunova.lk", Password: "secret123", Role: "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.Equal(t, models.StatusPending, resp.User.Status)
}

func TestAuthServiceRegisterRejectsInvalidPayload(t *testing.T) {
	svc := newAuthService(newAuthRepoMock())

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email"})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindValidation, fault.Kind)
	assert.NotEmpty(t, fault.Fields)
}

func TestAuthServiceLoginRoundTrip(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	repo.add(&models.User{
		ID: "u1", Name: "Amara Silva", Email: "amara@edunova.lk",
		PasswordHash: mustHash(t, "secret123"),
		Role:         models.RoleStudent, Status: models.StatusApproved, Active: true,
	})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "amara@edunova.lk", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	// The issued token resolves back to the live principal.
	user, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	repo.add(&models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "secret123"), Active: true})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amara@edunova.lk", Password: "wrong"})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindUnauthenticated, fault.Kind)
	assert.Equal(t, "invalid credentials", fault.Message)
}

func TestAuthServiceLoginUnknownEmailHidesExistence(t *testing.T) {
	svc := newAuthService(newAuthRepoMock())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@edunova.lk", Password: "whatever"})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindUnauthenticated, fault.Kind)
	assert.Equal(t, "invalid credentials", fault.Message)
}

func TestAuthServiceLoginDeactivatedAccount(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	repo.add(&models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "secret123"), Active: false})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "amara@edunova.lk", Password: "secret123"})
	assert.ErrorIs(t, err, appErrors.ErrDeactivated)
}

func TestAuthServiceAuthenticateDeactivatedMidSession(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	user := &models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "secret123"), Active: true}
	repo.add(user)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "amara@edunova.lk", Password: "secret123"})
	require.NoError(t, err)

	// The account is switched off after the token was issued.
	user.Active = false
	_, err = svc.Authenticate(context.Background(), resp.Token)
	assert.ErrorIs(t, err, appErrors.ErrDeactivated)
}

func TestAuthServiceAuthenticateRejectsGarbageToken(t *testing.T) {
	svc := newAuthService(newAuthRepoMock())

	_, err := svc.Authenticate(context.Background(), "not.a.token")
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindUnauthenticated, fault.Kind)
}

func TestAuthServiceAuthenticateRejectsForeignSignature(t *testing.T) {
	repo := newAuthRepoMock()
	repo.add(&models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "secret123"), Active: true})

	issuer := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret", Expiration: time.Hour})
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "amara@edunova.lk", Password: "secret123"})
	require.NoError(t, err)

	svc := newAuthService(repo)
	_, err = svc.Authenticate(context.Background(), resp.Token)
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindUnauthenticated, fault.Kind)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	repo.add(&models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "oldpass"), Active: true})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "oldpass", NewPassword: "newpass123"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.byID["u1"].PasswordHash), []byte("newpass123")))
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	repo := newAuthRepoMock()
	svc := newAuthService(repo)

	repo.add(&models.User{ID: "u1", Email: "amara@edunova.lk", PasswordHash: mustHash(t, "oldpass"), Active: true})

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpass123"})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindUnauthenticated, fault.Kind)
}
