package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edustream/edustream-api/internal/models"
	appErrors "github.com/edustream/edustream-api/pkg/errors"
)

type mockUserRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	createErr    error
	created      []*models.User
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == "" {
		user.ID = "generated"
	}
	if m.usersByEmail == nil {
		m.usersByEmail = make(map[string]*models.User)
	}
	if m.usersByID == nil {
		m.usersByID = make(map[string]*models.User)
	}
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if user, ok := m.usersByID[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "edustream-api",
	})
}

func TestRegisterAndLogin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Student@Example.com",
		Password: "secret123",
		Name:     "Student",
		Phone:    "9999999999",
		City:     "Mumbai",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	// Emails are normalized to lower case.
	assert.Equal(t, "student@example.com", res.User.Email)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{usersByEmail: map[string]*models.User{
		"taken@example.com": {ID: "u1", Email: "taken@example.com"},
	}}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "secret123",
		Name:     "Dup",
		Phone:    "9999999999",
		City:     "Pune",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	repo := &mockUserRepo{usersByEmail: map[string]*models.User{
		"user@example.com": {ID: "u1", Email: "user@example.com", PasswordHash: string(hash)},
	}}
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAdminLoginRejectsStudent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	repo := &mockUserRepo{usersByEmail: map[string]*models.User{
		"student@example.com": {ID: "u1", Email: "student@example.com", PasswordHash: string(hash), Role: models.RoleStudent},
	}}
	svc := newAuthService(repo)

	_, err := svc.AdminLogin(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestValidateToken(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "user@example.com",
		Password: "secret123",
		Name:     "User",
		Phone:    "9999999999",
		City:     "Delhi",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	repo := &mockUserRepo{}
	svc := NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: -time.Minute,
		Issuer:      "edustream-api",
	})

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "user@example.com",
		Password: "secret123",
		Name:     "User",
		Phone:    "9999999999",
		City:     "Delhi",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(res.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.DefaultCost)
	user := &models.User{ID: "u1", Email: "user@example.com", PasswordHash: string(hash)}
	repo := &mockUserRepo{
		usersByEmail: map[string]*models.User{user.Email: user},
		usersByID:    map[string]*models.User{user.ID: user},
	}
	svc := newAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{CurrentPassword: "oldpass", NewPassword: "newpass1"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpass1")))

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{CurrentPassword: "oldpass", NewPassword: "another1"})
	require.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthService(repo)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "adminpass"))
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.RoleAdmin, repo.created[0].Role)

	// Second boot finds the account and does nothing.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin@example.com", "adminpass"))
	assert.Len(t, repo.created, 1)

	// Unconfigured credentials skip the bootstrap entirely.
	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	assert.Len(t, repo.created, 1)
}
