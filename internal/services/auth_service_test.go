package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ohisee/backend/internal/config"
	"github.com/ohisee/backend/internal/dto"
	"github.com/ohisee/backend/internal/models"
	"github.com/ohisee/backend/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) (*AuthService, *memory.Store, *fakeNotifier) {
	t.Helper()
	st := memory.New()
	notifier := &fakeNotifier{}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: 168 * time.Hour}
	return NewAuthService(st, cfg, notifier), st, notifier
}

func registerReq() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "jordan@acme.test",
		Password:  "correct-horse",
		FirstName: "Jordan",
		LastName:  "Lee",
		Role:      models.RoleCompliance,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Register("acme", registerReq())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleCompliance, resp.User.Role)

	login, err := svc.Login("acme", &dto.LoginRequest{Email: "jordan@acme.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestTokenEmbedsIdentity(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "jordan@acme.test", claims["email"])
	assert.Equal(t, models.RoleCompliance, claims["role"])
	assert.Equal(t, "acme", claims["tenant_id"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), exp.Time, time.Minute)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	_, err = svc.Register("acme", registerReq())
	assert.ErrorIs(t, err, ErrUserExists)

	// Same email under a different tenant registers fine.
	_, err = svc.Register("globex", registerReq())
	assert.NoError(t, err)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	req := registerReq()
	req.Password = "short"
	_, err := svc.Register("acme", req)
	assert.Error(t, err)
}

func TestLoginWrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	_, wrongPass := svc.Login("acme", &dto.LoginRequest{Email: "jordan@acme.test", Password: "wrong"})
	_, unknown := svc.Login("acme", &dto.LoginRequest{Email: "nobody@acme.test", Password: "wrong"})

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, st, _ := newTestAuthService(t)

	resp, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	require.NoError(t, st.UpdateUser("acme", resp.User.ID, map[string]interface{}{"is_active": false}))

	_, err = svc.Login("acme", &dto.LoginRequest{Email: "jordan@acme.test", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLoginRecordsLastLogin(t *testing.T) {
	svc, st, _ := newTestAuthService(t)

	_, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	_, err = svc.Login("acme", &dto.LoginRequest{Email: "jordan@acme.test", Password: "correct-horse"})
	require.NoError(t, err)

	user, err := st.GetUserByEmail("acme", "jordan@acme.test")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.WithinDuration(t, time.Now(), *user.LastLogin, time.Minute)
}

func TestForgotPasswordOnlyMailsExistingAccounts(t *testing.T) {
	svc, _, notifier := newTestAuthService(t)

	_, err := svc.Register("acme", registerReq())
	require.NoError(t, err)

	svc.ForgotPassword("acme", "jordan@acme.test")
	svc.ForgotPassword("acme", "nobody@acme.test")

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.Equal(t, []string{"jordan@acme.test"}, notifier.resets)
}
