package settings

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/pkg/jwt"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (SettingsService, jwt.JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtService := jwt.NewJWTServiceWithSecret("test-secret")
	svc := NewSettingsService(
		state.NewStateService(state.NewMemoryRepository()),
		jwtService,
		map[domain.UserRole]string{domain.RoleAdmin: string(hash)},
	)
	return svc, jwtService
}

func TestMode_DefaultsToNormalAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	mode, err := svc.GetMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeResponse{Mode: domain.ModeNormal, Factor: 1.0}, mode)

	_, err = svc.SetMode(ctx, domain.SetModeRequest{Mode: domain.ModeFest})
	require.NoError(t, err)

	mode, err = svc.GetMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeFest, mode.Mode)
	assert.Equal(t, 1.6, mode.Factor)

	_, err = svc.SetMode(ctx, domain.SetModeRequest{Mode: "HOLIDAY"})
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	svc, jwtService := newTestService(t)

	role, err := svc.ActiveRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, role)

	_, err = svc.StartSession(ctx, domain.SessionRequest{Role: domain.RoleAdmin, Pin: "0000"})
	assert.ErrorIs(t, err, domain.ErrInvalidPin)

	session, err := svc.StartSession(ctx, domain.SessionRequest{Role: domain.RoleAdmin, Pin: "4321"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, session.Role)

	tokenRole, _, err := jwtService.GetRoleByToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, tokenRole)

	role, err = svc.ActiveRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	// STAFF has no configured hash and STUDENT never needs a PIN.
	_, err = svc.StartSession(ctx, domain.SessionRequest{Role: domain.RoleStaff})
	require.NoError(t, err)
	_, err = svc.StartSession(ctx, domain.SessionRequest{Role: domain.RoleStudent, Pin: "wrong"})
	require.NoError(t, err)

	_, err = svc.StartSession(ctx, domain.SessionRequest{Role: "GUEST"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
