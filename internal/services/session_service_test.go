package services_test

import (
	"context"
	"testing"

	"securemail/internal/errs"
	"securemail/internal/models"
	"securemail/internal/security"
	"securemail/internal/services"
	"securemail/internal/sessions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionService(t *testing.T) {
	ctx := context.Background()
	registry := sessions.NewMemoryRegistry()
	service := services.NewSessionService(registry, zap.NewNop())

	rob := security.NewPrincipal(&models.User{ID: 1, Email: "rob@example.org"})
	luke := security.NewPrincipal(&models.User{ID: 2, Email: "luke@example.com"})
	require.NoError(t, registry.RegisterNewSession(ctx, "r1", rob))
	require.NoError(t, registry.RegisterNewSession(ctx, "r2", rob))
	require.NoError(t, registry.RegisterNewSession(ctx, "l1", luke))

	principals, err := service.Principals(ctx)
	require.NoError(t, err)
	assert.Len(t, principals, 2)

	user, infos, err := service.SessionsForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "rob@example.org", user.Email)
	assert.Len(t, infos, 2)

	_, _, err = service.SessionsForUser(ctx, 99)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, service.Expire(ctx, "l1"))
	_, _, err = service.SessionsForUser(ctx, 2)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	assert.ErrorIs(t, service.Expire(ctx, "missing"), errs.ErrNotFound)
}
