package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"securemail/internal/middleware"
	"securemail/internal/models"
	"securemail/internal/repositories"
	"securemail/internal/security"
	"securemail/internal/services"
	"securemail/internal/sessions"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*services.AuthService, *sessions.MemoryRegistry) {
	t.Helper()
	users := repositories.NewMemoryUserRepository()
	messages := repositories.NewMemoryMessageRepository(users)
	require.NoError(t, repositories.Seed(context.Background(), users, messages))

	registry := sessions.NewMemoryRegistry()
	authService := services.NewAuthService(users,
		security.NewProviderManager(security.NewDirectoryProvider(users)),
		registry,
		services.AuthOptions{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour},
		zap.NewNop())
	return authService, registry
}

func whoAmI(c *fiber.Ctx) error {
	user := security.FromFiber(c).CurrentUser()
	sessionID, _ := c.Locals(middleware.SessionIDKey).(string)
	return c.JSON(fiber.Map{"email": user.Email, "session": sessionID})
}

func TestAuthRequired(t *testing.T) {
	authService, registry := newAuthService(t)
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(authService, zap.NewNop()), whoAmI)

	token, principal, err := authService.Login(context.Background(), "rob@example.org", "penguin")
	require.NoError(t, err)
	require.Equal(t, "rob@example.org", principal.User.Email)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + token, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	t.Run("expired session", func(t *testing.T) {
		claims, err := authService.ValidateToken(token)
		require.NoError(t, err)
		require.NoError(t, registry.ExpireNow(context.Background(), claims["sid"].(string)))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAdminRequired(t *testing.T) {
	users := map[string]*models.User{
		"rob":  {ID: 1, Email: "rob@example.org"},
		"luke": {ID: 2, Email: "luke@example.com"},
	}
	app := fiber.New()
	app.Get("/admin/:name",
		func(c *fiber.Ctx) error {
			if user, ok := users[c.Params("name")]; ok {
				security.SetPrincipal(c, security.NewPrincipal(user))
			}
			return c.Next()
		},
		middleware.AdminRequired(security.LiveUserContext),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) },
	)

	tests := map[string]int{
		"luke":      http.StatusNoContent,
		"rob":       http.StatusForbidden,
		"anonymous": http.StatusUnauthorized,
	}
	for name, want := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin/"+name, nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, name)
	}
}

func TestStubAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/me", middleware.StubAuth(), whoAmI)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "rob@example.org", body["email"])
	assert.Empty(t, body["session"])
}
