package security_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"securemail/internal/models"
	"securemail/internal/security"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubUserContext(t *testing.T) {
	var uc security.UserContext = security.StubUserContext{}

	user := uc.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "rob@example.org", user.Email)
	assert.Equal(t, []string{security.RoleUser}, uc.CurrentPrincipal().Roles)
}

func TestLocalsUserContext(t *testing.T) {
	luke := &models.User{ID: 2, Email: "luke@example.com"}
	app := fiber.New()
	app.Get("/anonymous", func(c *fiber.Ctx) error {
		uc := security.FromFiber(c)
		assert.Nil(t, uc.CurrentUser())
		assert.Nil(t, uc.CurrentPrincipal())
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/authenticated", func(c *fiber.Ctx) error {
		security.SetPrincipal(c, security.NewPrincipal(luke))
		uc := security.FromFiber(c)
		assert.True(t, uc.CurrentUser().Equal(luke))
		assert.True(t, uc.CurrentPrincipal().IsAdmin())
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/anonymous", "/authenticated"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
}
