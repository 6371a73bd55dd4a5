package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"securemail/internal/config"
	"securemail/internal/models"
)

func testConfig(authMode string) config.Config {
	return config.Config{
		AppPort:          ":0",
		DatabaseDriver:   config.DriverMemory,
		JWTSecret:        "test_jwt_secret",
		TokenTTL:         time.Hour,
		SessionStore:     config.SessionStoreMemory,
		PasswordEncoding: config.EncodingPlain,
		AuthMode:         authMode,
		LogLevel:         "error",
	}
}

func newTestApplication(t *testing.T, authMode string) *application {
	t.Helper()
	app, err := newApplication(context.Background(), testConfig(authMode), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { app.close(zap.NewNop()) })
	return app
}

func TestHealthCheck(t *testing.T) {
	app := newTestApplication(t, config.AuthModeLive)

	resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.DriverMemory, body["database"])
	assert.Equal(t, false, body["events"])
}

func TestLiveModeRequiresToken(t *testing.T) {
	app := newTestApplication(t, config.AuthModeLive)

	resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/messages/inbox", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	jsonBody, _ := json.Marshal(map[string]string{"username": "rob@example.org", "password": "penguin"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.fiber.Test(req, -1)
	require.NoError(t, err)
	var loginResp map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&loginResp))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages/inbox", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp["token"])
	resp, err = app.fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var inbox []models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "Vulnerabilities Found?", inbox[0].Subject)
}

func TestStubModeActsAsRob(t *testing.T) {
	app := newTestApplication(t, config.AuthModeStub)

	resp, err := app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/messages/inbox", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var inbox []models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, "rob@example.org", inbox[0].Recipient.Email)

	// rob is not an administrator
	resp, err = app.fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users/sessions", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogMessageEvent(t *testing.T) {
	handle := logMessageEvent(zap.NewNop())

	assert.NoError(t, handle(amqp.Delivery{Body: []byte(`{"messageID":3,"senderID":1,"recipientID":2}`)}))
	assert.NoError(t, handle(amqp.Delivery{Body: []byte(`not json`)}))
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("loud")
	assert.Error(t, err)

	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)
}
