package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"barfer_analytics/internal/common"
	"barfer_analytics/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		HandleErrorResponse(c, err)
		return nil
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleErrorResponse_CustomError(t *testing.T) {
	resp, err := errorApp(common.WithDetails(common.ErrInvalidInput, "limit")).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	body := decode(t, resp)
	assert.Equal(t, common.ErrCodeValidationInput.Code, body["code"])
	assert.Equal(t, "limit", body["details"])
	assert.Equal(t, "error", body["status"])
}

func TestHandleErrorResponse_PlainError(t *testing.T) {
	resp, err := errorApp(errors.New("boom")).Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, common.ErrCodeDatabase.Code, body["code"])
	assert.Equal(t, "boom", body["message"])
}

func TestRequestContextMiddleware_PropagatesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContextMiddleware())

	var seen any
	app.Get("/", func(c fiber.Ctx) error {
		seen = c.Context().Value(logger.RequestIDKey)
		return c.SendStatus(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	_, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", seen)
}
