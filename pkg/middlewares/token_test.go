package middlewares

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	errprocess "marketplace_chat_service/pkg/err"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth map[string]string

func (s staticAuth) Authenticate(_ context.Context, token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errprocess.Authentication("invalid token", nil)
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTMiddleware(staticAuth{"good": "buyer-1"}), func(c *fiber.Ctx) error {
		return c.SendString(MemberID(c))
	})
	return app
}

func TestJWTMiddleware_TokenSources(t *testing.T) {
	app := newApp()

	cases := []struct {
		name  string
		setup func(r *httptestRequest)
	}{
		{"query", func(r *httptestRequest) { r.url = "/me?auth=good" }},
		{"cookie", func(r *httptestRequest) { r.header("Cookie", CookieToken+"=good") }},
		{"bearer", func(r *httptestRequest) { r.header("Authorization", "Bearer good") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &httptestRequest{url: "/me", headers: map[string]string{}}
			tc.setup(r)
			req := httptest.NewRequest("GET", r.url, nil)
			for k, v := range r.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "buyer-1", string(body))
		})
	}
}

func TestJWTMiddleware_Rejects(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/me?auth=bad", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type httptestRequest struct {
	url     string
	headers map[string]string
}

func (r *httptestRequest) header(k, v string) { r.headers[k] = v }
