package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	hash, err := HashPassword("secret", bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(Middleware(hash))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestMiddleware(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{name: "header", target: "/", header: "secret", want: fiber.StatusOK},
		{name: "query", target: "/?token=secret", want: fiber.StatusOK},
		{name: "missing", target: "/", want: fiber.StatusUnauthorized},
		{name: "wrong header", target: "/", header: "guess", want: fiber.StatusUnauthorized},
		{name: "wrong query", target: "/?token=guess", want: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)

	hash, err := HashPassword("dev", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("dev")))
}
