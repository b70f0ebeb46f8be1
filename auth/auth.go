// auth/auth.go
package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	HeaderName = "X-Moodlog-Token"
	QueryName  = "token"
)

// HashPassword derives the bcrypt hash the middleware checks tokens against.
func HashPassword(password string, cost int) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password is empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Middleware rejects requests whose token does not match hash. Browsers'
// Browser websocket clients cannot set headers, so the token may also come as ?token=.
func Middleware(hash []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(HeaderName)
		if token == "" {
			token = c.Query(QueryName)
		}
		if token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
