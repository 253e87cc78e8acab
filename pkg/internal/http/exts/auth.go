package exts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lunarfall/ballot/pkg/internal/models"
	"github.com/spf13/viper"
)

// AuthMiddleware resolves the bearer token issued by the external identity
// provider and parks the account on the request context. Requests without
// a usable token simply stay anonymous; the Ensure helpers gate later.
func AuthMiddleware(c *fiber.Ctx) error {
	tk := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer"))
	if len(tk) > 0 {
		if account, err := Authenticate(tk); err == nil {
			c.Locals("user", account)
		}
	}

	return c.Next()
}

func Authenticate(tk string) (models.Account, error) {
	var account models.Account

	token, err := jwt.Parse(tk, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(viper.GetString("security.jwt_secret")), nil
	})
	if err != nil {
		return account, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return account, fmt.Errorf("unexpected token claims")
	}

	switch id := claims["sub"].(type) {
	case float64:
		account.ID = uint(id)
	case string:
		parsed, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return account, fmt.Errorf("unexpected subject claim: %v", err)
		}
		account.ID = uint(parsed)
	}
	if account.ID == 0 {
		return account, fmt.Errorf("token is missing the subject claim")
	}
	if name, ok := claims["name"].(string); ok {
		account.Name = name
	}
	account.Role = models.RoleUser
	if role, ok := claims["role"].(string); ok && role == models.RoleAdmin {
		account.Role = models.RoleAdmin
	}

	return account, nil
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if _, ok := c.Locals("user").(models.Account); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "you must be authenticated to do this")
	}
	return nil
}

func EnsureAdministrator(c *fiber.Ctx) error {
	user, ok := c.Locals("user").(models.Account)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "you must be authenticated to do this")
	}
	if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "only administrators can do this")
	}
	return nil
}
