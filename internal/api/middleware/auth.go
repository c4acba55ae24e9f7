package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/response"
)

const (
	UserIDKey = "userID"
	UserKey   = "user"
)

// ProfileLoader resolves the profile of a verified identity.
// *service.AuthService satisfies it.
type ProfileLoader interface {
	EnsureProfile(ctx context.Context, id *identity.Identity) (*model.User, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Auth verifies the bearer token and loads the caller's profile.
func Auth(verifier identity.Verifier, profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			response.AuthError(c, "Debes iniciar sesión")
			c.Abort()
			return
		}

		token, ok := BearerToken(c)
		if !ok {
			response.AuthError(c, "Formato de autenticación inválido")
			c.Abort()
			return
		}

		user, err := Authenticate(c.Request.Context(), verifier, profiles, token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				response.AuthError(c, "Sesión inválida o expirada")
			} else {
				log.Error().Err(err).Msg("failed to load session")
				response.ServerError(c, "")
			}
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// Authenticate runs the session sequence: verify the token, then ensure a profile.
func Authenticate(ctx context.Context, verifier identity.Verifier, profiles ProfileLoader, token string) (*model.User, error) {
	id, err := verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return profiles.EnsureProfile(ctx, id)
}

func setUser(c *gin.Context, user *model.User) {
	c.Set(UserKey, user)
	c.Set(UserIDKey, user.ID)
}

// GetUser returns the authenticated caller.
func GetUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}

func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}

// RequireFounder must run after Auth.
func RequireFounder(gate *access.Gate) gin.HandlerFunc {
	return guard(func(u *model.User) bool {
		return gate.IsFounder(u.UserLevel, u.Email)
	}, "Solo los fundadores pueden realizar esta acción")
}

// RequireModerator admits founders and the maestro allow-list.
func RequireModerator(gate *access.Gate) gin.HandlerFunc {
	return guard(func(u *model.User) bool {
		return gate.CanModerate(u.UserLevel, u.Email)
	}, "Solo los maestros pueden realizar esta acción")
}

func guard(allow func(*model.User) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}
		if !allow(user) {
			response.PermissionError(c, message)
			c.Abort()
			return
		}
		c.Next()
	}
}
