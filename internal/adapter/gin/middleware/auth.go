package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/security"
)

// UserIDKey is the gin context key holding the authenticated user id (int64).
const UserIDKey = "user_id"

var (
	errTokenExpired = pkgerrors.NewUnauthorizedError("Token expired")
	errInvalidToken = pkgerrors.NewUnauthorizedError("Invalid token")
)

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (*security.Claims, error)
}

// Auth rejects requests without a valid "Authorization: Bearer <token>" header.
// On success the user id is stored in the gin context and in the request context.
func Auth(tokens TokenParser, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := bearerToken(c.GetHeader("Authorization"))
		if !found {
			abort(c, pkgerrors.ErrUnauthenticated)
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Debug("rejected access token", zap.Error(err))
			if errors.Is(err, security.ErrTokenExpired) {
				abort(c, errTokenExpired)
				return
			}
			abort(c, errInvalidToken)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), strconv.FormatInt(claims.UserID, 10)))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abort(c *gin.Context, err *pkgerrors.UnauthorizedError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"success": false,
		"message": err.Error(),
	})
}
