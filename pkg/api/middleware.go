package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/netconfig/netconfig/pkg/auth"
	"github.com/netconfig/netconfig/pkg/netconfig"
	"github.com/netconfig/netconfig/pkg/util"
)

const userContextKey = "user"

// authRequired validates the bearer token, loads the user it names and
// attaches it to the request context
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := s.tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "token expired")
			} else {
				abort(c, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		// Role comes from the registry, not the token, so role changes
		// apply to tokens already issued
		u, err := s.registry.User(claims.UserID)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		c.Set(userContextKey, &u)
		ctx := auth.WithUser(c.Request.Context(), &u)
		ctx = netconfig.WithClientIP(ctx, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// adminRequired rejects non-admin users. It runs after authRequired.
func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.checker.RequireAdmin(currentUser(c)); err != nil {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// requestLogger logs each request at debug level, and failures at warn
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := util.WithFields(map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}

func currentUser(c *gin.Context) *auth.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := v.(*auth.User)
	return u
}
