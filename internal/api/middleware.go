package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuspulse/events-server/internal/models"
	"github.com/campuspulse/events-server/internal/service"
)

const accountContextKey = "account"

// RequestLogger returns a Gin middleware that logs every request with a
// generated request id.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.New().String()
		c.Set("requestId", requestID)

		c.Next()

		logger.Info("request",
			zap.String("requestId", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func abortUnauthorized(c *gin.Context) {
	// One opaque message for every authentication failure
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "UNAUTHORIZED",
		Message: "Authentication required",
	})
	c.Abort()
}

// Authenticate returns a Gin middleware that verifies the bearer token and
// resolves the calling account into the request context.
func (h *Handler) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c)
			return
		}

		email, err := h.tokens.Verify(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		account, err := h.svc.ResolveAccount(c.Request.Context(), email)
		if err != nil {
			// Only credential failures collapse to the opaque 401; a store
			// outage is not the caller's fault and surfaces as such.
			if errors.Is(err, service.ErrUnauthenticated) {
				abortUnauthorized(c)
				return
			}
			h.respondError(c, err)
			c.Abort()
			return
		}

		c.Set(accountContextKey, account)
		c.Next()
	}
}

// RequireAdmin gates a route on membership in the configured admin
// allow-list. Must run after Authenticate.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := currentAccount(c)
		if account == nil || !service.IsAdmin(account.Email, h.policy.AdminEmails) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Status:  "error",
				Code:    "FORBIDDEN",
				Message: "Admin privileges required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *models.Account {
	value, ok := c.Get(accountContextKey)
	if !ok {
		return nil
	}
	account, ok := value.(*models.Account)
	if !ok {
		return nil
	}
	return account
}
