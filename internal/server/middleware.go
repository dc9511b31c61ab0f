// Package server exposes the HTTP API.
// middleware.go holds request logging, metrics and JWT auth.
package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/globalcluster/referral-backend/internal/auth"
	"github.com/globalcluster/referral-backend/internal/config"
	"github.com/globalcluster/referral-backend/internal/monitoring"
)

// Gin context keys set by the auth middleware.
const (
	ctxUserID  = "userID"
	ctxEmail   = "userEmail"
	ctxRole    = "userRole"
	ctxIsStaff = "isStaff"
)

// RequestLogger logs every request and records the Prometheus counters.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		monitoring.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(c.Request.Method, path).Observe(latency.Seconds())

		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": latency.String(),
		})
		if status >= 500 {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request handled")
		}
	}
}

// Auth validates the Bearer access token and stores the caller's identity
// on the context.
func Auth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := auth.ValidateAccessToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired access token"})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxIsStaff, claims.IsStaff)
		c.Next()
	}
}

// RequireStaff aborts unless the authenticated caller is staff.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsStaff) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(ctxUserID)
	id, _ := v.(uuid.UUID)
	return id
}

func currentEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

func isStaff(c *gin.Context) bool {
	return c.GetBool(ctxIsStaff)
}
