package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/auth"
	"github.com/chiefcousin/toybox/internal/domain"
)

const (
	StaffContextKey = "staff"
	// StaffCookie carries the staff JWT for the admin dashboard
	StaffCookie = "tb_staff"
)

// StaffAuth authenticates admin requests using a staff JWT from the
// Authorization header or the tb_staff cookie
func StaffAuth(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}
		if token == "" {
			if cookie, err := c.Cookie(StaffCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(token, auth.AudienceStaff, jwtSecret)
		if err != nil {
			logger.Debug("Rejected staff token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(StaffContextKey, claims)
		c.Next()
	}
}

// RequireRole lets only the listed roles through. Must run after StaffAuth.
func RequireRole(roles ...domain.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetStaffFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		c.Abort()
	}
}

// GetStaffFromContext retrieves the staff claims set by StaffAuth
func GetStaffFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(StaffContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// StaffID returns the authenticated staff member's id, or uuid.Nil
func StaffID(c *gin.Context) uuid.UUID {
	if claims, ok := GetStaffFromContext(c); ok {
		return claims.UserID
	}
	return uuid.Nil
}

// bearerToken returns the token of a "Bearer" Authorization header. An absent
// header yields "", true; a malformed one yields false.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
