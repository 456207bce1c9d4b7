package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/api/middleware"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/service"
)

// LoginRequest represents a staff login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateStaffRequest represents a new staff account
type CreateStaffRequest struct {
	Email    string           `json:"email" binding:"required"`
	Name     string           `json:"name"`
	Password string           `json:"password" binding:"required"`
	Role     domain.StaffRole `json:"role" binding:"required"`
}

// HandleLogin handles POST /api/admin/login. The token is returned in the body
// for API clients and set as the tb_staff cookie for the dashboard.
func HandleLogin(staff *service.StaffService, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		token, user, err := staff.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			logger.Info("Staff login failed", zap.String("email", req.Email))
			respondError(c, logger, "Staff login failed", err)
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.StaffCookie, token, int(staff.SessionTTL().Seconds()), "/", "", secure, true)
		c.JSON(http.StatusOK, gin.H{
			"ok":    true,
			"token": token,
			"user":  service.ToStaffResponse(user),
		})
	}
}

// HandleLogout handles POST /api/admin/logout
func HandleLogout(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.StaffCookie, "", -1, "/", "", secure, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HandleCreateStaff handles POST /api/admin/staff (admin only)
func HandleCreateStaff(staff *service.StaffService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateStaffRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and role are required"})
			return
		}

		user, err := staff.CreateStaff(c.Request.Context(), req.Email, req.Name, req.Password, req.Role)
		if err != nil {
			respondError(c, logger, "Failed to create staff account", err)
			return
		}
		logger.Info("Staff account created",
			zap.String("staff_id", user.ID.String()),
			zap.String("role", string(user.Role)),
			zap.String("created_by", middleware.StaffID(c).String()),
		)
		c.JSON(http.StatusCreated, gin.H{"ok": true, "user": service.ToStaffResponse(user)})
	}
}

// HandleListStaff handles GET /api/admin/staff (admin only)
func HandleListStaff(staff *service.StaffService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := staff.ListStaff(c.Request.Context())
		if err != nil {
			respondError(c, logger, "Failed to list staff", err)
			return
		}
		out := make([]service.StaffResponse, len(users))
		for i, u := range users {
			out[i] = service.ToStaffResponse(u)
		}
		c.JSON(http.StatusOK, gin.H{"staff": out})
	}
}

// HandleDashboard handles GET /api/admin/dashboard
func HandleDashboard(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := catalog.Dashboard(c.Request.Context())
		if err != nil {
			respondError(c, logger, "Failed to load dashboard", err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
