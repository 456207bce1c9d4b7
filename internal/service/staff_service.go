package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/auth"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

const (
	defaultStaffSessionTTL = 12 * time.Hour
	minPasswordLength      = 8
)

// StaffService authenticates admin dashboard users and manages their accounts
type StaffService struct {
	staff      repository.StaffRepository
	jwtSecret  string
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewStaffService creates a staff service
func NewStaffService(staff repository.StaffRepository, jwtSecret string, sessionTTL time.Duration, logger *zap.Logger) *StaffService {
	if sessionTTL <= 0 {
		sessionTTL = defaultStaffSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{
		staff:      staff,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// SessionTTL is the lifetime of tokens issued by Login
func (s *StaffService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Login checks the credentials and returns a signed session token
func (s *StaffService) Login(ctx context.Context, email, password string) (string, *domain.StaffUser, error) {
	u, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	// same error for unknown email and wrong password
	if u == nil || !u.IsActive || !auth.VerifyPassword(password, u.PasswordHash) {
		s.logger.Warn("Staff login failed", zap.String("email", email))
		return "", nil, &errors.ErrUnauthorized{Message: "Invalid email or password"}
	}

	token, err := auth.GenerateToken(u.ID, u.Role, auth.AudienceStaff, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Staff login", zap.String("staff_id", u.ID.String()), zap.String("role", string(u.Role)))
	return token, u, nil
}

// CreateStaff creates an account with a hashed password
func (s *StaffService) CreateStaff(ctx context.Context, email, name, password string, role domain.StaffRole) (*domain.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &errors.ErrValidation{Message: "valid email is required", Fields: map[string]string{"email": "invalid"}}
	}
	if !role.IsValid() {
		return nil, &errors.ErrValidation{Message: "role must be admin, staff or partner", Fields: map[string]string{"role": "invalid"}}
	}
	if len(password) < minPasswordLength {
		return nil, &errors.ErrValidation{Message: "password must be at least 8 characters", Fields: map[string]string{"password": "too short"}}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.StaffUser{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.staff.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("Staff account created", zap.String("staff_id", u.ID.String()), zap.String("role", string(role)))
	return u, nil
}

// ListStaff returns all staff accounts
func (s *StaffService) ListStaff(ctx context.Context) ([]*domain.StaffUser, error) {
	return s.staff.List(ctx)
}
