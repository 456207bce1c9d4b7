package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/auth"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/repository"
	"github.com/chiefcousin/toybox/pkg/errors"
)

const (
	minPhoneLength = 7
	defaultOTPTTL  = 10 * time.Minute
	// CustomerSessionTTL is how long a storefront session cookie stays valid
	CustomerSessionTTL = 365 * 24 * time.Hour
)

// VerifyResult is the outcome of a successful OTP check
type VerifyResult struct {
	Customer        *domain.Customer
	AlreadyVerified bool
	// CodeChecked is set only when a pending code was matched; only then may a session be issued
	CodeChecked bool
}

// CustomerService runs the phone OTP signup flow and storefront sessions
type CustomerService struct {
	customers repository.CustomerRepository
	otpTTL    time.Duration
	jwtSecret string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCustomerService creates a customer service
func NewCustomerService(customers repository.CustomerRepository, otpTTL time.Duration, jwtSecret string, logger *zap.Logger) *CustomerService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customers: customers,
		otpTTL:    otpTTL,
		jwtSecret: jwtSecret,
		logger:    logger,
		now:       time.Now,
	}
}

// CleanPhone trims the number and removes inner whitespace
func CleanPhone(phone string) string {
	return strings.Join(strings.Fields(phone), "")
}

func validPhone(phone string) bool {
	return len(strings.TrimSpace(phone)) >= minPhoneLength
}

// SendOTP stores a fresh hashed code for phone and returns the plain code.
// Delivering the code is the caller's job.
func (s *CustomerService) SendOTP(ctx context.Context, phone string) (string, error) {
	if !validPhone(phone) {
		return "", &errors.ErrValidation{Message: "Valid phone number is required"}
	}
	clean := CleanPhone(phone)

	code, err := auth.GenerateOTP()
	if err != nil {
		return "", err
	}
	hash, err := auth.HashOTP(code)
	if err != nil {
		return "", err
	}
	if err := s.customers.SaveOTP(ctx, clean, hash, s.now().Add(s.otpTTL)); err != nil {
		s.logger.Error("Failed to generate OTP", zap.Error(err))
		return "", err
	}
	s.logger.Info("OTP issued", zap.String("phone", clean))
	return code, nil
}

// VerifyOTP checks code against the pending OTP for phone and marks the customer verified
func (s *CustomerService) VerifyOTP(ctx context.Context, phone, code string) (*VerifyResult, error) {
	if phone == "" || code == "" {
		return nil, &errors.ErrValidation{Message: "Phone and OTP are required"}
	}
	c, err := s.customers.GetByPhone(ctx, CleanPhone(phone))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &errors.ErrValidation{Message: "Phone number not found. Please request a new OTP."}
	}
	if c.IsVerified && c.OTPHash == nil {
		return &VerifyResult{Customer: c, AlreadyVerified: true}, nil
	}
	if c.OTPHash == nil || c.OTPExpiresAt == nil {
		return nil, &errors.ErrValidation{Message: "No OTP found. Please request a new one."}
	}
	if c.OTPExpiresAt.Before(s.now()) {
		return nil, &errors.ErrValidation{Message: "OTP has expired. Please request a new one."}
	}
	if !auth.VerifyPassword(strings.TrimSpace(code), *c.OTPHash) {
		return nil, &errors.ErrValidation{Message: "Incorrect OTP. Please try again."}
	}

	wasVerified := c.IsVerified
	if err := s.customers.MarkVerified(ctx, c.ID); err != nil {
		return nil, err
	}
	c.IsVerified = true
	c.OTPHash = nil
	c.OTPExpiresAt = nil
	return &VerifyResult{Customer: c, AlreadyVerified: wasVerified, CodeChecked: true}, nil
}

// CompleteSignup saves the profile of a verified customer
func (s *CustomerService) CompleteSignup(ctx context.Context, phone, name string, address *string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if phone == "" || name == "" {
		return nil, &errors.ErrValidation{Message: "Phone and name are required"}
	}
	c, err := s.customers.GetByPhone(ctx, CleanPhone(phone))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &errors.ErrValidation{Message: "Customer not found"}
	}
	if !c.IsVerified {
		return nil, &errors.ErrValidation{Message: "Phone number not verified"}
	}

	addr := trimOptional(address)
	if err := s.customers.UpdateProfile(ctx, c.ID, name, addr); err != nil {
		return nil, err
	}
	c.Name = name
	c.Address = addr
	return c, nil
}

// Register creates or updates a verified customer directly, without an OTP round-trip
func (s *CustomerService) Register(ctx context.Context, name, phone string, address *string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &errors.ErrValidation{Message: "Name is required"}
	}
	if !validPhone(phone) {
		return nil, &errors.ErrValidation{Message: "Valid phone number is required"}
	}
	return s.customers.UpsertVerified(ctx, CleanPhone(phone), name, trimOptional(address))
}

// Profile returns the customer behind a session
func (s *CustomerService) Profile(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, customerID)
}

// List returns all customers, newest first
func (s *CustomerService) List(ctx context.Context) ([]*domain.Customer, error) {
	return s.customers.List(ctx)
}

// UpdateProfile edits name and/or address. Absent fields are left unchanged.
func (s *CustomerService) UpdateProfile(ctx context.Context, customerID uuid.UUID, name, address *string) (*domain.Customer, error) {
	if name == nil && address == nil {
		return nil, &errors.ErrValidation{Message: "No fields to update"}
	}
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, &errors.ErrValidation{Message: "Name cannot be empty"}
		}
		c.Name = n
	}
	if address != nil {
		c.Address = trimOptional(address)
	}
	if err := s.customers.UpdateProfile(ctx, c.ID, c.Name, c.Address); err != nil {
		return nil, err
	}
	return c, nil
}

// IssueSession signs a storefront session token for the customer
func (s *CustomerService) IssueSession(c *domain.Customer) (string, error) {
	return auth.GenerateToken(c.ID, "", auth.AudienceCustomer, s.jwtSecret, CustomerSessionTTL)
}

// ParseSession returns the customer id carried by a session token
func (s *CustomerService) ParseSession(token string) (uuid.UUID, error) {
	claims, err := auth.ValidateToken(token, auth.AudienceCustomer, s.jwtSecret)
	if err != nil {
		return uuid.Nil, &errors.ErrUnauthorized{Message: "Not authenticated"}
	}
	return claims.UserID, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
