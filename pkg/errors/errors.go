package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/chiefcousin/toybox/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency, sync already running)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrNotConnected is returned when Zoho has no stored refresh token
type ErrNotConnected struct{}

func (e *ErrNotConnected) Error() string {
	return "Zoho Inventory is not connected. Complete OAuth from Admin → Settings."
}

// ErrTokenRefresh is returned when the Zoho token endpoint rejects a grant
type ErrTokenRefresh struct {
	Status int
	Body   string
	Code   string // "error" field of a 2xx body
}

func (e *ErrTokenRefresh) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("zoho token error: %s", e.Code)
	}
	return fmt.Sprintf("zoho token refresh failed (%d): %s", e.Status, e.Body)
}

// ErrVendorAPI is returned when Zoho Inventory answers non-2xx or with a non-zero code
type ErrVendorAPI struct {
	Status  int
	Code    int
	Message string
}

func (e *ErrVendorAPI) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("zoho API error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("zoho API request failed (%d): %s", e.Status, e.Message)
}

// IsNotFound reports whether err is or wraps *ErrNotFound
func IsNotFound(err error) bool {
	var e *ErrNotFound
	return stderrors.As(err, &e)
}

// IsConflict reports whether err is or wraps *ErrConflict
func IsConflict(err error) bool {
	var e *ErrConflict
	return stderrors.As(err, &e)
}

// IsNotConnected reports whether err is or wraps *ErrNotConnected
func IsNotConnected(err error) bool {
	var e *ErrNotConnected
	return stderrors.As(err, &e)
}
