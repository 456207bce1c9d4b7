package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/service"
)

// CustomerCookie carries the storefront session token
const CustomerCookie = "tb_customer"

type customerRequest struct {
	Phone   string  `json:"phone"`
	OTP     string  `json:"otp"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// CustomerHandlers serves the storefront signup and profile endpoints
type CustomerHandlers struct {
	customers *service.CustomerService
	// exposeOTP echoes the code in send-otp responses until a WhatsApp sender exists
	exposeOTP bool
	secure    bool
	logger    *zap.Logger
}

// NewCustomerHandlers creates the customer handlers. In production the OTP is never echoed
// and the session cookie is marked Secure.
func NewCustomerHandlers(customers *service.CustomerService, production bool, logger *zap.Logger) *CustomerHandlers {
	return &CustomerHandlers{
		customers: customers,
		exposeOTP: !production,
		secure:    production,
		logger:    logger,
	}
}

func (h *CustomerHandlers) setSession(c *gin.Context, customer *domain.Customer) bool {
	token, err := h.customers.IssueSession(customer)
	if err != nil {
		h.logger.Error("Failed to issue customer session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CustomerCookie, token, int(service.CustomerSessionTTL.Seconds()), "/", "", h.secure, true)
	return true
}

// SendOTP handles POST /api/auth/customer/send-otp
func (h *CustomerHandlers) SendOTP(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	code, err := h.customers.SendOTP(c.Request.Context(), req.Phone)
	if err != nil {
		respondError(c, h.logger, "Failed to generate OTP", err)
		return
	}

	body := gin.H{"ok": true, "message": "OTP sent to your WhatsApp number"}
	if h.exposeOTP {
		h.logger.Debug("OTP issued", zap.String("phone", service.CleanPhone(req.Phone)), zap.String("otp", code))
		body["otp"] = code
	}
	c.JSON(http.StatusOK, body)
}

// VerifyOTP handles POST /api/auth/customer/verify-otp
func (h *CustomerHandlers) VerifyOTP(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.customers.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		respondError(c, h.logger, "Failed to verify OTP", err)
		return
	}
	// a verified phone alone proves nothing; the session needs a matched code
	if res.CodeChecked && !h.setSession(c, res.Customer) {
		return
	}
	if res.AlreadyVerified {
		c.JSON(http.StatusOK, gin.H{"ok": true, "alreadyVerified": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "customer_id": res.Customer.ID.String()})
}

// CompleteSignup handles POST /api/auth/customer/complete-signup
func (h *CustomerHandlers) CompleteSignup(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.CompleteSignup(c.Request.Context(), req.Phone, req.Name, req.Address)
	if err != nil {
		respondError(c, h.logger, "Failed to save profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "customer_id": customer.ID.String()})
}

// Register handles POST /api/auth/customer/register
func (h *CustomerHandlers) Register(c *gin.Context) {
	var req customerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Register(c.Request.Context(), req.Name, req.Phone, req.Address)
	if err != nil {
		respondError(c, h.logger, "Failed to save details", err)
		return
	}
	if !h.setSession(c, customer) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentCustomer resolves the session cookie, answering 401 when it is missing or invalid
func (h *CustomerHandlers) currentCustomer(c *gin.Context) (*domain.Customer, bool) {
	token, _ := c.Cookie(CustomerCookie)
	id, err := h.customers.ParseSession(token)
	if err != nil {
		respondError(c, h.logger, "Invalid customer session", err)
		return nil, false
	}
	customer, err := h.customers.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to load customer", err)
		return nil, false
	}
	return customer, true
}

// GetProfile handles GET /api/auth/customer/profile
func (h *CustomerHandlers) GetProfile(c *gin.Context) {
	customer, ok := h.currentCustomer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": service.ToCustomerResponse(customer)})
}

// UpdateProfile handles PUT /api/auth/customer/profile
func (h *CustomerHandlers) UpdateProfile(c *gin.Context) {
	customer, ok := h.currentCustomer(c)
	if !ok {
		return
	}
	var body struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if !bindJSON(c, &body) {
		return
	}
	updated, err := h.customers.UpdateProfile(c.Request.Context(), customer.ID, body.Name, body.Address)
	if err != nil {
		respondError(c, h.logger, "Failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "customer": service.ToCustomerResponse(updated)})
}

// HandleListCustomers handles GET /api/admin/customers
func HandleListCustomers(customers *service.CustomerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := customers.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, "Failed to list customers", err)
			return
		}
		out := make([]service.CustomerResponse, len(list))
		for i, cu := range list {
			out[i] = service.ToCustomerResponse(cu)
		}
		c.JSON(http.StatusOK, gin.H{"customers": out})
	}
}

// HandleAddCustomer handles POST /api/admin/customers. The customer is stored as verified.
func HandleAddCustomer(customers *service.CustomerService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customerRequest
		if !bindJSON(c, &req) {
			return
		}
		customer, err := customers.Register(c.Request.Context(), req.Name, req.Phone, req.Address)
		if err != nil {
			respondError(c, logger, "Failed to add customer", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "customer": service.ToCustomerResponse(customer)})
	}
}
