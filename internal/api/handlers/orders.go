package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/api/middleware"
	"github.com/chiefcousin/toybox/internal/domain"
	"github.com/chiefcousin/toybox/internal/service"
)

func intentResponse(res *service.OrderIntentResult) gin.H {
	body := gin.H{
		"ok":           true,
		"order_id":     res.Order.ID.String(),
		"whatsapp_url": res.WhatsAppURL,
	}
	if res.Replayed {
		body["replayed"] = true
	}
	return body
}

// HandleWhatsAppOrder handles POST /api/whatsapp-order.
// An Idempotency-Key header turns double taps into a single order.
func HandleWhatsAppOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idem := middleware.GetIdempotency(c)
		if idem.Replay() {
			res, err := orders.ReplayIntent(c.Request.Context(), idem.ExistingOrderID)
			if err != nil {
				respondError(c, logger, "Failed to replay order", err)
				return
			}
			c.JSON(http.StatusOK, intentResponse(res))
			return
		}

		var req service.OrderIntentRequest
		if !bindJSON(c, &req) {
			return
		}

		res, err := orders.RecordIntent(c.Request.Context(), req, idem.Key, idem.RequestHash)
		if err != nil {
			respondError(c, logger, "Failed to log order", err)
			return
		}
		c.JSON(http.StatusOK, intentResponse(res))
	}
}

// HandleUpdateOrder handles PATCH /api/orders/:id.
// Confirming an order pushes it to Zoho; push failures are stored on the order, not returned.
func HandleUpdateOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.UpdateOrderRequest
		if !bindJSON(c, &req) {
			return
		}

		order, err := orders.UpdateOrder(c.Request.Context(), orderID, req)
		if err != nil {
			respondError(c, logger, "Failed to update order", err)
			return
		}

		logger.Info("Order updated",
			zap.String("order_id", orderID.String()),
			zap.String("status", string(order.Status)),
			zap.String("staff_id", middleware.StaffID(c).String()),
		)
		c.JSON(http.StatusOK, gin.H{"ok": true, "order": service.ToOrderResponse(order)})
	}
}

// HandleGetOrder handles GET /api/admin/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}
		order, err := orders.GetOrder(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, "Failed to get order", err)
			return
		}
		c.JSON(http.StatusOK, service.ToOrderResponse(order))
	}
}

// HandleListOrders handles GET /api/admin/orders
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 200 {
			limit = 50
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		list, total, err := orders.ListOrders(c.Request.Context(), domain.OrderFilter{
			Status: domain.OrderStatus(c.Query("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			respondError(c, logger, "Failed to list orders", err)
			return
		}

		out := make([]service.OrderResponse, len(list))
		for i, o := range list {
			out[i] = service.ToOrderResponse(o)
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": out,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}
}
