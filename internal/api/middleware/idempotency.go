package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/internal/repository"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	idempotencyContextKey = "idempotency"
	maxIdempotencyKeyLen  = 255
)

// Idempotency is what the middleware learned about a keyed request.
// ExistingOrderID is set when the key was already bound to an order with the same body.
type Idempotency struct {
	Key             string
	RequestHash     string
	ExistingOrderID uuid.UUID
}

// Replay reports whether the handler should return the earlier order instead of creating one
func (i Idempotency) Replay() bool {
	return i.ExistingOrderID != uuid.Nil
}

// requestHash covers the route as well as the body so a key reused on another endpoint conflicts
func requestHash(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method + " " + c.FullPath() + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// IdempotencyMiddleware looks up the Idempotency-Key of a write request. A key seen before with
// the same request is flagged as a replay, with a different request it is rejected with 409.
// Binding a new key to the created order is left to the handler.
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key is too long"})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		info := Idempotency{Key: key, RequestHash: requestHash(c, body)}

		existing, err := keys.GetByKey(c.Request.Context(), key)
		if err != nil {
			// the insert in the handler still catches a reused key
			logger.Warn("Idempotency lookup failed, continuing without replay", zap.Error(err))
		} else if existing != nil {
			if existing.RequestHash != info.RequestHash {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with different payload",
				})
				return
			}
			info.ExistingOrderID = existing.OrderID
		}

		c.Set(idempotencyContextKey, info)
		c.Next()
	}
}

// GetIdempotency returns the idempotency info stored by IdempotencyMiddleware.
// Requests without a key yield the zero value.
func GetIdempotency(c *gin.Context) Idempotency {
	v, ok := c.Get(idempotencyContextKey)
	if !ok {
		return Idempotency{}
	}
	info, _ := v.(Idempotency)
	return info
}
