package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chiefcousin/toybox/pkg/errors"
)

// respondError maps service errors to HTTP responses. Unknown errors are logged and
// reported as 500 without details.
func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	var (
		validation *errors.ErrValidation
		notFound   *errors.ErrNotFound
		unauth     *errors.ErrUnauthorized
		conflict   *errors.ErrConflict
		transition *errors.ErrInvalidStateTransition
		notConn    *errors.ErrNotConnected
	)

	switch {
	case stderrors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case stderrors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case stderrors.As(err, &unauth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauth.Error()})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case stderrors.As(err, &notConn):
		c.JSON(http.StatusBadRequest, gin.H{"error": notConn.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the request body, answering 400 "Invalid JSON" on failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return false
	}
	return true
}
