package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "rumfor-market.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps domain errors onto HTTP responses. Validation failures carry
// the per-field messages; illegal transitions and conflicts are kept
// distinguishable so clients can reload state instead of retrying blindly.
func Error(c *gin.Context, err error) {
	var validationErr *domainerrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "ERR_VALIDATION",
			"message": validationErr.Error(),
			"fields":  validationErr.Fields,
		})
		return
	}

	var transitionErr *domainerrors.IllegalTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "ERR_ILLEGAL_TRANSITION",
			"message": transitionErr.Error(),
			"from":    transitionErr.From,
			"to":      transitionErr.To,
		})
		return
	}

	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}

	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "ERR_NOT_FOUND", "message": err.Error()})
	case errors.Is(err, domainerrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"code": "ERR_FORBIDDEN", "message": err.Error()})
	case errors.Is(err, domainerrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "ERR_UNAUTHORIZED", "message": err.Error()})
	case errors.Is(err, domainerrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"code": "ERR_CONFLICT", "message": err.Error()})
	case errors.Is(err, domainerrors.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "ERR_TRANSIENT", "message": err.Error()})
	case errors.Is(err, domainerrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"code": "ERR_BAD_REQUEST", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": "ERR_INTERNAL", "message": "internal server error"})
	}
}
