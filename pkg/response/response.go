package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nearby-app/marketplace-api/pkg/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes a 200 response with the standard envelope.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Created writes a 201 response with the standard envelope.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// Paginated writes a 200 response carrying a page of items plus totals.
func Paginated(c *gin.Context, items any, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta":    gin.H{"total": total, "page": page, "limit": limit},
	})
}

// BadRequest writes a 400 response for malformed input.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   errorBody{Code: "BAD_REQUEST", Message: message},
	})
}

// Error maps an application error to its HTTP status. Unknown errors become
// opaque 500s so internals never leak to clients.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		c.JSON(statusFor(appErr.Kind), gin.H{
			"success": false,
			"error":   errorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   errorBody{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"},
	})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindValidation, domain.KindInvalidState:
		return http.StatusBadRequest
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
