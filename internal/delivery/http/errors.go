package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// statusFor maps a domain error to the HTTP status reported to clients
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrDuplicateNameVariant),
		errors.Is(err, domain.ErrAlreadyInExportList),
		errors.Is(err, domain.ErrNoFreeVariantSKU):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNothingToExport),
		errors.Is(err, domain.ErrNothingToImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrDecoderUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Gatekeeper rejections also
// carry the reason and the record they collided with.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		body["reason"] = conflict.Reason
		if conflict.Conflicting != nil {
			body["conflicting"] = conflict.Conflicting
		}
	}

	logger := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}

	c.AbortWithStatusJSON(status, body)
}
