// Package httpx holds the JSON response helpers shared by every controller.
package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

func NewTraceID() string {
	return uuid.New().String()
}

func WriteJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteError(w http.ResponseWriter, traceID string, status int, code string, message string, details any, logger *zap.Logger) {
	WriteJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}, logger)
}

func WriteValidationError(w http.ResponseWriter, traceID string, message string, logger *zap.Logger, details ...apperrors.ValidationDetail) {
	var d any
	if len(details) > 0 {
		d = details
	}
	WriteError(w, traceID, http.StatusBadRequest, dto.CodeValidation, message, d, logger)
}

// HandleUseCaseError maps the typed use case errors onto HTTP.
func HandleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, traceID, ve.Message, logger, ve.Details...)
		return
	}

	if ue, ok := apperrors.IsUnauthorizedError(err); ok {
		WriteError(w, traceID, http.StatusUnauthorized, dto.CodeUnauthorized, ue.Message, nil, logger)
		return
	}

	if fe, ok := apperrors.IsForbiddenError(err); ok {
		WriteError(w, traceID, http.StatusForbidden, dto.CodeForbidden, fe.Message, nil, logger)
		return
	}

	if nf, ok := apperrors.IsNotFoundError(err); ok {
		WriteError(w, traceID, http.StatusNotFound, dto.CodeNotFound, nf.Message, nil, logger)
		return
	}

	if ce, ok := apperrors.IsConflictError(err); ok {
		WriteError(w, traceID, http.StatusConflict, dto.CodeConflict, ce.Message, nil, logger)
		return
	}

	if pve, ok := apperrors.IsPaymentVerificationError(err); ok {
		var details any
		if pve.GatewayMessage != "" {
			details = pve.GatewayMessage
		}
		WriteError(w, traceID, http.StatusUnprocessableEntity, dto.CodeVerificationFailed, pve.Message, details, logger)
		return
	}

	if gue, ok := apperrors.IsGatewayUnavailableError(err); ok {
		logger.Warn("payment gateway unavailable", zap.Error(err))
		WriteError(w, traceID, http.StatusBadGateway, dto.CodeGatewayUnavailable, gue.Message, nil, logger)
		return
	}

	if owe, ok := apperrors.IsOrderWriteError(err); ok {
		WriteJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			TraceID:   traceID,
			Status:    http.StatusInternalServerError,
			Error:     dto.CodeOrderWriteFailed,
			Message:   fmt.Sprintf("payment received but order could not be updated; contact support with reference %s", owe.Reference),
			Reference: owe.Reference,
			Timestamp: time.Now().UTC(),
		}, logger)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	WriteError(w, traceID, http.StatusInternalServerError, dto.CodeInternal, "an unexpected error occurred", nil, logger)
}
