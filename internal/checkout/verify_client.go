package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

// HTTPVerifier calls POST /verify-payment with the shopper's bearer token.
type HTTPVerifier struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewHTTPVerifier(endpoint string, token string, timeout time.Duration) *HTTPVerifier {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPVerifier{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, reference string, orderID string) (*Verification, error) {
	body, err := json.Marshal(dto.VerifyPaymentRequest{Reference: reference, OrderID: orderID})
	if err != nil {
		return nil, fmt.Errorf("encoding verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError("verification service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError("reading verification response", err)
	}

	if resp.StatusCode == http.StatusOK {
		var ok dto.VerifyPaymentResponse
		if err := json.Unmarshal(raw, &ok); err != nil || !ok.Success {
			return nil, apperrors.NewGatewayUnavailableError("unexpected verification response", err)
		}
		return &Verification{Order: ok.Order.ToDomain(), Payment: ok.Payment}, nil
	}

	var failure dto.ErrorResponse
	if err := json.Unmarshal(raw, &failure); err != nil {
		return nil, apperrors.NewGatewayUnavailableError(
			fmt.Sprintf("verification service returned %d", resp.StatusCode), err)
	}

	return nil, errorFromResponse(resp.StatusCode, failure, orderID, reference)
}

func errorFromResponse(status int, failure dto.ErrorResponse, orderID string, reference string) error {
	switch failure.Error {
	case dto.CodeUnauthorized:
		return apperrors.NewUnauthorizedError(failure.Message)
	case dto.CodeValidation:
		return apperrors.NewValidationError(failure.Message)
	case dto.CodeNotFound:
		return apperrors.NewNotFoundError(failure.Message)
	case dto.CodeConflict:
		return apperrors.NewConflictError(failure.Message)
	case dto.CodeVerificationFailed:
		details, _ := failure.Details.(string)
		return apperrors.NewPaymentVerificationError(failure.Message, details)
	case dto.CodeGatewayUnavailable:
		return apperrors.NewGatewayUnavailableError(failure.Message, nil)
	case dto.CodeOrderWriteFailed:
		if failure.Reference != "" {
			reference = failure.Reference
		}
		return apperrors.NewOrderWriteError(orderID, reference, fmt.Errorf("%s", failure.Message))
	}
	return apperrors.NewInternalError(fmt.Sprintf("verification failed with status %d", status), fmt.Errorf("%s", failure.Message))
}
