// Package paystack talks to the gateway's server-to-server API. The secret key
// lives only here and never leaves the server.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "storefront/internal/errors"
)

const StatusSuccess = "success"

type Options struct {
	BaseURL       string
	SecretKey     string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		secretKey:  opts.SecretKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
		logger:     logger,
	}
}

type Transaction struct {
	ID              int64           `json:"id"`
	Status          string          `json:"status"`
	Reference       string          `json:"reference"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	Channel         string          `json:"channel"`
	GatewayResponse string          `json:"gateway_response"`
	PaidAt          string          `json:"paid_at"`
	Metadata        json.RawMessage `json:"metadata"`
}

// Verification is the gateway's verdict on one reference. Raw keeps the
// untouched data object so callers can hand it back to clients.
type Verification struct {
	Succeeded   bool
	Message     string
	Transaction Transaction
	Raw         json.RawMessage
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// VerifyTransaction calls GET /transaction/verify/{reference}. Transport
// failures, 5xx, 401/403 and 429 answers, empty envelopes and a missing secret
// key come back as GatewayUnavailableError; any other decoded answer comes
// back as a Verification.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Verification, error) {
	env, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	v := &Verification{Message: env.Message, Raw: env.Data}
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &v.Transaction); err != nil {
			c.logger.Warn("gateway transaction payload not decodable", zap.String("reference", reference), zap.Error(err))
		}
	}
	v.Succeeded = env.Status && v.Transaction.Status == StatusSuccess
	if v.Message == "" {
		v.Message = v.Transaction.GatewayResponse
	}

	return v, nil
}

type InitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Initialize opens a hosted checkout session. Amount is in minor units.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding initialize request: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, apperrors.NewPaymentVerificationError("payment session rejected", env.Message)
	}

	var res InitializeResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return nil, apperrors.NewGatewayUnavailableError("decoding initialize response", err)
	}

	return &res, nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (*envelope, error) {
	if c.secretKey == "" {
		return nil, apperrors.NewGatewayUnavailableError("payment gateway not configured", nil)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewGatewayUnavailableError("payment gateway throttled", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError("building gateway request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayUnavailableError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("gateway call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, apperrors.NewGatewayUnavailableError(
			fmt.Sprintf("payment gateway returned %d", resp.StatusCode), nil)
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, apperrors.NewGatewayUnavailableError("payment gateway rejected credentials", nil)
	case http.StatusTooManyRequests:
		return nil, apperrors.NewGatewayUnavailableError("payment gateway rate limited", nil)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return nil, apperrors.NewGatewayUnavailableError("decoding gateway response", err)
	}
	// an answer with neither message nor data carries no verdict
	if env.Message == "" && (len(env.Data) == 0 || string(env.Data) == "null") {
		return nil, apperrors.NewGatewayUnavailableError(
			fmt.Sprintf("payment gateway returned %d without a verdict", resp.StatusCode), nil)
	}

	return &env, nil
}
