package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gymhub/internal/metrics"

	"github.com/sethvargo/go-retry"
)

// ErrGateway marks every failed gateway call, including transport errors that
// carry no GatewayError.
var ErrGateway = errors.New("payment gateway")

// Gateway is the external payment collaborator.
type Gateway interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CancelIntent(ctx context.Context, id, idempotencyKey string) (*Intent, error)
	Refund(ctx context.Context, intentID, idempotencyKey string) (*Refund, error)
}

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway returned %d: %s", e.StatusCode, e.Message)
}

// ClientError reports a 4xx answer, which is the caller's fault and safe to
// show.
func (e *GatewayError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	baseURL    string
	secretKey  string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:  cfg.SecretKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

func (c *Client) CreateIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	body := createIntentRequest{
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethodID,
		Confirm:       p.Confirm,
		Metadata:      p.Metadata,
	}

	var intent Intent
	err := c.do(ctx, http.MethodPost, "/v1/payment_intents", p.IdempotencyKey, body, &intent)
	metrics.RecordPaymentCall("create_intent", err)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w: %w", ErrGateway, err)
	}
	return &intent, nil
}

// GetIntent is idempotent and retried on transport errors and 5xx answers.
func (c *Client) GetIntent(ctx context.Context, id string) (*Intent, error) {
	var intent Intent
	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), "", nil, &intent)
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	metrics.RecordPaymentCall("get_intent", err)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w: %w", ErrGateway, err)
	}
	return &intent, nil
}

func (c *Client) CancelIntent(ctx context.Context, id, idempotencyKey string) (*Intent, error) {
	var intent Intent
	err := c.do(ctx, http.MethodPost, "/v1/payment_intents/"+url.PathEscape(id)+"/cancel", idempotencyKey, struct{}{}, &intent)
	metrics.RecordPaymentCall("cancel_intent", err)
	if err != nil {
		return nil, fmt.Errorf("cancel payment intent: %w: %w", ErrGateway, err)
	}
	return &intent, nil
}

// Refund refunds the full captured amount of an intent.
func (c *Client) Refund(ctx context.Context, intentID, idempotencyKey string) (*Refund, error) {
	var refund Refund
	err := c.do(ctx, http.MethodPost, "/v1/refunds", idempotencyKey, refundRequest{PaymentIntent: intentID}, &refund)
	metrics.RecordPaymentCall("refund", err)
	if err != nil {
		return nil, fmt.Errorf("refund payment: %w: %w", ErrGateway, err)
	}
	return &refund, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, in, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&eb)
		msg := eb.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &GatewayError{StatusCode: resp.StatusCode, Code: eb.Error.Code, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode >= 500
	}
	return true
}
