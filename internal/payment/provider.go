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

	"go.uber.org/zap"
)

// Intent es el estado de un intento de pago en el proveedor externo.
type Intent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Succeeded indica si el pago se completo.
func (i Intent) Succeeded() bool {
	return i.Status == "succeeded"
}

// Provider define la interfaz hacia el proveedor de pagos.
type Provider interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error)
	RetrieveIntent(ctx context.Context, id string) (Intent, error)
}

type disabledProvider struct {
	reason string
}

func NewDisabledProvider(reason string) Provider {
	return &disabledProvider{reason: reason}
}

func (p *disabledProvider) CreateIntent(_ context.Context, _ int64, _ string) (Intent, error) {
	return Intent{}, errors.New(p.reason)
}

func (p *disabledProvider) RetrieveIntent(_ context.Context, _ string) (Intent, error) {
	return Intent{}, errors.New(p.reason)
}

// HTTPProvider implementa Provider contra la API HTTP del proveedor.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPProvider(baseURL, apiKey string, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error) {
	bodyBytes, err := json.Marshal(map[string]any{
		"amount":   amount,
		"currency": currency,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("marshal request: %w", err)
	}
	return p.do(ctx, http.MethodPost, "/payment_intents", bytes.NewReader(bodyBytes))
}

func (p *HTTPProvider) RetrieveIntent(ctx context.Context, id string) (Intent, error) {
	return p.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(id), nil)
}

func (p *HTTPProvider) do(ctx context.Context, method, path string, body io.Reader) (Intent, error) {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return Intent{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Intent{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Intent{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if p.logger != nil {
			p.logger.Warn("payment provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("path", path),
			)
		}
		return Intent{}, fmt.Errorf("payment provider error: status=%d", resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(respBody, &intent); err != nil {
		return Intent{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return intent, nil
}
