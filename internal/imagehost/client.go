package imagehost

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

// Asset identifica una imagen subida al host externo.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Uploader define la interfaz hacia el image host externo.
type Uploader interface {
	Upload(ctx context.Context, payload, folder string) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

type disabledUploader struct {
	reason string
}

func NewDisabledUploader(reason string) Uploader {
	return &disabledUploader{reason: reason}
}

func (u *disabledUploader) Upload(_ context.Context, _, _ string) (Asset, error) {
	return Asset{}, errors.New(u.reason)
}

func (u *disabledUploader) Destroy(_ context.Context, _ string) error {
	return errors.New(u.reason)
}

// HTTPClient implementa Uploader contra la API HTTP del image host.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a la API de upload.
func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type uploadRequest struct {
	File   string `json:"file"`
	Folder string `json:"folder"`
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) Upload(ctx context.Context, payload, folder string) (Asset, error) {
	bodyBytes, err := json.Marshal(uploadRequest{File: payload, Folder: folder})
	if err != nil {
		return Asset{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(bodyBytes))
	if err != nil {
		return Asset{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("image upload failed",
				zap.Int("status", resp.StatusCode),
				zap.String("folder", folder),
			)
		}
		return Asset{}, fmt.Errorf("image host error: status=%d", resp.StatusCode)
	}

	var ur uploadResponse
	if err := json.Unmarshal(respBody, &ur); err != nil {
		return Asset{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if ur.Error != nil {
		return Asset{}, fmt.Errorf("image host error: %s", ur.Error.Message)
	}
	if ur.PublicID == "" || ur.SecureURL == "" {
		return Asset{}, fmt.Errorf("image host empty response")
	}

	return Asset{PublicID: ur.PublicID, URL: ur.SecureURL}, nil
}

func (c *HTTPClient) Destroy(ctx context.Context, publicID string) error {
	endpoint := c.baseURL + "/destroy/" + url.PathEscape(publicID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("image host error: status=%d", resp.StatusCode)
	}
	return nil
}
