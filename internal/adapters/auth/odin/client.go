package odin

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

	"pet-clinic-scheduling/internal/ports/auth"
)

var (
	ErrOdinNotConfigured = errors.New("odin client not configured")
	ErrOdinUnauthorized  = errors.New("odin unauthorized")
	ErrOdinUpstream      = errors.New("odin upstream error")
)

const (
	verifyPath = "/v1/tokens/verify"

	defaultTimeout      = 5 * time.Second
	defaultAPIKeyHeader = "X-Api-Key"

	// La respuesta de verify son unas pocas claims.
	maxResponseBytes = 64 << 10
	// Cuánto del body de error se copia al mensaje.
	maxErrorBodyBytes = 512
)

// Config del cliente Odin (ODIN_BASE_URL / ODIN_API_KEY).
type Config struct {
	BaseURL string
	APIKey  string

	// Header de la API key. Default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *http.Client
	baseURL      string
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = defaultAPIKeyHeader
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("odin: invalid base url: %w", err)
		}
		base = strings.TrimRight(base, "/")
	}

	return &Client{
		http:         &http.Client{Timeout: timeout},
		baseURL:      base,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.baseURL != "" && c.apiKey != ""
}

// StatusError es una respuesta no-2xx de Odin.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("odin status=%d", e.StatusCode)
	}
	return fmt.Sprintf("odin status=%d body=%s", e.StatusCode, e.Body)
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
}

// VerifyToken valida el token contra Odin y trae las claims, incluido el rol de clínica.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrOdinUnauthorized
	}

	out, err := c.postVerify(ctx, token)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrOdinUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrOdinUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrOdinUpstream)
	}

	return auth.Claims{
		UserID:   out.UserID,
		Email:    strings.TrimSpace(out.Email),
		Name:     strings.TrimSpace(out.Name),
		TenantID: strings.TrimSpace(out.TenantID),
		Role:     auth.ParseRole(out.Role),
	}, nil
}

func (c *Client) postVerify(ctx context.Context, token string) (verifyResponse, error) {
	b, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return verifyResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, bytes.NewReader(b))
	if err != nil {
		return verifyResponse{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.apiKeyHeader, c.apiKey)
	// Algunos IAM esperan el token en Authorization, aunque también vaya en body.
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return verifyResponse{}, err
	}
	defer resp.Body.Close()

	// Un byte más que el límite para distinguir "justo" de "truncado".
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return verifyResponse{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := strings.TrimSpace(string(raw))
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return verifyResponse{}, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
	if len(raw) > maxResponseBytes {
		return verifyResponse{}, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return verifyResponse{}, fmt.Errorf("decode verify response: %w", err)
	}
	return out, nil
}
