// Package api is the REST client for the LearnPool backend. Auth is owned
// entirely by the transport: the bearer token is attached to every request
// and a 401 anywhere clears stored credentials and fires the logout hook
// exactly once — callers never handle auth failure themselves.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"learnpool-client/internal/state"
)

// APIError carries the HTTP status and the server's detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

// IsAuthError reports whether the error is the 401 the transport already
// handled.
func IsAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusUnauthorized
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	app        *state.App
	log        logrus.FieldLogger

	logoutOnce sync.Once
	onLogout   func()
}

func NewClient(baseURL string, timeout time.Duration, app *state.App, onLogout func(), log logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		app:        app,
		onLogout:   onLogout,
		log:        log,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.app.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.forceLogout()
		return nil, &APIError{Status: resp.StatusCode, Detail: errorDetail(raw)}
	}
	if resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Detail: errorDetail(raw)}
	}
	return raw, nil
}

func (c *Client) forceLogout() {
	c.logoutOnce.Do(func() {
		if err := c.app.Clear(); err != nil && c.log != nil {
			c.log.WithError(err).Warn("clear credentials failed")
		}
		if c.onLogout != nil {
			c.onLogout()
		}
	})
}

func errorDetail(raw []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(raw))
}

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	raw, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse response failed: %w", err)
	}
	return out, nil
}

func sendJSON[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return out, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	raw, err := c.do(ctx, method, path, reader, "application/json")
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("parse response failed: %w", err)
	}
	return out, nil
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, file io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write multipart field failed: %w", err)
		}
	}
	part, err := w.CreateFormFile(fileField, filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart file failed: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy multipart file failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer failed: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
}

// TokenExpiry peeks at the stored token's exp claim without verifying the
// signature; the server is the authority, this only lets the CLI prompt
// for a fresh login instead of burning a request on a guaranteed 401.
func (c *Client) TokenExpiry() (time.Time, bool) {
	token := c.app.Token()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
