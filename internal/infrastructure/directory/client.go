// Package directory is the HTTP client for the remote user-directory service.
package directory

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

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10

	opListUsers  = "list_users"
	opToggleRole = "toggle_role"
	opDeleteUser = "delete_user"
	opLogin      = "login"
)

// Client implements ports.UserDirectory and ports.AuthGateway over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      zerolog.Logger
}

var (
	_ ports.UserDirectory = (*Client)(nil)
	_ ports.AuthGateway   = (*Client)(nil)
)

// NewClient returns a Client for the service rooted at baseURL. A default
// timeout is applied when none is provided.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		validate: validator.New(),
		log:      log,
	}
}

// ListUsers handles GET /users.
func (c *Client) ListUsers(ctx context.Context, token string) ([]domain.UserRecord, error) {
	var payload []userPayload
	if err := c.do(ctx, opListUsers, http.MethodGet, "/users", token, nil, &payload); err != nil {
		return nil, err
	}

	users := make([]domain.UserRecord, 0, len(payload))
	for i, p := range payload {
		if err := c.validate.Struct(p); err != nil {
			metrics.DirectoryRequestsTotal.WithLabelValues(opListUsers, "invalid_payload").Inc()
			return nil, &domain.NetworkError{
				Op:     opListUsers,
				Status: http.StatusOK,
				Err:    fmt.Errorf("user[%d]: %w", i, err),
			}
		}
		users = append(users, toDomain(p))
	}
	return users, nil
}

// ToggleRole handles PUT /users/{id}/role.
func (c *Client) ToggleRole(ctx context.Context, token, id string) error {
	return userNotFound(c.do(ctx, opToggleRole, http.MethodPut, "/users/"+url.PathEscape(id)+"/role", token, nil, nil))
}

// DeleteUser handles DELETE /users/{id}.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return userNotFound(c.do(ctx, opDeleteUser, http.MethodDelete, "/users/"+url.PathEscape(id), token, nil, nil))
}

// userNotFound marks a 404 on a per-user endpoint with domain.ErrUserNotFound.
// The result still matches domain.ErrNetwork.
func userNotFound(err error) error {
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
		if netErr.Err == nil {
			netErr.Err = domain.ErrUserNotFound
		} else {
			netErr.Err = fmt.Errorf("%w: %w", domain.ErrUserNotFound, netErr.Err)
		}
	}
	return err
}

// Login handles POST /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	var resp loginResponse
	body := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, opLogin, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, &domain.NetworkError{Op: opLogin, Status: http.StatusOK, Err: err}
	}

	result := &ports.LoginResult{Token: resp.Token}
	if resp.User != nil {
		u := toDomain(*resp.User)
		result.User = &u
	}
	return result, nil
}

// Ping reports whether the service answers at all. Any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.DirectoryRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DirectoryRequestsTotal.WithLabelValues(op, "transport_error").Inc()
		c.log.Warn().Err(err).Str("op", op).Msg("directory request failed")
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		metrics.DirectoryRequestsTotal.WithLabelValues(op, "http_error").Inc()
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("directory returned an error status")
		return &domain.NetworkError{Op: op, Status: resp.StatusCode, Err: readError(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			metrics.DirectoryRequestsTotal.WithLabelValues(op, "invalid_payload").Inc()
			return &domain.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	metrics.DirectoryRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

// readError extracts the service's {"error": "..."} envelope when present.
func readError(r io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var env errorResponse
	if json.Unmarshal(b, &env) == nil && env.Error != "" {
		return errors.New(env.Error)
	}
	if msg := strings.TrimSpace(string(b)); msg != "" {
		return errors.New(msg)
	}
	return nil
}
