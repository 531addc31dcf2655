package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/usstm/unionclient/internal/listing"
	apperrors "github.com/usstm/unionclient/internal/platform/errors"
	"github.com/usstm/unionclient/internal/platform/id"
	"github.com/usstm/unionclient/internal/session"
)

const tracerName = "github.com/usstm/unionclient/internal/api"

// Config holds API client configuration.
type Config struct {
	BaseURL   string        `env:"UNION_API_URL" envDefault:"https://api.union.usstm.ca"`
	Timeout   time.Duration `env:"UNION_API_TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"UNION_API_USER_AGENT" envDefault:"unionclient/1.0"`
}

// Client calls the union backend. It satisfies session.Backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	tracer     trace.Tracer
}

// New creates a Client with its own cookie jar. The jar holds the HTTP
// session cookie that carries credentials on every call.
func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, fmt.Errorf("base url is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "unionclient/1.0"
	}

	return &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		userAgent: userAgent,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

type csrfResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// CSRFToken fetches a fresh CSRF token for the next state-changing call.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var payload csrfResponse
	if err := c.getJSON(ctx, "/auth/csrf-token", &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.CSRFToken) == "" {
		return "", apperrors.New(apperrors.CodeAuthCSRFTokenMissing, "csrf endpoint returned an empty token")
	}
	return payload.CSRFToken, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember_me"`
}

// Login exchanges credentials for a backend session cookie. Any rejection is
// reported as a credential error; the backend does not distinguish unknown
// accounts from wrong passwords.
func (c *Client) Login(ctx context.Context, input session.LoginInput) error {
	body := loginRequest{Email: input.Email, Password: input.Password, Remember: input.Remember}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", body, input.CSRFToken)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.New(apperrors.CodeAuthInvalidCredentials, fmt.Sprintf("login returned status %d", resp.StatusCode))
	}
	return nil
}

// Logout ends the backend session and drops the session cookie server-side.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, "")
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.New(apperrors.CodeAuthLogoutFailed, fmt.Sprintf("logout returned status %d", resp.StatusCode))
	}
	return nil
}

// currentUserResponse mirrors the backend's current-user payload. Unknown
// fields are ignored so backend additions do not break older clients.
type currentUserResponse struct {
	Student     *session.Student            `json:"student"`
	Role        string                      `json:"role"`
	Permissions session.Permissions         `json:"permissions"`
	Committees  []session.Committee         `json:"committees"`
	Positions   []session.CommitteePosition `json:"committee_positions"`
	RGBank      *session.RGBankPermissions  `json:"rgbank_permissions"`
	BankAccount *session.BankAccount        `json:"bank_account"`

	// TokenExpiration is seconds since epoch. Older backend deployments
	// omit it and only return the raw access token.
	TokenExpiration int64  `json:"token_expiration"`
	AccessToken     string `json:"access_token"`
}

// CurrentUser fetches the full profile snapshot for the session cookie
// currently held in the jar.
func (c *Client) CurrentUser(ctx context.Context) (session.UserData, error) {
	var payload currentUserResponse
	if err := c.getJSON(ctx, "/students/me", &payload); err != nil {
		return session.UserData{}, err
	}

	return session.UserData{
		Student:     payload.Student,
		Role:        session.ParseRole(payload.Role),
		Permissions: payload.Permissions,
		Committees:  payload.Committees,
		Positions:   payload.Positions,
		RGBank:      payload.RGBank,
		BankAccount: payload.BankAccount,
		Expiry:      tokenExpiry(payload.TokenExpiration, payload.AccessToken),
	}, nil
}

// Expenses lists the reimbursement items visible to the current session.
func (c *Client) Expenses(ctx context.Context) ([]listing.Item, error) {
	var payload []listing.Item
	if err := c.getJSON(ctx, "/rgbank/expenses", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.New(apperrors.CodeAuthSessionExpired, fmt.Sprintf("%s returned 401", path))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.New(apperrors.CodeBackendBadResponse, fmt.Sprintf("%s returned status %d", path, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeBackendBadResponse, fmt.Sprintf("decode %s response", path), err)
	}
	return nil
}

// do issues one request with credentials, correlation id, and a span. All
// transport-level failures map to the network error code.
func (c *Client) do(ctx context.Context, method, path string, body any, csrfToken string) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("union.api %s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrfToken != "" {
		req.Header.Set("X-CSRF-Token", csrfToken)
	}
	if requestID, err := id.NewID(); err == nil {
		req.Header.Set("X-Request-Id", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeAuthNetworkFailure, fmt.Sprintf("%s %s", method, path), err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
