package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/smithy-go"

	"github.com/tabsync/tabsync/internal/dao"
)

type Error string

const (
	ErrNoConnection   = Error("no connection to table service")
	ErrInvalidURL     = Error("invalid service URL")
	ErrInvalidProfile = Error("invalid profile")
)

func (e Error) Error() string {
	return string(e)
}

// DefaultTimeout bounds a single request when the profile sets none.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read.
const maxErrorBody = 64 << 10

type Connection interface {
	dao.Transport

	Config() *ClientConfig
	ConnectionOK() bool
	CheckConnectivity(context.Context) bool
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// APIClient reads tables from the upstream service over HTTP.
type APIClient struct {
	config *ClientConfig
	base   *url.URL
	http   *http.Client
	connOK bool
	mx     sync.RWMutex
}

var _ Connection = (*APIClient)(nil)

// NewAPIClient creates a new APIClient for the service rooted at cfg.BaseURL.
func NewAPIClient(cfg *ClientConfig) (*APIClient, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		config: cfg,
		base:   base,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

// InitConnection creates an APIClient and verifies the service answers.
func InitConnection(ctx context.Context, cfg *ClientConfig) (*APIClient, error) {
	client, err := NewAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	if !client.CheckConnectivity(ctx) {
		return nil, fmt.Errorf("%w: %s", ErrNoConnection, cfg.BaseURL)
	}

	return client, nil
}

// Config returns the client configuration.
func (c *APIClient) Config() *ClientConfig {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return &ClientConfig{
		BaseURL: c.config.BaseURL,
		Timeout: c.config.Timeout,
	}
}

// ConnectionOK returns whether the last connectivity check succeeded.
func (c *APIClient) ConnectionOK() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.connOK
}

// CheckConnectivity lists a single table to verify the service is reachable.
func (c *APIClient) CheckConnectivity(ctx context.Context) bool {
	var out json.RawMessage
	err := c.Get(ctx, "tables/", url.Values{"limit": {"1"}}, &out)
	if err != nil {
		slog.Debug("Connectivity check failed", "url", c.base.String(), "err", err)
	}

	c.mx.Lock()
	c.connOK = err == nil
	c.mx.Unlock()

	return err == nil
}

// Get fetches path, relative to the service root, and decodes the JSON body
// into out. Failed responses are returned as smithy.APIError.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.base.JoinPath(path)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("GET %s: %w", path, DecodeAPIError(resp.StatusCode, body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: failed to decode response: %w", path, err)
	}

	return nil
}

// apiError is one entry of the error list the service answers with.
type apiError struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
	Field   string      `json:"field"`
	Detail  any         `json:"detail"`
}

// DecodeAPIError converts a failed response into a smithy.APIError. The
// service answers with a list of errors; the first one is reported. Bodies in
// another shape fall back on the HTTP status.
func DecodeAPIError(status int, body []byte) error {
	fault := smithy.FaultServer
	if status < 500 {
		fault = smithy.FaultClient
	}
	e := smithy.GenericAPIError{
		Code:    strconv.Itoa(status),
		Message: http.StatusText(status),
		Fault:   fault,
	}

	var list []apiError
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		if list[0].Code != "" {
			e.Code = list[0].Code.String()
		}
		if list[0].Message != "" {
			e.Message = list[0].Message
		}
		return &e
	}

	var single struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.Detail != "" {
		e.Message = single.Detail
	}

	return &e
}
