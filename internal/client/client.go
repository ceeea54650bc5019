package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/PhoneOS/internal/shared/id"
)

// Config configures a Client
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	// TraceID is sent on every request; empty generates one per client
	TraceID string
}

// DefaultConfig targets a local server
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 10 * time.Second,
		Retries: 2,
	}
}

// Client talks to one emulator server
type Client struct {
	resty   *resty.Client
	traceID string
}

// APIError is a non-2xx answer
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// AppsView is the launcher layout
type AppsView struct {
	Apps     []system.AppSpec    `json:"apps"`
	HomeGrid []system.AppID      `json:"homeGrid"`
	Home     []system.AppSpec    `json:"home"`
	Dock     []system.AppSpec    `json:"dock"`
	Running  []system.RunningApp `json:"running"`
	Recents  []system.RunningApp `json:"recents"`
}

// NotificationsView is the shade
type NotificationsView struct {
	Notifications []system.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

// Health is the server's health report
type Health struct {
	Status      string `json:"status"`
	Booted      bool   `json:"booted"`
	Restored    bool   `json:"restored"`
	Persistence string `json:"persistence"`
}

// New creates a client
func New(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.TraceID == "" {
		cfg.TraceID = id.Trace()
	}

	// Pooled transport from the retryable client; retries themselves are
	// driven by resty so they can be limited to reads
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetTransport(retryClient.HTTPClient.Transport).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetJSONMarshaler(sonic.ConfigStd.Marshal).
		SetJSONUnmarshaler(sonic.ConfigStd.Unmarshal).
		SetHeader("User-Agent", "phonectl/1.0").
		SetHeader("Accept", "application/json").
		SetHeader(tracing.TraceHeader, cfg.TraceID).
		AddRetryCondition(retryable)

	return &Client{resty: r, traceID: cfg.TraceID}
}

// TraceID returns the trace id sent with every request
func (c *Client) TraceID() string {
	return c.traceID
}

func retryable(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil {
		return err != nil
	}
	if r.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || r.StatusCode() >= http.StatusInternalServerError
}

// State fetches the whole device state
func (c *Client) State(ctx context.Context) (*system.State, error) {
	var s system.State
	if err := c.get(ctx, "/state", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Status fetches the status bar view
func (c *Client) Status(ctx context.Context) (*system.StatusBar, error) {
	var s system.StatusBar
	if err := c.get(ctx, "/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Apps fetches the launcher layout
func (c *Client) Apps(ctx context.Context) (*AppsView, error) {
	var v AppsView
	if err := c.get(ctx, "/apps", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Notifications fetches the shade
func (c *Client) Notifications(ctx context.Context) (*NotificationsView, error) {
	var v NotificationsView
	if err := c.get(ctx, "/notifications", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Health fetches the health report
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.get(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Dispatch sends one action
func (c *Client) Dispatch(ctx context.Context, action system.Action) error {
	body, err := system.EncodeAction(action)
	if err != nil {
		return err
	}
	return c.DispatchRaw(ctx, body)
}

// DispatchRaw sends an already encoded wire action
func (c *Client) DispatchRaw(ctx context.Context, body []byte) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetError(&errorBody{}).
		Post("/actions")
	if err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return check(resp)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&errorBody{}).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	return check(resp)
}

func check(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// IsBadRequest reports whether err is a 400 from the server
func IsBadRequest(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}
