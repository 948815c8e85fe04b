package climacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.climacloud.io"

	// DefaultAppVersion is the client application version reported on login.
	DefaultAppVersion = "1.19.4"

	// LoginPath is the credential exchange endpoint.
	LoginPath = "/api/v1/account/login"

	// DevicesPath is the device enumeration endpoint.
	DevicesPath = "/api/v1/devices"

	// maxResponseBytes caps response bodies read from the API.
	maxResponseBytes = 1 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL.
	BaseURL string

	// AppVersion is reported to the API on login. Defaults to
	// DefaultAppVersion.
	AppVersion string

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string

	// HTTPClient is the underlying HTTP client. If nil, a client with a
	// 30-second safety timeout is used. Per-call deadlines come from the
	// caller's context.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		AppVersion: DefaultAppVersion,
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrInvalidConfig
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Client calls the ClimaCloud API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	appVersion string
	userAgent  string
	http       *http.Client
}

// NewClient creates a Client from the given config. Zero-value fields are
// filled with defaults before validation.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.AppVersion == "" {
		cfg.AppVersion = DefaultAppVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		appVersion: cfg.AppVersion,
		userAgent:  cfg.UserAgent,
		http:       httpClient,
	}, nil
}

// Device is one controllable unit visible to an account.
type Device struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Building string `json:"building,omitempty"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	AppVersion string `json:"app_version"`
}

type loginResponse struct {
	Session *struct {
		AccessToken string `json:"access_token"`
	} `json:"session"`
}

type devicesResponse struct {
	Devices *[]Device `json:"devices"`
}

// Login exchanges account credentials for a context token.
// Rejected credentials surface as *StatusError (401/403); a 200 body
// without a token surfaces as ErrMalformedResponse.
func (c *Client) Login(ctx context.Context, identifier, password string) (string, error) {
	body, err := json.Marshal(loginRequest{
		Email:      identifier,
		Password:   password,
		AppVersion: c.appVersion,
	})
	if err != nil {
		return "", fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", &StatusError{StatusCode: resp.StatusCode, Endpoint: LoginPath}
	}

	var decoded loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		// A decode cut short by the caller's context is a transport
		// failure, not a malformed response.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("read login response: %w", ctxErr)
		}
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if decoded.Session == nil || decoded.Session.AccessToken == "" {
		return "", fmt.Errorf("%w: login response missing session token", ErrMalformedResponse)
	}

	return decoded.Session.AccessToken, nil
}

// ListDevices enumerates the devices visible to the given token.
func (c *Client) ListDevices(ctx context.Context, token string) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+DevicesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build devices request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("devices request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, Endpoint: DevicesPath}
	}

	var decoded devicesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("read devices response: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if decoded.Devices == nil {
		return nil, fmt.Errorf("%w: devices response missing device list", ErrMalformedResponse)
	}

	return *decoded.Devices, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}
