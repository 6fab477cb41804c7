// Package api implements the HTTP client for the deployment platform:
// batch predictions, chat completions, capability queries and custom
// metric telemetry.
package api

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/deploychat/internal/errors"
	"github.com/diogo/deploychat/internal/models"
)

// Client talks to the deployment platform API on behalf of one session.
type Client struct {
	httpClient tls_client.HttpClient

	token          string
	endpoint       string // platform API base, e.g. https://app.example.com/api/v2
	deploymentID   string
	customMetricID string
	appID          string

	// predictionBase overrides the prediction server base URL. Needed for
	// on-prem networks where the service URL differs from the external one.
	predictionBase string

	mu     sync.RWMutex
	closed bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithCustomMetricID sets the feedback metric id
func WithCustomMetricID(id string) ClientOption {
	return func(c *Client) {
		c.customMetricID = id
	}
}

// WithApplicationID sets the custom application id
func WithApplicationID(id string) ClientOption {
	return func(c *Client) {
		c.appID = id
	}
}

// WithPredictionBaseURL overrides the prediction server base URL
func WithPredictionBaseURL(base string) ClientOption {
	return func(c *Client) {
		c.predictionBase = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient injects a pre-built HTTP client (used by tests)
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a platform API client.
func NewClient(token, endpoint, deploymentID string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, apierrors.NewValidationError("API token is required")
	}
	if endpoint == "" {
		return nil, apierrors.NewValidationError("API endpoint is required")
	}
	if deploymentID == "" {
		return nil, apierrors.ErrNoDeployment
	}

	client := &Client{
		token:        token,
		endpoint:     strings.TrimSuffix(endpoint, "/"),
		deploymentID: deploymentID,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(models.PredictionsTimeout.Seconds())),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}
		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close marks the client as shut down; subsequent calls fail fast.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed reports whether Close was called.
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// DeploymentID returns the configured deployment id.
func (c *Client) DeploymentID() string {
	return c.deploymentID
}

// CustomMetricID returns the configured feedback metric id, "" when unset.
func (c *Client) CustomMetricID() string {
	return c.customMetricID
}

// apiURL joins a models.Path* template with the platform endpoint.
func (c *Client) apiURL(pathTemplate string, args ...any) string {
	return c.endpoint + fmt.Sprintf(pathTemplate, args...)
}

// predictionURL returns the prediction API URL, honoring the override base.
func (c *Client) predictionURL() string {
	path := fmt.Sprintf(models.PathPredictions, c.deploymentID)
	if c.predictionBase != "" {
		return c.predictionBase + fmt.Sprintf("/deployments/%s/predictions", c.deploymentID)
	}
	return c.endpoint + path
}

// authHeaders returns the standard platform API headers.
func (c *Client) authHeaders() map[string]string {
	return map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Token " + c.token,
	}
}

// doRequest performs one HTTP call bounded by timeout and returns the
// response body. A non-2xx status becomes an APIError carrying the
// response body.
func (c *Client) doRequest(method, url string, body io.Reader, headers map[string]string, operation string, timeout time.Duration) ([]byte, http.Header, error) {
	if c.IsClosed() {
		return nil, nil, apierrors.ErrClientClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, apierrors.NewNetworkError(operation, url, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apierrors.NewNetworkError(operation, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, apierrors.NewAPIErrorWithBody(resp.StatusCode, url, operation+" failed", truncateBody(data))
	}

	return data, resp.Header, nil
}

// truncateBody limits error body diagnostics to 4KB.
func truncateBody(body []byte) string {
	const limit = 4096
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
