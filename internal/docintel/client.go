// Package docintel constructs the document-intelligence API client from
// configured credentials. The client is consumed as an opaque value by
// layout-analysis features; only construction and request signing live here.
package docintel

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Config holds the endpoint and key for the document-intelligence service.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// Client is an authenticated document-intelligence API client.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client from cfg. Returns an error naming the missing
// field when the endpoint or API key is absent, or when the endpoint is not a
// valid absolute URL.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("docintel config missing endpoint")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("docintel config missing api_key")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("docintel endpoint %q is not an absolute URL", cfg.Endpoint)
	}
	return &Client{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Endpoint returns the configured service endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// NewRequest builds an authenticated request against the service, with the
// subscription key header set.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Do executes an authenticated request.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// EncodeFileBase64 reads the file at path and returns its content encoded as
// base64, the format the analyze endpoints accept for inline documents.
func EncodeFileBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
