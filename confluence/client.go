// Package confluence provides a small client for the Confluence REST API.
//
// Responses are returned as decoded JSON values (maps, slices and scalars)
// rather than typed structs: different Confluence versions wrap the same
// listing in different envelopes, and callers decide how to read them.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agentplexus/mcp-confluence-lite/config"
)

// Client is a Confluence REST API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       AuthMethod
}

// AuthMethod represents an authentication method.
type AuthMethod interface {
	Apply(req *http.Request)
}

// BasicAuth implements basic authentication with a username and an API
// token or password.
type BasicAuth struct {
	Username string
	Token    string
}

// Apply implements AuthMethod.
func (b BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(b.Username, b.Token)
}

// BearerAuth implements bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements AuthMethod.
func (b BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.Token)
}

// NewClient creates a new Confluence client.
func NewClient(baseURL string, auth AuthMethod, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		auth:       auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromConfig creates a client authenticated according to cfg.
func FromConfig(cfg *config.Config, opts ...Option) *Client {
	return NewClient(cfg.BaseURL, AuthFor(cfg), opts...)
}

// AuthFor returns the AuthMethod matching the resolved configuration. A token
// without a username is sent as a bearer token.
func AuthFor(cfg *config.Config) AuthMethod {
	if cfg.AuthMode == config.AuthToken && cfg.Username == "" {
		return BearerAuth{Token: cfg.Secret}
	}
	return BasicAuth{Username: cfg.Username, Token: cfg.Secret}
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// BaseURL returns the instance URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error returned by the Confluence API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence API error %d: %s", e.StatusCode, e.Message)
}

// GetAllSpaces lists spaces starting at offset start.
func (c *Client) GetAllSpaces(ctx context.Context, start, limit int) (any, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(limit))

	return c.get(ctx, "/rest/api/space", q, "failed to list spaces")
}

// GetSpace retrieves a single space by key, including its plain description.
func (c *Client) GetSpace(ctx context.Context, spaceKey string) (any, error) {
	q := url.Values{}
	q.Set("expand", "description.plain")

	return c.get(ctx, "/rest/api/space/"+url.PathEscape(spaceKey), q, "failed to get space")
}

// GetAllPagesFromSpace lists pages of a space starting at offset start.
func (c *Client) GetAllPagesFromSpace(ctx context.Context, spaceKey string, start, limit int) (any, error) {
	q := url.Values{}
	q.Set("spaceKey", spaceKey)
	q.Set("type", "page")
	q.Set("start", strconv.Itoa(start))
	q.Set("limit", strconv.Itoa(limit))

	return c.get(ctx, "/rest/api/content", q, "failed to list pages")
}

// GetPageByTitle looks up a page by exact title within a space, with its
// storage-format body expanded. It returns nil and no error when no page
// matches.
func (c *Client) GetPageByTitle(ctx context.Context, spaceKey, title string) (map[string]any, error) {
	q := url.Values{}
	q.Set("spaceKey", spaceKey)
	q.Set("title", title)
	q.Set("type", "page")
	q.Set("expand", "body.storage,version,space")

	resp, err := c.get(ctx, "/rest/api/content", q, "failed to get page")
	if err != nil {
		return nil, err
	}

	envelope, ok := resp.(map[string]any)
	if !ok {
		return nil, nil
	}
	results, _ := envelope["results"].([]any)
	if len(results) == 0 {
		return nil, nil
	}
	page, _ := results[0].(map[string]any)
	return page, nil
}

// CQL runs a Confluence Query Language search.
func (c *Client) CQL(ctx context.Context, cql string, limit int) (any, error) {
	q := url.Values{}
	q.Set("cql", cql)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("expand", "space")

	return c.get(ctx, "/rest/api/content/search", q, "failed to search content")
}

// ServerInfo retrieves the application manifest, which carries the version,
// build number and base URL of a server or data center instance.
func (c *Client) ServerInfo(ctx context.Context) (map[string]any, error) {
	resp, err := c.get(ctx, "/rest/applinks/1.0/manifest", nil, "failed to get server info")
	if err != nil {
		return nil, err
	}

	info, ok := resp.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected server info response of type %T", resp)
	}
	return info, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, failure string) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	c.auth.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    failure,
			Body:       string(body),
		}
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json decode error: %w", err)
	}

	return result, nil
}
