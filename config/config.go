// Package config resolves the Confluence connection settings from the process
// environment, an optional .env file and an optional YAML file.
//
// Recognised environment variables:
//   - CONFLUENCE_URL (or CONFLUENCE_BASE_URL): base URL of the Confluence instance, required
//   - CONFLUENCE_TOKEN (or CONFLUENCE_API_TOKEN): API token or personal access token
//   - CONFLUENCE_USERNAME: username or e-mail
//   - CONFLUENCE_PASSWORD: password, used together with CONFLUENCE_USERNAME
//   - CONFLUENCE_CONFIG: path to a YAML file with the same settings
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Environment variable names.
const (
	EnvURL         = "CONFLUENCE_URL"
	EnvBaseURL     = "CONFLUENCE_BASE_URL"
	EnvUsername    = "CONFLUENCE_USERNAME"
	EnvPassword    = "CONFLUENCE_PASSWORD"
	EnvToken       = "CONFLUENCE_TOKEN"
	EnvAPIToken    = "CONFLUENCE_API_TOKEN"
	EnvConfigFile  = "CONFLUENCE_CONFIG"
	EnvLogLevel    = "CONFLUENCE_LOG_LEVEL"
	defaultEnvFile = ".env"
)

// AuthMode selects how requests are authenticated.
type AuthMode int

const (
	// AuthToken authenticates with an API token. With a username the pair is
	// sent as basic auth (cloud); without one the token is a bearer token.
	AuthToken AuthMode = iota + 1
	// AuthBasic authenticates with a username and password (server / data center).
	AuthBasic
)

func (m AuthMode) String() string {
	switch m {
	case AuthToken:
		return "token"
	case AuthBasic:
		return "basic"
	default:
		return "unknown"
	}
}

// InfoCapability records which server-info lookup the instance supports.
type InfoCapability int

const (
	// InfoConnectivityOnly means no info endpoint is used; a one-item space
	// fetch proves the connection instead.
	InfoConnectivityOnly InfoCapability = iota
	// InfoServerInfo means the instance exposes version and build details.
	InfoServerInfo
)

func (c InfoCapability) String() string {
	if c == InfoServerInfo {
		return "server-info"
	}
	return "connectivity-only"
}

// Config is a resolved Confluence connection configuration.
type Config struct {
	BaseURL        string
	AuthMode       AuthMode
	Username       string
	Secret         string // token or password, depending on AuthMode
	InfoCapability InfoCapability
}

// Sentinel configuration errors.
var (
	ErrMissingBaseURL = errors.New(EnvURL + " environment variable is required")
	ErrNoCredentials  = errors.New("either " + EnvToken + " or both " + EnvUsername + " and " + EnvPassword + " are required")
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// Error is a configuration error.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "configuration error: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve builds a Config from the given environment lookup. It reads nothing
// else and has no side effects.
func Resolve(getenv func(string) string) (*Config, error) {
	rawURL := firstNonEmpty(getenv(EnvURL), getenv(EnvBaseURL))
	if rawURL == "" {
		return nil, &Error{Err: ErrMissingBaseURL}
	}

	baseURL, err := normalizeBaseURL(rawURL)
	if err != nil {
		return nil, &Error{Err: err}
	}

	username := getenv(EnvUsername)
	password := getenv(EnvPassword)
	token := firstNonEmpty(getenv(EnvToken), getenv(EnvAPIToken))

	cfg := &Config{BaseURL: baseURL, Username: username}
	switch {
	case token != "":
		cfg.AuthMode = AuthToken
		cfg.Secret = token
		if username == "" {
			// Bearer personal access tokens are a server/DC feature.
			cfg.InfoCapability = InfoServerInfo
		}
	case username != "" && password != "":
		cfg.AuthMode = AuthBasic
		cfg.Secret = password
		cfg.InfoCapability = InfoServerInfo
	default:
		return nil, &Error{Err: ErrNoCredentials}
	}

	return cfg, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
