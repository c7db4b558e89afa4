package mcpserver

import (
	"errors"
	"fmt"

	"github.com/agentplexus/mcp-confluence-lite/config"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorKind classifies a handler failure.
type ErrorKind int

const (
	KindUpstream ErrorKind = iota
	KindConfig
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	default:
		return "upstream"
	}
}

// UpstreamError wraps a failure from the Confluence API, the network, or a
// response that could not be read.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing page or space. It is an ordinary outcome
// and is rendered without the "Error" prefix.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func upstream(err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return err
	}
	return &UpstreamError{Err: err}
}

// Classify reports the kind of a handler error.
func Classify(err error) ErrorKind {
	var cfgErr *config.Error
	var notFound *NotFoundError
	switch {
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &notFound):
		return KindNotFound
	default:
		return KindUpstream
	}
}

// respond flattens a handler outcome into the text-only tool result. Every
// failure becomes "Error <action>: <cause>"; not-found outcomes keep their
// own message.
func respond(action, text string, err error) *mcp.CallToolResult {
	if err == nil {
		return mcp.NewToolResultText(text)
	}
	if Classify(err) == KindNotFound {
		return mcp.NewToolResultText(err.Error())
	}
	return mcp.NewToolResultText(fmt.Sprintf("Error %s: %v", action, err))
}
