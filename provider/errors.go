package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
	"google.golang.org/genai"
)

var (
	// ErrMissingCredentials means no API key is configured for the provider.
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrEmptyResponse means the upstream call succeeded but produced no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// ErrorKind is the failure class the retry policy acts on.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindNotFound
	KindRateLimit
	KindServer
	KindEmptyResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "unknown"
	}
}

// StatusError is an upstream failure carrying an HTTP status. Adapters that
// do not get a typed SDK error, and test doubles, use it.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Message)
}

// StatusCode extracts the HTTP status from any SDK error in err's chain.
func StatusCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode, true
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return anthropicErr.StatusCode, true
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) && genaiPtr != nil {
		return genaiPtr.Code, true
	}

	var ollamaErr api.StatusError
	if errors.As(err, &ollamaErr) {
		return ollamaErr.StatusCode, true
	}

	return 0, false
}

// Classify maps an upstream error to an ErrorKind. Structured status codes
// decide first; text heuristics only run for errors without a decisive status.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, ErrMissingCredentials) {
		return KindAuth
	}
	if errors.Is(err, ErrEmptyResponse) {
		return KindEmptyResponse
	}

	if code, ok := StatusCode(err); ok {
		if kind, decisive := kindForStatus(code); decisive {
			return kind
		}
	}

	return classifyMessage(err.Error())
}

func kindForStatus(code int) (ErrorKind, bool) {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return KindAuth, true
	case code == http.StatusNotFound:
		return KindNotFound, true
	case code == http.StatusTooManyRequests:
		return KindRateLimit, true
	case code >= http.StatusInternalServerError:
		return KindServer, true
	default:
		return KindUnknown, false
	}
}

// classifyMessage holds the free-text heuristics. Gemini, for one, reports
// a bad key as 400 "API key not valid".
func classifyMessage(msg string) ErrorKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found"):
		return KindNotFound
	case strings.Contains(lower, "api key") || strings.Contains(lower, "authentication"):
		return KindAuth
	case strings.Contains(lower, "429") || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return KindRateLimit
	default:
		return KindUnknown
	}
}
