package openai

import (
	"net/http"
	"os"
)

const defaultModel = "gpt-4o-mini"

type options struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	tempSet     bool
	httpClient  *http.Client
}

// Option configures the client.
type Option func(*options)

// WithAPIKey sets the API key. Defaults to the OPENAI_API_KEY environment
// variable.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at a compatible endpoint, e.g. a proxy or a
// self-hosted gateway. Defaults to the OPENAI_BASE_URL environment variable
// when set, otherwise the public API.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithModel sets the default model for calls that do not override it.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float32) Option {
	return func(o *options) {
		o.temperature = t
		o.tempSet = true
	}
}

// WithHTTPClient supplies a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
