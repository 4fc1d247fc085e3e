package guardstack

import (
	"net/http"
	"time"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithServerAddr sets the GuardStack server address.
// If not set, defaults to the GUARDSTACK_SERVER_ADDR environment variable.
func WithServerAddr(addr string) Option {
	return func(c *Client) { c.serverAddr = addr }
}

// WithAPIKey sets the API key for authenticating with the GuardStack server.
// If not set, defaults to the GUARDSTACK_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithFailMode sets the fail mode when the server is unreachable.
// Valid values are "open" (allow through on failure) and "closed" (return
// ServerUnreachableError). If not set, defaults to the GUARDSTACK_FAIL_MODE
// environment variable or "open" — matching the runtime's own default of
// fail-open described in spec.md §4.4, so SDK callers get the same posture
// as the server they're talking to.
func WithFailMode(mode string) Option {
	return func(c *Client) { c.failMode = mode }
}

// WithTimeout sets the HTTP request timeout.
// If not set, defaults to 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithCacheTTL sets the result cache entry time-to-live.
// If not set, defaults to the GUARDSTACK_CACHE_TTL environment variable or
// 5 seconds.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cacheTTL = d }
}

// WithCacheMaxSize sets the maximum number of entries in the client-side
// result cache. If not set, defaults to 1000.
func WithCacheMaxSize(n int) Option {
	return func(c *Client) { c.cacheMaxSize = n }
}

// WithHTTPClient sets a custom http.Client for making requests. Useful for
// testing, proxying, or custom transport configuration.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSessionID sets the default session ID applied to ToolCallRequests
// that don't specify one.
func WithSessionID(id string) Option {
	return func(c *Client) { c.sessionID = id }
}

// WithAgentID sets the default agent ID applied to ToolCallRequests that
// don't specify one.
func WithAgentID(id string) Option {
	return func(c *Client) { c.agentID = id }
}
