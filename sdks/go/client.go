package guardstack

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client is the GuardStack SDK client. It submits content to the
// guardrails checkpoint pipeline and tool calls to the agentic interceptor
// exposed by the operator façade (spec.md §6).
type Client struct {
	serverAddr string
	apiKey     string
	failMode   string
	timeout    time.Duration
	httpClient *http.Client
	sessionID  string
	agentID    string

	// Cache fields — a client-side mirror of the server's content-addressed
	// result cache (spec.md §4.4), so a caller issuing the same check
	// repeatedly inside one process doesn't pay a round trip every time.
	cache        sync.Map
	cacheTTL     time.Duration
	cacheMaxSize int
	cacheCount   int64
	cacheMu      sync.Mutex

	logger *slog.Logger
}

type cacheEntry struct {
	guardrail *GuardrailCheckResponse
	expiresAt time.Time
	createdAt time.Time
}

// NewClient creates a new GuardStack SDK client.
// It reads configuration from GUARDSTACK_* environment variables by
// default. Options override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr:   os.Getenv("GUARDSTACK_SERVER_ADDR"),
		apiKey:       os.Getenv("GUARDSTACK_API_KEY"),
		failMode:     envOrDefault("GUARDSTACK_FAIL_MODE", "open"),
		timeout:      parseDurationEnv("GUARDSTACK_TIMEOUT", 5*time.Second),
		cacheTTL:     parseDurationEnv("GUARDSTACK_CACHE_TTL", 5*time.Second),
		cacheMaxSize: parseIntEnv("GUARDSTACK_CACHE_MAX_SIZE", 1000),
		sessionID:    os.Getenv("GUARDSTACK_SESSION_ID"),
		agentID:      os.Getenv("GUARDSTACK_AGENT_ID"),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c
}

// CheckGuardrail submits content to the checkpoint pipeline and returns its
// verdict. On a block verdict, it returns a *BlockedError. On server
// unreachable with fail_mode=open (the default), it returns a synthesized
// allow response instead of an error, mirroring the runtime's own
// fail-open posture.
func (c *Client) CheckGuardrail(ctx context.Context, req GuardrailCheckRequest) (*GuardrailCheckResponse, error) {
	cacheKey := c.buildCacheKey(req)
	if resp, ok := c.getFromCache(cacheKey); ok {
		return resp, nil
	}

	resp, err := c.doCheckGuardrail(ctx, req)
	if err != nil {
		if isConnectionError(err) {
			if c.failMode == "closed" {
				return nil, &ServerUnreachableError{Cause: err}
			}
			c.logger.Warn("guardstack server unreachable, failing open",
				"server_addr", c.serverAddr, "error", err)
			return &GuardrailCheckResponse{
				Action:          GuardrailAllow,
				Passed:          true,
				OriginalContent: req.Content,
				Reasons:         []string{"server unreachable, fail-open"},
			}, nil
		}
		return nil, err
	}

	if resp.Action == GuardrailBlock {
		return nil, &BlockedError{
			CheckpointName: resp.CheckpointName,
			Reason:         strings.Join(resp.Reasons, "; "),
			RequestID:      resp.RequestID,
		}
	}

	if resp.Phase() == PhaseInput {
		c.putInCache(cacheKey, resp)
	}
	return resp, nil
}

// Allowed is a convenience wrapper over CheckGuardrail that reports whether
// content passed, without surfacing a *BlockedError for the normal-verdict
// case.
func (c *Client) Allowed(ctx context.Context, req GuardrailCheckRequest) (bool, error) {
	resp, err := c.CheckGuardrail(ctx, req)
	if err != nil {
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			return false, nil
		}
		return false, err
	}
	return resp.Passed, nil
}

// InterceptToolCall submits a tool call to the agentic interceptor and
// returns its decision. On a block verdict, it returns a *BlockedError.
func (c *Client) InterceptToolCall(ctx context.Context, req ToolCallRequest) (*InterceptResponse, error) {
	if req.SessionID == "" {
		req.SessionID = c.sessionID
	}
	if req.AgentID == "" {
		req.AgentID = c.agentID
	}

	resp, err := c.doIntercept(ctx, req)
	if err != nil {
		if isConnectionError(err) {
			if c.failMode == "closed" {
				return nil, &ServerUnreachableError{Cause: err}
			}
			c.logger.Warn("guardstack server unreachable, failing open",
				"server_addr", c.serverAddr, "error", err)
			return &InterceptResponse{Action: InterceptAllow, Reason: "server unreachable, fail-open"}, nil
		}
		return nil, err
	}

	if resp.Action == InterceptBlock {
		return nil, &BlockedError{Reason: resp.Reason, RequestID: resp.RequestID}
	}
	return resp, nil
}

func (c *Client) doCheckGuardrail(ctx context.Context, req GuardrailCheckRequest) (*GuardrailCheckResponse, error) {
	var resp GuardrailCheckResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/guardrails/check", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doIntercept(ctx context.Context, req ToolCallRequest) (*InterceptResponse, error) {
	var resp InterceptResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/intercept", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	url := strings.TrimRight(c.serverAddr, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &GuardStackError{
			Code: fmt.Sprintf("HTTP_%d", httpResp.StatusCode),
			Err:  fmt.Errorf("server returned %d: %s", httpResp.StatusCode, string(respBody)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

// buildCacheKey mirrors the server's content-addressed cache key (spec.md
// §4.4): a hash of content plus the sorted checkpoint list.
func (c *Client) buildCacheKey(req GuardrailCheckRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Content))
	checkpoints := append([]string(nil), req.Checkpoints...)
	sort.Strings(checkpoints)
	for _, cp := range checkpoints {
		h.Write([]byte(cp))
	}
	return fmt.Sprintf("%s:%s", req.Phase, hex.EncodeToString(h.Sum(nil))[:16])
}

func (c *Client) getFromCache(key string) (*GuardrailCheckResponse, bool) {
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.cache.Delete(key)
		c.cacheMu.Lock()
		c.cacheCount--
		c.cacheMu.Unlock()
		return nil, false
	}
	return entry.guardrail, true
}

func (c *Client) putInCache(key string, resp *GuardrailCheckResponse) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if c.cacheCount >= int64(c.cacheMaxSize) {
		now := time.Now()
		evicted := 0
		c.cache.Range(func(k, v any) bool {
			entry := v.(*cacheEntry)
			if now.After(entry.expiresAt) {
				c.cache.Delete(k)
				evicted++
			}
			return evicted < 100
		})
		c.cacheCount -= int64(evicted)

		if c.cacheCount >= int64(c.cacheMaxSize) {
			var oldest time.Time
			var oldestKey any
			c.cache.Range(func(k, v any) bool {
				entry := v.(*cacheEntry)
				if oldest.IsZero() || entry.createdAt.Before(oldest) {
					oldest = entry.createdAt
					oldestKey = k
				}
				return true
			})
			if oldestKey != nil {
				c.cache.Delete(oldestKey)
				c.cacheCount--
			}
		}
	}

	c.cache.Store(key, &cacheEntry{
		guardrail: resp,
		expiresAt: time.Now().Add(c.cacheTTL),
		createdAt: time.Now(),
	})
	c.cacheCount++
}

// Phase reports which side of the pipeline produced this response, read
// back out of Metadata["phase"] when the server echoes it. Requests that
// don't thread Phase through Metadata are treated as input-phase, the more
// conservative choice for client-side caching.
func (r *GuardrailCheckResponse) Phase() Phase {
	if r.Metadata == nil {
		return PhaseInput
	}
	if p, ok := r.Metadata["phase"].(string); ok && Phase(p) == PhaseOutput {
		return PhaseOutput
	}
	return PhaseInput
}

// isConnectionError determines if an error is a connection-level error
// (server unreachable, connection refused, timeout, etc.) rather than an
// HTTP-level error response.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var gsErr *GuardStackError
	if errors.As(err, &gsErr) {
		return false
	}
	return true
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}

func parseIntEnv(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return defaultVal
}
