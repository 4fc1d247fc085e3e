package connector

import (
	"context"
	"fmt"
	"strings"
)

// MemoryConnector is a deterministic in-process ModelConnector for tests and
// local development. It never calls a real provider: Send echoes the last
// user message with a fixed prefix, and Embed returns a trivial
// length-derived vector. It exists so the guardrails runtime's
// check-both sandwich and pillar evaluators have something to call without
// pulling in a vendor SDK.
type MemoryConnector struct {
	// Healthy controls the outcome of HealthCheck and Open; NewMemoryConnector
	// sets it to true.
	Healthy bool
	// ResponsePrefix is prepended to the echoed content. Defaults to "echo: ".
	ResponsePrefix string
}

// NewMemoryConnector creates a healthy MemoryConnector with default settings.
func NewMemoryConnector() *MemoryConnector {
	return &MemoryConnector{Healthy: true, ResponsePrefix: "echo: "}
}

func (c *MemoryConnector) Open(_ context.Context, model string) (Session, error) {
	if !c.Healthy {
		return nil, &TransientError{Provider: "memory", Err: fmt.Errorf("connector unhealthy")}
	}
	prefix := c.ResponsePrefix
	if prefix == "" {
		prefix = "echo: "
	}
	return &memorySession{model: model, prefix: prefix}, nil
}

func (c *MemoryConnector) HealthCheck(_ context.Context) error {
	if !c.Healthy {
		return &TransientError{Provider: "memory", Err: fmt.Errorf("connector unhealthy")}
	}
	return nil
}

type memorySession struct {
	model  string
	prefix string
}

func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

func (s *memorySession) Send(_ context.Context, messages []Message) (Response, error) {
	content := s.prefix + lastUserContent(messages)
	return Response{
		Content:      content,
		Usage:        Usage{PromptTokens: len(messages), CompletionTokens: 1, TotalTokens: len(messages) + 1},
		FinishReason: "stop",
		Model:        s.model,
	}, nil
}

func (s *memorySession) Stream(ctx context.Context, messages []Message) (<-chan Delta, error) {
	content := s.prefix + lastUserContent(messages)
	out := make(chan Delta)
	go func() {
		defer close(out)
		words := strings.Fields(content)
		for _, w := range words {
			select {
			case <-ctx.Done():
				return
			case out <- Delta{ContentDelta: w + " "}:
			}
		}
		select {
		case <-ctx.Done():
		case out <- Delta{FinishReason: "stop", Done: true}:
		}
	}()
	return out, nil
}

func (s *memorySession) Embed(_ context.Context, inputs []string) ([]Embedding, error) {
	out := make([]Embedding, len(inputs))
	for i, in := range inputs {
		out[i] = Embedding{float32(len(in)), float32(strings.Count(in, " ") + 1)}
	}
	return out, nil
}

func (s *memorySession) Close() error { return nil }
