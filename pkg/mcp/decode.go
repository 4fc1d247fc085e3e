// Package mcp decodes Model Context Protocol JSON-RPC messages into the
// types the guardrails runtime and interceptor operate on, so a caller
// fronting an MCP server can run incoming tool calls through GuardStack
// without hand-rolling JSON-RPC parsing.
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"

	"github.com/guardstack/guardstack/internal/domain/interceptor"
)

// toolCallParams is the MCP "tools/call" request params shape:
// https://modelcontextprotocol.io - CallToolRequest.
type toolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ErrNotToolCall is returned by DecodeToolCall when the message is valid
// JSON-RPC but not a "tools/call" request.
var ErrNotToolCall = fmt.Errorf("mcp: not a tools/call request")

// DecodeMessage deserializes raw JSON-RPC wire bytes, delegating to the
// MCP SDK's codec.
func DecodeMessage(data []byte) (jsonrpc.Message, error) {
	return jsonrpc.DecodeMessage(data)
}

// DecodeToolCall parses a raw JSON-RPC "tools/call" request into an
// interceptor.ToolCall, attributing it to sessionID and agentID (callers
// typically derive these from the transport's authenticated session, since
// MCP carries no equivalent in the wire frame itself).
func DecodeToolCall(raw []byte, sessionID, agentID string) (interceptor.ToolCall, error) {
	msg, err := jsonrpc.DecodeMessage(raw)
	if err != nil {
		return interceptor.ToolCall{}, fmt.Errorf("mcp: decode message: %w", err)
	}

	req, ok := msg.(*jsonrpc.Request)
	if !ok || req.Method != "tools/call" {
		return interceptor.ToolCall{}, ErrNotToolCall
	}

	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return interceptor.ToolCall{}, fmt.Errorf("mcp: decode tools/call params: %w", err)
	}

	return interceptor.ToolCall{
		ToolName:  params.Name,
		Arguments: params.Arguments,
		SessionID: sessionID,
		AgentID:   agentID,
	}, nil
}
