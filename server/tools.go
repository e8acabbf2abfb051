package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/satgate/tool"
)

// ListTools handles the tools/list method
func (h *Handler) ListTools(_ context.Context, request *jsonrpc.Request) (*schema.ListToolsResult, *jsonrpc.Error) {
	if len(request.Params) > 0 {
		params := &schema.ListToolsRequestParams{}
		if err := json.Unmarshal(request.Params, params); err != nil {
			return nil, newInvalidParams(request.Method, err, request.Params)
		}
	}
	return &schema.ListToolsResult{Tools: h.dispatcher.List()}, nil
}

// CallTool handles the tools/call method, tool failures are results, not JSON-RPC errors
func (h *Handler) CallTool(ctx context.Context, request *jsonrpc.Request) (*schema.CallToolResult, *jsonrpc.Error) {
	params := &schema.CallToolRequestParams{}
	if err := json.Unmarshal(request.Params, params); err != nil {
		return nil, newInvalidParams(request.Method, err, request.Params)
	}
	result := h.dispatcher.Invoke(ctx, params.Name, params.Arguments)
	toolLogger := h.Logger.Logger(h.loggerName + "/" + params.Name)
	switch {
	case result.Failure == nil:
		_ = toolLogger.Debug(ctx, map[string]interface{}{"tool": params.Name})
	case result.Failure.Kind == tool.FailureInternal:
		_ = toolLogger.Error(ctx, map[string]interface{}{"tool": params.Name, "error": result.Failure.Message})
	default:
		_ = toolLogger.Warning(ctx, map[string]interface{}{"tool": params.Name, "kind": result.Failure.Kind, "error": result.Failure.Message})
	}
	return result.CallToolResult(), nil
}
