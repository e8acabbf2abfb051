package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// Initialize handles the initialize method
func (h *Handler) Initialize(_ context.Context, request *jsonrpc.Request) (*schema.InitializeResult, *jsonrpc.Error) {
	params := &schema.InitializeRequestParams{}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, params); err != nil {
			return nil, newInvalidParams(request.Method, err, request.Params)
		}
	}
	h.clientInitialize = params
	result := schema.InitializeResult{
		ProtocolVersion: h.negotiatedVersion(),
		ServerInfo:      h.info,
		Capabilities: schema.ServerCapabilities{
			Logging: map[string]interface{}{},
			Tools:   &schema.ServerCapabilitiesTools{},
		},
		Instructions: h.instructions,
	}
	return &result, nil
}

// negotiatedVersion echoes an older client revision, otherwise the server revision
func (h *Handler) negotiatedVersion() string {
	if h.clientInitialize == nil || h.clientInitialize.ProtocolVersion == "" {
		return h.protocolVersion
	}
	if schema.IsProtocolNewer(h.protocolVersion, h.clientInitialize.ProtocolVersion) {
		return h.clientInitialize.ProtocolVersion
	}
	return h.protocolVersion
}

// Ping handles the ping method
func (h *Handler) Ping(_ context.Context, _ *jsonrpc.Request) (*schema.PingResult, *jsonrpc.Error) {
	return &schema.PingResult{}, nil
}
