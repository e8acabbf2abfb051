package server

import (
	"context"
	"encoding/json"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// SetLevel handles the logging/setLevel method, unknown levels fail to decode
func (h *Handler) SetLevel(_ context.Context, request *jsonrpc.Request) (*schema.SetLevelResult, *jsonrpc.Error) {
	params := &schema.SetLevelRequestParams{}
	if err := json.Unmarshal(request.Params, params); err != nil {
		return nil, newInvalidParams(request.Method, err, request.Params)
	}
	h.loggingLevel = params.Level
	return &schema.SetLevelResult{}, nil
}
