package server

import "github.com/viant/jsonrpc"

func newUnknownMethod(method string) *jsonrpc.Error {
	return jsonrpc.NewMethodNotFound("method: "+method+" not found", nil)
}

func newInvalidParams(method string, err error, params []byte) *jsonrpc.Error {
	return jsonrpc.NewInvalidParamsError("failed to parse "+method+" params: "+err.Error(), params)
}
