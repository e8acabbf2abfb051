package server

import (
	"net/http"
	"slices"

	"github.com/viant/mcp-protocol/schema"
)

const protocolVersionHeader = "MCP-Protocol-Version"

// supportedProtocolVersions lists MCP revisions accepted on HTTP transports
var supportedProtocolVersions = []string{"2024-11-05", "2025-03-26", schema.LatestProtocolVersion}

// protocolVersionMiddleware rejects unknown MCP-Protocol-Version headers;
// an absent header is accepted.
func protocolVersionMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			version := r.Header.Get(protocolVersionHeader)
			if version != "" && !slices.Contains(supportedProtocolVersions, version) {
				http.Error(w, "unsupported "+protocolVersionHeader+": "+version, http.StatusBadRequest)
				return
			}
			if version == "" {
				version = schema.LatestProtocolVersion
			}
			w.Header().Set(protocolVersionHeader, version)
			next.ServeHTTP(w, r)
		})
	}
}
