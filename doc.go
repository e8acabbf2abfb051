// Package satgate exposes a proof-of-work / Lightning authenticated API as MCP tools.
//
// An agent calls start to obtain a quote, then confirm with either a
// proof-of-work solution or, for the invoice fallback, the quote id alone
// once status reports the payment as paid. The access token returned by
// confirm is cached by the bridge and attached to charge and usage calls.
//
// Packages:
//   - remote: auth service HTTP client
//   - demo: local simulation of the auth service
//   - session: credential and demo payment store (memory or Redis)
//   - protocol: handshake sequencing exposed as tools
//   - tool: tool registry and dispatcher
//   - server: MCP JSON-RPC server (stdio, SSE, streamable HTTP)
//   - event: session lifecycle events (watermill)
//   - bridge: configuration and wiring, see cmd/satgate
package satgate
