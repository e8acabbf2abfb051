// Package server exposes a tool dispatcher as an MCP server.
//
// Supported methods are initialize, ping, tools/list, tools/call and
// logging/setLevel. Client logging is delivered as notifications/message.
// Transports: stdio, HTTP-SSE and streamable HTTP.
//
//	s, _ := server.New(dispatcher)
//	log.Fatal(s.HTTP(ctx, ":5000").ListenAndServe())
package server
