package server

import (
	"context"
	"errors"

	"github.com/viant/jsonrpc/transport"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/satgate/tool"
)

// Server represents MCP protocol handler
type Server struct {
	dispatcher      *tool.Dispatcher
	info            schema.Implementation
	instructions    *string
	protocolVersion string
	loggerName      string
	loggingLevel    schema.LoggingLevel

	stdioServer
	httpServer
}

// NewHandler creates a new handler instance
func (s *Server) NewHandler(ctx context.Context, transport transport.Transport) transport.Handler {
	return s.newHandler(ctx, transport)
}

func (s *Server) newHandler(_ context.Context, notifier transport.Notifier) *Handler {
	ret := &Handler{
		Server:       s,
		Notifier:     notifier,
		loggingLevel: s.loggingLevel,
	}
	ret.Logger = NewLogger(s.loggerName, &ret.loggingLevel, notifier)
	return ret
}

// New creates a new Server instance
func New(dispatcher *tool.Dispatcher, options ...Option) (*Server, error) {
	if dispatcher == nil {
		return nil, errors.New("no tool dispatcher specified")
	}
	s := &Server{
		dispatcher: dispatcher,
		info: schema.Implementation{
			Name:    "satgate",
			Version: "0.1",
		},
		loggerName:      "satgate",
		loggingLevel:    schema.LoggingLevelInfo,
		protocolVersion: schema.LatestProtocolVersion,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}
