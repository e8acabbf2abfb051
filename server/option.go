package server

import (
	"fmt"

	"github.com/viant/mcp-protocol/schema"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithCORS adds a new CORS handler to the server.
func WithCORS(cors *Cors) Option {
	return func(s *Server) error {
		handler := &corsHandler{Cors: cors}
		s.corsHandler = handler.Middleware
		s.corsConfig = cors
		return nil
	}
}

// WithImplementation sets the server implementation.
func WithImplementation(implementation schema.Implementation) Option {
	return func(s *Server) error {
		s.info = implementation
		return nil
	}
}

// WithInstructions sets instructions returned on initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) error {
		s.instructions = &instructions
		return nil
	}
}

// WithLoggingLevel sets the initial client logging level of every connection.
func WithLoggingLevel(level schema.LoggingLevel) Option {
	return func(s *Server) error {
		if !isLoggingLevel(level) {
			return fmt.Errorf("unsupported logging level: %v", level)
		}
		s.loggingLevel = level
		return nil
	}
}

// WithEndpointAddress sets the HTTP listen address.
func WithEndpointAddress(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithStreamableHTTP selects streamable HTTP instead of SSE for the root redirect.
func WithStreamableHTTP(flag bool) Option {
	return func(s *Server) error {
		s.useStreamableHTTP = flag
		return nil
	}
}

// WithRootRedirect redirects "/" to the active HTTP transport.
func WithRootRedirect(flag bool) Option {
	return func(s *Server) error {
		s.rootRedirect = flag
		return nil
	}
}

// WithSSEURI sets the SSE endpoint path.
func WithSSEURI(uri string) Option {
	return func(s *Server) error {
		s.sseURI = uri
		return nil
	}
}

// WithSSEMessageURI sets the SSE message endpoint path.
func WithSSEMessageURI(uri string) Option {
	return func(s *Server) error {
		s.sseMessageURI = uri
		return nil
	}
}

// WithStreamableURI sets the streamable HTTP endpoint path.
func WithStreamableURI(uri string) Option {
	return func(s *Server) error {
		s.streamableURI = uri
		return nil
	}
}
