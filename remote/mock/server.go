// Package mock serves the auth service HTTP API in process, backed by the demo engine.
package mock

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/viant/satgate/demo"
	"github.com/viant/satgate/remote"
)

type (
	// Request is a recorded inbound call
	Request struct {
		Method        string
		Path          string
		Authorization string
		APIKey        string
		Body          []byte
	}

	failure struct {
		status int
		body   string
	}

	// Server is an echo based auth service
	Server struct {
		engine   *demo.Engine
		echo     *echo.Echo
		http     *httptest.Server
		mux      sync.Mutex
		requests []*Request
		failures map[string]*failure
	}
)

// URL returns server base URL
func (s *Server) URL() string {
	return s.http.URL
}

// Close stops the server
func (s *Server) Close() {
	s.http.Close()
}

// Requests returns recorded requests
func (s *Server) Requests() []*Request {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]*Request{}, s.requests...)
}

// Last returns the most recent request to path, or nil
func (s *Server) Last(path string) *Request {
	s.mux.Lock()
	defer s.mux.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i]
		}
	}
	return nil
}

// Fail makes subsequent calls to path return status with a raw body
func (s *Server) Fail(path string, status int, body string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.failures[path] = &failure{status: status, body: body}
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		request := c.Request()
		var body []byte
		if request.Body != nil {
			body, _ = io.ReadAll(request.Body)
			request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mux.Lock()
		s.requests = append(s.requests, &Request{
			Method:        request.Method,
			Path:          request.URL.Path,
			Authorization: request.Header.Get("Authorization"),
			APIKey:        request.Header.Get(remote.APIKeyHeader),
			Body:          body,
		})
		injected := s.failures[request.URL.Path]
		s.mux.Unlock()
		if injected != nil {
			return c.Blob(injected.status, echo.MIMEApplicationJSON, []byte(injected.body))
		}
		return next(c)
	}
}

func (s *Server) start(c echo.Context) error {
	request := &remote.StartRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c)
	}
	response, err := s.engine.Start(c.Request().Context(), request)
	return reply(c, response, err)
}

func (s *Server) confirm(c echo.Context) error {
	request := &remote.ConfirmRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c)
	}
	response, err := s.engine.Confirm(c.Request().Context(), request)
	return reply(c, response, err)
}

func (s *Server) charge(c echo.Context) error {
	request := &remote.ChargeRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c)
	}
	response, err := s.engine.Charge(c.Request().Context(), bearer(c), request)
	return reply(c, response, err)
}

func (s *Server) usage(c echo.Context) error {
	response, err := s.engine.Usage(c.Request().Context(), bearer(c))
	return reply(c, response, err)
}

func (s *Server) status(c echo.Context) error {
	response, err := s.engine.Status(c.Request().Context(), c.Param("id"))
	return reply(c, response, err)
}

func (s *Server) refresh(c echo.Context) error {
	request := &remote.RefreshRequest{}
	if err := c.Bind(request); err != nil {
		return badRequest(c)
	}
	response, err := s.engine.Refresh(c.Request().Context(), request)
	return reply(c, response, err)
}

func (s *Server) invoice(c echo.Context) error {
	response, err := s.engine.Invoice(c.Request().Context(), c.Param("id"))
	return reply(c, response, err)
}

func bearer(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, &remote.ErrorResponse{Error: "invalid_request", ErrorDescription: "invalid request body"})
}

func reply(c echo.Context, response interface{}, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, response)
	}
	remoteErr := &remote.Error{}
	if errors.As(err, &remoteErr) {
		return c.JSON(remoteErr.StatusCode, &remote.ErrorResponse{Error: remoteErr.Code, ErrorDescription: remoteErr.Description})
	}
	return c.JSON(http.StatusInternalServerError, &remote.ErrorResponse{Error: "server_error", ErrorDescription: err.Error()})
}

// New starts an auth service backed by engine
func New(engine *demo.Engine) *Server {
	ret := &Server{engine: engine, echo: echo.New(), failures: map[string]*failure{}}
	ret.echo.HideBanner = true
	ret.echo.Use(ret.record)
	ret.echo.POST("/start", ret.start)
	ret.echo.POST("/confirm", ret.confirm)
	ret.echo.POST("/charge", ret.charge)
	ret.echo.GET("/usage", ret.usage)
	ret.echo.GET("/status/:id", ret.status)
	ret.echo.POST("/refresh", ret.refresh)
	ret.echo.GET("/lnurl/:id", ret.invoice)
	ret.http = httptest.NewServer(ret.echo)
	return ret
}
