package server

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	allowOriginHeader      = "Access-Control-Allow-Origin"
	allowHeadersHeader     = "Access-Control-Allow-Headers"
	allowMethodsHeader     = "Access-Control-Allow-Methods"
	requestMethodHeader    = "Access-Control-Request-Method"
	allowCredentialsHeader = "Access-Control-Allow-Credentials"
	exposeHeadersHeader    = "Access-Control-Expose-Headers"
	maxAgeHeader           = "Access-Control-Max-Age"
)

// Cors configures browser access to the HTTP transports
type Cors struct {
	AllowCredentials *bool    `yaml:"allowCredentials,omitempty"`
	AllowHeaders     []string `yaml:"allowHeaders,omitempty"`
	AllowMethods     []string `yaml:"allowMethods,omitempty"`
	AllowOrigins     []string `yaml:"allowOrigins,omitempty"`
	ExposeHeaders    []string `yaml:"exposeHeaders,omitempty"`
	MaxAge           *int64   `yaml:"maxAge,omitempty"`
}

func (c *Cors) allowsOrigin(origin string) bool {
	for _, candidate := range c.AllowOrigins {
		if candidate == "*" || candidate == origin {
			return true
		}
	}
	return false
}

type corsHandler struct {
	*Cors
}

func (h *corsHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Cors.setHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *Cors) setHeaders(writer http.ResponseWriter, request *http.Request) {
	if c == nil {
		return
	}
	header := writer.Header()
	origin := request.Header.Get("Origin")
	switch {
	case origin == "" && c.allowsOrigin("*"):
		header.Set(allowOriginHeader, "*")
	case origin != "" && c.allowsOrigin(origin):
		header.Set(allowOriginHeader, origin)
	}
	if len(c.AllowMethods) > 0 {
		method := request.Method
		if requested := request.Header.Get(requestMethodHeader); request.Method == http.MethodOptions && requested != "" {
			method = requested
		}
		header.Set(allowMethodsHeader, method)
	}
	if len(c.AllowHeaders) > 0 {
		allowed := strings.Join(c.AllowHeaders, ", ")
		if allowed == "*" {
			allowed = "Content-Type, Mcp-Session-Id, " + protocolVersionHeader
		}
		header.Set(allowHeadersHeader, allowed)
	}
	if c.AllowCredentials != nil {
		header.Set(allowCredentialsHeader, strconv.FormatBool(*c.AllowCredentials))
	}
	if c.MaxAge != nil {
		header.Set(maxAgeHeader, strconv.FormatInt(*c.MaxAge, 10))
	}
	if len(c.ExposeHeaders) > 0 {
		exposed := strings.Join(c.ExposeHeaders, ", ")
		if exposed == "*" {
			exposed = "Mcp-Session-Id, " + protocolVersionHeader
		}
		header.Set(exposeHeadersHeader, exposed)
	}
}

func defaultCors() *Cors {
	return &Cors{
		AllowHeaders:  []string{"*"},
		AllowMethods:  []string{"*"},
		AllowOrigins:  []string{"*"},
		ExposeHeaders: []string{"*"},
	}
}
