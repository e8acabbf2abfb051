package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// APIKeyHeader carries the bridge credential
const APIKeyHeader = "X-Api-Key"

// Client calls the auth service HTTP API. Calls are never retried:
// a challenge solution may only be accepted once.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a client
type Option func(c *Client)

// WithAPIKey sets the bridge credential
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Start requests a proof-of-work challenge or an invoice
func (c *Client) Start(ctx context.Context, request *StartRequest) (*StartResponse, error) {
	response := &StartResponse{}
	return response, c.do(ctx, "start", http.MethodPost, "/start", "", request, response)
}

// Confirm submits a proof-of-work solution or polls a payment
func (c *Client) Confirm(ctx context.Context, request *ConfirmRequest) (*ConfirmResponse, error) {
	response := &ConfirmResponse{}
	return response, c.do(ctx, "confirm", http.MethodPost, "/confirm", "", request, response)
}

// Charge meters a call against the token budget
func (c *Client) Charge(ctx context.Context, token string, request *ChargeRequest) (*ChargeResponse, error) {
	response := &ChargeResponse{}
	return response, c.do(ctx, "charge", http.MethodPost, "/charge", token, request, response)
}

// Usage returns metering counters of the token
func (c *Client) Usage(ctx context.Context, token string) (*UsageResponse, error) {
	response := &UsageResponse{}
	return response, c.do(ctx, "usage", http.MethodGet, "/usage", token, nil, response)
}

// Status returns quote status
func (c *Client) Status(ctx context.Context, quoteID string) (*StatusResponse, error) {
	response := &StatusResponse{}
	return response, c.do(ctx, "status", http.MethodGet, "/status/"+url.PathEscape(quoteID), "", nil, response)
}

// Refresh exchanges a refresh token for a new access token
func (c *Client) Refresh(ctx context.Context, request *RefreshRequest) (*RefreshResponse, error) {
	response := &RefreshResponse{}
	return response, c.do(ctx, "refresh", http.MethodPost, "/refresh", "", request, response)
}

// Invoice looks up the payment request of a quote
func (c *Client) Invoice(ctx context.Context, quoteID string) (*InvoiceResponse, error) {
	response := &InvoiceResponse{}
	return response, c.do(ctx, "invoice", http.MethodGet, "/lnurl/"+url.PathEscape(quoteID), "", nil, response)
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, request, response interface{}) error {
	var body io.Reader
	if request != nil {
		data, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("failed to marshal %v request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create %v request: %w", operation, err)
	}
	httpRequest.Header.Set("Accept", "application/json")
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpRequest.Header.Set(APIKeyHeader, c.apiKey)
	}
	if token != "" {
		bearer := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
		bearer.SetAuthHeader(httpRequest)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return &TransportError{Operation: operation, Err: err}
	}
	defer httpResponse.Body.Close()
	data, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return &TransportError{Operation: operation, Err: err}
	}
	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return newResponseError(operation, httpResponse, data)
	}
	if len(data) == 0 {
		return nil
	}
	if err = json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to decode %v response: %w", operation, err)
	}
	return nil
}

func newResponseError(operation string, response *http.Response, data []byte) *Error {
	ret := &Error{
		Operation:  operation,
		StatusCode: response.StatusCode,
		Status:     http.StatusText(response.StatusCode),
	}
	if ret.Status == "" {
		ret.Status = strings.TrimSpace(strings.TrimPrefix(response.Status, fmt.Sprint(response.StatusCode)))
	}
	errorResponse := &ErrorResponse{}
	if json.Unmarshal(data, errorResponse) == nil {
		ret.Code = errorResponse.Error
		ret.Description = errorResponse.ErrorDescription
	}
	return ret
}

// New creates an auth service client
func New(baseURL string, options ...Option) *Client {
	ret := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}
