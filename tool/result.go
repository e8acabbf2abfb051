package tool

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/satgate/remote"
)

// FailureKind classifies failed results
type FailureKind string

const (
	FailureTransport    FailureKind = "transport"
	FailureRemote       FailureKind = "remote"
	FailureProtocol     FailureKind = "protocol"
	FailureBudgetDenied FailureKind = "budget_denied"
	FailureInternal     FailureKind = "internal"
)

type (
	// Result is either a payload, an informational text or a failure
	Result struct {
		Payload interface{}
		Text    string
		Failure *Failure
	}

	Failure struct {
		Kind    FailureKind
		Message string
	}

	// ArgumentError reports a missing or invalid tool argument
	ArgumentError struct {
		Tool    string
		Message string
	}
)

func (e *ArgumentError) Error() string {
	return e.Message
}

// NewArgumentError creates an argument error
func NewArgumentError(tool, format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{Tool: tool, Message: fmt.Sprintf(format, args...)}
}

// OK creates a successful result rendered as JSON
func OK(payload interface{}) *Result {
	return &Result{Payload: payload}
}

// Info creates a successful plain text result
func Info(text string) *Result {
	return &Result{Text: text}
}

// Fail creates a failed result
func Fail(kind FailureKind, message string) *Result {
	return &Result{Failure: &Failure{Kind: kind, Message: message}}
}

// FailWith classifies err into a failed result
func FailWith(err error) *Result {
	var argumentErr *ArgumentError
	var transportErr *remote.TransportError
	var remoteErr *remote.Error
	switch {
	case errors.As(err, &argumentErr):
		return Fail(FailureProtocol, argumentErr.Error())
	case errors.As(err, &transportErr):
		return Fail(FailureTransport, transportErr.Error())
	case errors.As(err, &remoteErr):
		message := remoteErr.Error()
		if remoteErr.StatusCode != 0 {
			message = fmt.Sprintf("%v (HTTP %d)", message, remoteErr.StatusCode)
		}
		return Fail(FailureRemote, message)
	}
	return Fail(FailureInternal, err.Error())
}

// IsError returns true for failed results
func (r *Result) IsError() bool {
	return r.Failure != nil
}

// CallToolResult converts the result to the tool response envelope
func (r *Result) CallToolResult() *schema.CallToolResult {
	if r.Failure != nil {
		return newTextResult("Error: "+r.Failure.Message, true)
	}
	if r.Payload == nil {
		return newTextResult(r.Text, false)
	}
	data, err := json.MarshalIndent(r.Payload, "", "  ")
	if err != nil {
		return newTextResult("Error: failed to encode result: "+err.Error(), true)
	}
	text := string(data)
	if r.Text != "" {
		text = r.Text + "\n" + text
	}
	return newTextResult(text, false)
}

func newTextResult(text string, isError bool) *schema.CallToolResult {
	result := &schema.CallToolResult{Content: []schema.CallToolResultContentElem{schema.TextContent{Type: "text", Text: text}}}
	if isError {
		result.IsError = &isError
	}
	return result
}

// Text returns the concatenated text content of a tool response
func Text(result *schema.CallToolResult) string {
	ret := ""
	for _, elem := range result.Content {
		switch actual := elem.(type) {
		case schema.TextContent:
			ret += actual.Text
		case *schema.TextContent:
			ret += actual.Text
		case map[string]interface{}:
			if text, ok := actual["text"].(string); ok {
				ret += text
			}
		}
	}
	return ret
}

// Failed returns true if a tool response is flagged as error
func Failed(result *schema.CallToolResult) bool {
	return result.IsError != nil && *result.IsError
}
