package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/satgate/remote"
)

type echoInput struct {
	QuoteID string `json:"quoteId"`
	Count   *int   `json:"count,omitempty"`
}

func (i *echoInput) Validate() error {
	if i.Count != nil && *i.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	return nil
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	registry := NewRegistry()
	require.NoError(t, Register[echoInput](registry, "echo", "Echo input", func(ctx context.Context, input *echoInput) (*Result, error) {
		return OK(input), nil
	}))
	require.NoError(t, Register[struct{}](registry, "remote", "Fails remotely", func(ctx context.Context, input *struct{}) (*Result, error) {
		return nil, remote.NewError("start", http.StatusBadRequest, "invalid_request", "bad quote")
	}))
	require.NoError(t, Register[struct{}](registry, "transport", "Fails in transport", func(ctx context.Context, input *struct{}) (*Result, error) {
		return nil, &remote.TransportError{Operation: "usage", Err: errors.New("connection refused")}
	}))
	require.NoError(t, Register[struct{}](registry, "panic", "Panics", func(ctx context.Context, input *struct{}) (*Result, error) {
		panic("boom")
	}))
	require.NoError(t, Register[struct{}](registry, "pending", "Informs", func(ctx context.Context, input *struct{}) (*Result, error) {
		return Info("payment pending"), nil
	}))
	return New(registry)
}

func TestDispatcher_Invoke(t *testing.T) {
	dispatcher := newTestDispatcher(t)
	ctx := context.Background()

	var testCases = []struct {
		description string
		name        string
		args        map[string]interface{}
		kind        FailureKind
		contains    string
	}{
		{description: "typed success", name: "echo", args: map[string]interface{}{"quoteId": "q1"}, contains: `"quoteId": "q1"`},
		{description: "unknown operation", name: "teleport", kind: FailureProtocol, contains: "no such operation: teleport"},
		{description: "missing argument", name: "echo", args: map[string]interface{}{}, kind: FailureProtocol, contains: "missing required argument: quoteId"},
		{description: "null argument", name: "echo", args: map[string]interface{}{"quoteId": nil}, kind: FailureProtocol, contains: "missing required argument: quoteId"},
		{description: "wrong type", name: "echo", args: map[string]interface{}{"quoteId": 12}, kind: FailureProtocol, contains: "invalid arguments"},
		{description: "validator", name: "echo", args: map[string]interface{}{"quoteId": "q1", "count": -1}, kind: FailureProtocol, contains: "count must not be negative"},
		{description: "remote error", name: "remote", kind: FailureRemote, contains: "bad quote (HTTP 400)"},
		{description: "transport error", name: "transport", kind: FailureTransport, contains: "connection refused"},
		{description: "panic", name: "panic", kind: FailureInternal, contains: "boom"},
		{description: "informational", name: "pending", contains: "payment pending"},
	}

	for _, testCase := range testCases {
		result := dispatcher.Invoke(ctx, testCase.name, testCase.args)
		require.NotNil(t, result, testCase.description)
		envelope := result.CallToolResult()
		require.Len(t, envelope.Content, 1, testCase.description)
		assert.Equal(t, "text", envelope.Content[0].(schema.TextContent).Type, testCase.description)
		assert.Contains(t, Text(envelope), testCase.contains, testCase.description)
		if testCase.kind == "" {
			assert.False(t, result.IsError(), testCase.description)
			assert.Nil(t, envelope.IsError, testCase.description)
			continue
		}
		require.True(t, result.IsError(), testCase.description)
		assert.Equal(t, testCase.kind, result.Failure.Kind, testCase.description)
		assert.True(t, Failed(envelope), testCase.description)
	}
}

func TestDispatcher_List(t *testing.T) {
	dispatcher := newTestDispatcher(t)
	tools := dispatcher.List()
	require.Len(t, tools, 5)
	assert.Equal(t, "echo", tools[0].Name)
	assert.Equal(t, "Echo input", *tools[0].Description)
	assert.Equal(t, []string{"quoteId"}, tools[0].InputSchema.Required)
}

func TestRegistry_Duplicate(t *testing.T) {
	registry := NewRegistry()
	handler := func(ctx context.Context, input *struct{}) (*Result, error) { return nil, nil }
	require.NoError(t, Register[struct{}](registry, "a", "", handler))
	assert.Error(t, Register[struct{}](registry, "a", "", handler))
	assert.Error(t, Register[struct{}](registry, "", "", handler))
}

func TestRegister_InputSchema(t *testing.T) {
	type input struct {
		QuoteID string   `json:"quoteId" description:"quote id"`
		Nonce   *string  `json:"nonce,omitempty"`
		Cost    int64    `json:"cost,omitempty"`
		Tags    []string `json:"tags"`
		Ignored string   `json:"-"`
	}
	registry := NewRegistry()
	require.NoError(t, Register[input](registry, "inspect", "Inspect", func(ctx context.Context, input *input) (*Result, error) {
		return Info("ok"), nil
	}))
	inputSchema := registry.Tools()[0].InputSchema
	assert.Equal(t, "object", inputSchema.Type)
	assert.Equal(t, []string{"quoteId", "tags"}, inputSchema.Required)
	assert.Equal(t, "quote id", inputSchema.Properties["quoteId"]["description"])
	assert.Equal(t, true, inputSchema.Properties["nonce"]["nullable"])
	assert.Equal(t, "integer", inputSchema.Properties["cost"]["type"])
	assert.NotContains(t, inputSchema.Properties, "Ignored")
}

func TestText(t *testing.T) {
	envelope := Fail(FailureRemote, "bad quote").CallToolResult()
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"Error: bad quote"}],"isError":true}`, string(data))

	decoded := &schema.CallToolResult{}
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, "Error: bad quote", Text(decoded))
	assert.True(t, Failed(decoded))
}
