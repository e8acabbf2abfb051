package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/satgate/demo"
	"github.com/viant/satgate/remote"
	"github.com/viant/satgate/remote/mock"
	"github.com/viant/satgate/session"
)

func newTestClient(t *testing.T, options ...remote.Option) (*remote.Client, *mock.Server) {
	server := mock.New(demo.New(session.NewMemoryStore(), demo.WithSigningKey([]byte("test-key"))))
	t.Cleanup(server.Close)
	return remote.New(server.URL()+"/", options...), server
}

func TestClient_Handshake(t *testing.T) {
	ctx := context.Background()
	client, server := newTestClient(t, remote.WithAPIKey("bridge-key"))

	started, err := client.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)
	require.NotNil(t, started.Invoice)

	status, err := client.Status(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, remote.PaymentStatusPending, status.PaymentStatus)

	invoice, err := client.Invoice(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, started.Invoice.Bolt11, invoice.PR)

	confirmed, err := client.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	require.NoError(t, err)
	require.NotEmpty(t, confirmed.JWT)
	assert.Empty(t, server.Last("/confirm").Authorization, "no bearer before authentication")
	assert.Equal(t, "bridge-key", server.Last("/confirm").APIKey)

	charged, err := client.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 10})
	require.NoError(t, err)
	assert.Equal(t, remote.ChargeStatusOK, charged.Status)
	assert.Equal(t, "Bearer "+confirmed.JWT, server.Last("/charge").Authorization)

	usage, err := client.Usage(ctx, confirmed.JWT)
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.CallsUsed)
	assert.Equal(t, int64(10), usage.SatsUsed)

	refreshed, err := client.Refresh(ctx, &remote.RefreshRequest{RefreshToken: confirmed.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.JWT)
}

func TestClient_ConfirmWirePayload(t *testing.T) {
	ctx := context.Background()
	client, server := newTestClient(t)

	var testCases = []struct {
		description string
		request     *remote.ConfirmRequest
		expect      map[string]interface{}
	}{
		{
			description: "minimal confirm omits solution fields",
			request:     &remote.ConfirmRequest{QuoteID: "q1"},
			expect:      map[string]interface{}{"quoteId": "q1"},
		},
		{
			description: "solution carries sig",
			request: &remote.ConfirmRequest{
				QuoteID:        "q2",
				Challenge:      stringPtr("ab"),
				Nonce:          stringPtr("7"),
				Hash:           stringPtr("00ff"),
				ExpiresAt:      int64Ptr(1767268800),
				DifficultyBits: intPtr(16),
				Sig:            stringPtr("s1"),
			},
			expect: map[string]interface{}{
				"quoteId":        "q2",
				"challenge":      "ab",
				"nonce":          "7",
				"hash":           "00ff",
				"expiresAt":      float64(1767268800),
				"difficultyBits": float64(16),
				"sig":            "s1",
			},
		},
	}
	for _, testCase := range testCases {
		_, _ = client.Confirm(ctx, testCase.request)
		recorded := server.Last("/confirm")
		require.NotNil(t, recorded, testCase.description)
		actual := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(recorded.Body, &actual), testCase.description)
		assert.Equal(t, testCase.expect, actual, testCase.description)
		assert.NotContains(t, actual, "signature", testCase.description)
	}
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	client, server := newTestClient(t)

	_, err := client.Status(ctx, "missing")
	remoteErr := &remote.Error{}
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)
	assert.Equal(t, "quote missing not found", remoteErr.Error())
	assert.Equal(t, "not_found", remoteErr.Code)

	server.Fail("/start", http.StatusServiceUnavailable, "upstream down")
	_, err = client.Start(ctx, &remote.StartRequest{})
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.StatusCode)
	assert.Equal(t, "Service Unavailable", remoteErr.Error(), "falls back to status text")

	server.Close()
	_, err = client.Start(ctx, &remote.StartRequest{})
	transportErr := &remote.TransportError{}
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "start", transportErr.Operation)
	assert.Equal(t, 1, countPath(server.Requests(), "/start"), "calls are not retried")
}

func countPath(requests []*mock.Request, path string) int {
	ret := 0
	for _, request := range requests {
		if request.Path == path {
			ret++
		}
	}
	return ret
}

func stringPtr(v string) *string { return &v }

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }
