package demo

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/satgate/remote"
	"github.com/viant/satgate/session"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(options ...Option) (*Engine, *fakeClock, session.Store) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := session.NewMemoryStore()
	options = append([]Option{WithClock(clock.Now), WithSigningKey([]byte("test-key"))}, options...)
	return New(store, options...), clock, store
}

func TestEngine_StatusAutoPay(t *testing.T) {
	ctx := context.Background()
	engine, clock, store := newTestEngine()

	started, err := engine.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, started.QuoteID)
	require.NotNil(t, started.Invoice)
	assert.Nil(t, started.PowChallenge)
	assert.Equal(t, DefaultInvoiceAmountSats, started.Invoice.AmountSats)
	assert.Len(t, started.Invoice.PaymentHash, 64)

	var testCases = []struct {
		description string
		advance     time.Duration
		expect      string
	}{
		{description: "immediately after start", advance: 0, expect: remote.PaymentStatusPending},
		{description: "just before threshold", advance: 1999 * time.Millisecond, expect: remote.PaymentStatusPending},
		{description: "at threshold", advance: time.Millisecond, expect: remote.PaymentStatusPaid},
		{description: "long after threshold", advance: time.Minute, expect: remote.PaymentStatusPaid},
	}
	for _, testCase := range testCases {
		clock.Advance(testCase.advance)
		status, err := engine.Status(ctx, started.QuoteID)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, status.PaymentStatus, testCase.description)
	}

	payment, err := store.DemoPayment(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.True(t, payment.Paid, "status poll persists payment")
}

func TestEngine_NoPollNoPayment(t *testing.T) {
	ctx := context.Background()
	engine, clock, store := newTestEngine()
	started, err := engine.Start(ctx, nil)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	payment, err := store.DemoPayment(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.False(t, payment.Paid)
}

func TestEngine_ConfirmWithoutStatus(t *testing.T) {
	ctx := context.Background()
	engine, _, store := newTestEngine()
	started, err := engine.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)

	confirmed, err := engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	require.NoError(t, err)
	assert.NotEmpty(t, confirmed.JWT)
	assert.NotEmpty(t, confirmed.RefreshToken)
	assert.Equal(t, int64(3600), confirmed.ExpiresIn)
	assert.Equal(t, DefaultMaxSatsPerDay, confirmed.RemainingBudgetSats)
	assert.Equal(t, remote.PaymentStatusPaid, confirmed.PaymentStatus)

	payment, _ := store.DemoPayment(ctx, started.QuoteID)
	assert.True(t, payment.Paid)

	status, err := engine.Status(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, remote.PaymentStatusPaid, status.PaymentStatus)
}

func TestEngine_ConfirmErrors(t *testing.T) {
	ctx := context.Background()
	engine, clock, _ := newTestEngine()

	_, err := engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: "unknown"})
	remoteErr := &remote.Error{}
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode)

	started, err := engine.Start(ctx, nil)
	require.NoError(t, err)
	clock.Advance(quoteTTL + time.Second)
	_, err = engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusGone, remoteErr.StatusCode)
}

func TestEngine_StatusAfterExpiry(t *testing.T) {
	ctx := context.Background()
	engine, clock, store := newTestEngine()
	started, err := engine.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)

	clock.Advance(quoteTTL + time.Minute)
	status, err := engine.Status(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusExpired, status.Status)
	assert.Equal(t, QuoteStatusExpired, status.PaymentStatus)

	payment, err := store.DemoPayment(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.False(t, payment.Paid, "expired quote is never paid by polling")

	_, err = engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	remoteErr := &remote.Error{}
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusGone, remoteErr.StatusCode)

	paid, err := engine.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = engine.Status(ctx, paid.QuoteID)
	require.NoError(t, err)
	clock.Advance(quoteTTL)
	status, err = engine.Status(ctx, paid.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusPaid, status.Status, "paid before expiry stays paid")
}

func TestEngine_PowMode(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(WithPowMode(true))

	started, err := engine.Start(ctx, &remote.StartRequest{})
	require.NoError(t, err)
	require.NotNil(t, started.PowChallenge)
	assert.Nil(t, started.Invoice)
	assert.Equal(t, DefaultDifficultyBits, started.PowChallenge.DifficultyBits)
	assert.Len(t, started.PowChallenge.Target, 64)
	assert.NotEmpty(t, started.PowChallenge.Sig)

	status, err := engine.Status(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, QuoteStatusChallengeIssued, status.Status)

	_, err = engine.Invoice(ctx, started.QuoteID)
	assert.Error(t, err)

	forced := true
	started, err = engine.Start(ctx, &remote.StartRequest{ForceLightning: &forced})
	require.NoError(t, err)
	assert.Nil(t, started.PowChallenge)
	require.NotNil(t, started.Invoice)

	invoice, err := engine.Invoice(ctx, started.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, started.Invoice.Bolt11, invoice.PR)
}

func TestEngine_Metering(t *testing.T) {
	ctx := context.Background()
	engine, clock, _ := newTestEngine(WithBudget(250, 3))

	_, err := engine.Usage(ctx, "")
	remoteErr := &remote.Error{}
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)

	started, _ := engine.Start(ctx, nil)
	confirmed, err := engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	require.NoError(t, err)

	usage, err := engine.Usage(ctx, confirmed.JWT)
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage.CallsUsed)
	assert.Equal(t, int64(250), usage.RemainingBudgetSats)

	charged, err := engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 100})
	require.NoError(t, err)
	assert.Equal(t, remote.ChargeStatusOK, charged.Status)
	charged, err = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 100})
	require.NoError(t, err)
	assert.Equal(t, remote.ChargeStatusOK, charged.Status)

	charged, err = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 100})
	require.NoError(t, err)
	assert.Equal(t, remote.ChargeStatusDeny, charged.Status, "budget exceeded")
	assert.Equal(t, int64(2), charged.CallsUsed)
	assert.Equal(t, int64(200), charged.SatsUsed)

	charged, _ = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 10})
	assert.Equal(t, remote.ChargeStatusOK, charged.Status)
	charged, _ = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 10})
	assert.Equal(t, remote.ChargeStatusDeny, charged.Status, "rate limit exceeded")

	clock.Advance(time.Minute)
	charged, _ = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 10})
	assert.Equal(t, remote.ChargeStatusOK, charged.Status, "new minute window")

	clock.Advance(2 * time.Hour)
	_, err = engine.Charge(ctx, confirmed.JWT, &remote.ChargeRequest{CallCostSats: 10})
	require.True(t, errors.As(err, &remoteErr), "expired token")
	assert.Equal(t, http.StatusUnauthorized, remoteErr.StatusCode)
}

func TestEngine_Refresh(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine()
	started, _ := engine.Start(ctx, nil)
	confirmed, err := engine.Confirm(ctx, &remote.ConfirmRequest{QuoteID: started.QuoteID})
	require.NoError(t, err)

	_, err = engine.Refresh(ctx, &remote.RefreshRequest{RefreshToken: confirmed.JWT})
	assert.Error(t, err, "access token is not a refresh token")

	refreshed, err := engine.Refresh(ctx, &remote.RefreshRequest{RefreshToken: confirmed.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.JWT)
	assert.NotEqual(t, confirmed.JWT, refreshed.JWT)
	assert.NotEqual(t, confirmed.RefreshToken, refreshed.RefreshToken)

	_, err = engine.Refresh(ctx, &remote.RefreshRequest{RefreshToken: confirmed.RefreshToken})
	assert.Error(t, err, "refresh tokens are single use")

	usage, err := engine.Usage(ctx, refreshed.JWT)
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage.CallsUsed)
}
