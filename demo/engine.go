package demo

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/satgate/remote"
	"github.com/viant/satgate/session"
)

const (
	DefaultPaymentDelay      = 2000 * time.Millisecond
	DefaultInvoiceAmountSats = int64(100)
	DefaultMaxSatsPerDay     = int64(1000)
	DefaultMaxCallsPerMinute = int64(60)
	DefaultDifficultyBits    = 16

	accessTokenTTL  = time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
	quoteTTL        = 10 * time.Minute
	projectID       = "demo"
)

const (
	QuoteStatusChallengeIssued = "challenge_issued"
	QuoteStatusSolved          = "solved"
	QuoteStatusPendingPayment  = "pending_payment"
	QuoteStatusPaid            = "paid"
	QuoteStatusExpired         = "expired"
	PaymentStatusNotRequired   = "not_required"
)

// Engine simulates the auth service locally. A pending invoice becomes paid
// once the payment delay has elapsed and its status is polled; there is no
// background timer.
type Engine struct {
	store             session.Store
	clock             func() time.Time
	paymentDelay      time.Duration
	signingKey        []byte
	powMode           bool
	maxSatsPerDay     int64
	maxCallsPerMinute int64

	mux           sync.Mutex
	meters        map[string]*meter
	usedRefreshes map[string]bool
}

type meter struct {
	calls       int64
	sats        int64
	dayStart    time.Time
	minuteStart time.Time
	minuteCalls int64
}

func (m *meter) roll(now time.Time) {
	if now.Sub(m.dayStart) >= 24*time.Hour {
		m.dayStart = now
		m.calls = 0
		m.sats = 0
	}
	if now.Sub(m.minuteStart) >= time.Minute {
		m.minuteStart = now
		m.minuteCalls = 0
	}
}

// Start issues a simulated invoice, or a challenge when pow mode is enabled and lightning is not forced
func (e *Engine) Start(ctx context.Context, request *remote.StartRequest) (*remote.StartResponse, error) {
	now := e.clock()
	quoteID := uuid.NewString()
	forceLightning := request != nil && request.ForceLightning != nil && *request.ForceLightning
	payment := &session.DemoPayment{QuoteID: quoteID, CreatedAt: now}
	response := &remote.StartResponse{QuoteID: quoteID}
	expiresAt := now.Add(quoteTTL).Unix()

	if e.powMode && !forceLightning {
		challenge, err := e.newChallenge(quoteID, expiresAt)
		if err != nil {
			return nil, err
		}
		payment.Mode = session.ModePow
		response.PowChallenge = challenge
	} else {
		preimage := uuid.New()
		hash := sha256.Sum256(preimage[:])
		payment.Mode = session.ModeLightning
		payment.AmountSats = DefaultInvoiceAmountSats
		payment.PaymentHash = hex.EncodeToString(hash[:])
		payment.Invoice = fmt.Sprintf("lnbc%dn1pdemo%s", payment.AmountSats*10, strings.ReplaceAll(quoteID, "-", ""))
		response.Invoice = &remote.Invoice{
			Bolt11:      payment.Invoice,
			AmountSats:  payment.AmountSats,
			ExpiresAt:   expiresAt,
			PaymentHash: payment.PaymentHash,
		}
	}
	if err := e.store.PutDemoPayment(ctx, payment); err != nil {
		return nil, err
	}
	return response, nil
}

func (e *Engine) newChallenge(quoteID string, expiresAt int64) (*remote.PowChallenge, error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}
	target := new(big.Int).Lsh(big.NewInt(1), uint(256-DefaultDifficultyBits))
	ret := &remote.PowChallenge{
		ProjectID:      projectID,
		PublicKey:      "demo-" + quoteID,
		Challenge:      hex.EncodeToString(random),
		Target:         fmt.Sprintf("%064x", target),
		DifficultyBits: DefaultDifficultyBits,
		ExpiresAt:      expiresAt,
	}
	var err error
	ret.Sig, err = e.signChallenge(ret.ProjectID, ret.PublicKey, ret.Challenge, ret.Target, strconv.Itoa(ret.DifficultyBits), strconv.FormatInt(ret.ExpiresAt, 10))
	return ret, err
}

// Status reports quote status; an unexpired lightning quote polled after the payment delay flips to paid
func (e *Engine) Status(ctx context.Context, quoteID string) (*remote.StatusResponse, error) {
	payment, err := e.payment(ctx, "status", quoteID)
	if err != nil {
		return nil, err
	}
	now := e.clock()
	response := &remote.StatusResponse{
		QuoteID:   quoteID,
		ExpiresAt: payment.CreatedAt.Add(quoteTTL).Unix(),
	}
	if payment.Mode == session.ModePow {
		response.PaymentStatus = PaymentStatusNotRequired
		response.Status = QuoteStatusChallengeIssued
		if payment.Paid {
			response.Status = QuoteStatusSolved
		} else if e.expired(payment, now) {
			response.Status = QuoteStatusExpired
		}
		return response, nil
	}
	if !payment.Paid && e.expired(payment, now) {
		response.PaymentStatus = QuoteStatusExpired
		response.Status = QuoteStatusExpired
		return response, nil
	}
	if !payment.Paid && now.Sub(payment.CreatedAt) >= e.paymentDelay {
		if _, err = e.store.MarkDemoPaid(ctx, quoteID); err != nil {
			return nil, err
		}
		payment.Paid = true
	}
	response.PaymentStatus = remote.PaymentStatusPending
	response.Status = QuoteStatusPendingPayment
	if payment.Paid {
		response.PaymentStatus = remote.PaymentStatusPaid
		response.Status = QuoteStatusPaid
	}
	return response, nil
}

// Confirm completes the simulated quote regardless of elapsed time and mints a token
func (e *Engine) Confirm(ctx context.Context, request *remote.ConfirmRequest) (*remote.ConfirmResponse, error) {
	payment, err := e.payment(ctx, "confirm", request.QuoteID)
	if err != nil {
		return nil, err
	}
	if !payment.Paid && e.expired(payment, e.clock()) {
		return nil, remote.NewError("confirm", http.StatusGone, "quote_expired", "quote "+request.QuoteID+" has expired")
	}
	if _, err = e.store.MarkDemoPaid(ctx, request.QuoteID); err != nil {
		return nil, err
	}
	access, refresh, err := e.issue(request.QuoteID)
	if err != nil {
		return nil, err
	}
	return &remote.ConfirmResponse{
		JWT:                 access,
		ExpiresIn:           int64(accessTokenTTL / time.Second),
		RemainingBudgetSats: e.maxSatsPerDay,
		PaymentStatus:       remote.PaymentStatusPaid,
		RefreshToken:        refresh,
	}, nil
}

// Charge meters a call against the token budget
func (e *Engine) Charge(ctx context.Context, token string, request *remote.ChargeRequest) (*remote.ChargeResponse, error) {
	tokenClaims, err := e.authorize("charge", token)
	if err != nil {
		return nil, err
	}
	if request.CallCostSats < 0 {
		return nil, remote.NewError("charge", http.StatusBadRequest, "invalid_request", "callCostSats must not be negative")
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	aMeter := e.meter(tokenClaims.ID)
	response := &remote.ChargeResponse{Status: remote.ChargeStatusOK}
	if aMeter.sats+request.CallCostSats > e.maxSatsPerDay || aMeter.minuteCalls+1 > e.maxCallsPerMinute {
		response.Status = remote.ChargeStatusDeny
	} else {
		aMeter.calls++
		aMeter.minuteCalls++
		aMeter.sats += request.CallCostSats
	}
	response.CallsUsed = aMeter.calls
	response.SatsUsed = aMeter.sats
	return response, nil
}

// Usage returns metering counters of the token
func (e *Engine) Usage(ctx context.Context, token string) (*remote.UsageResponse, error) {
	tokenClaims, err := e.authorize("usage", token)
	if err != nil {
		return nil, err
	}
	e.mux.Lock()
	defer e.mux.Unlock()
	aMeter := e.meter(tokenClaims.ID)
	return &remote.UsageResponse{
		Status:              "active",
		CallsUsed:           aMeter.calls,
		SatsUsed:            aMeter.sats,
		MaxSatsPerDay:       e.maxSatsPerDay,
		RemainingBudgetSats: e.maxSatsPerDay - aMeter.sats,
		MaxCallsPerMinute:   e.maxCallsPerMinute,
		ExpiresAt:           tokenClaims.ExpiresAt.Unix(),
		DayWindowStart:      aMeter.dayStart.Unix(),
	}, nil
}

// Refresh exchanges a single-use refresh token for a new access token
func (e *Engine) Refresh(ctx context.Context, request *remote.RefreshRequest) (*remote.RefreshResponse, error) {
	tokenClaims, err := e.parseToken(request.RefreshToken, audienceRefresh)
	if err != nil {
		return nil, remote.NewError("refresh", http.StatusUnauthorized, "invalid_grant", "invalid refresh token")
	}
	e.mux.Lock()
	used := e.usedRefreshes[tokenClaims.ID]
	e.usedRefreshes[tokenClaims.ID] = true
	e.mux.Unlock()
	if used {
		return nil, remote.NewError("refresh", http.StatusUnauthorized, "invalid_grant", "refresh token already used")
	}
	access, refresh, err := e.issue(tokenClaims.Subject)
	if err != nil {
		return nil, err
	}
	return &remote.RefreshResponse{
		JWT:                 access,
		ExpiresIn:           int64(accessTokenTTL / time.Second),
		RemainingBudgetSats: e.maxSatsPerDay,
		RefreshToken:        refresh,
	}, nil
}

// Invoice returns the simulated payment request of a lightning quote
func (e *Engine) Invoice(ctx context.Context, quoteID string) (*remote.InvoiceResponse, error) {
	payment, err := e.payment(ctx, "invoice", quoteID)
	if err != nil {
		return nil, err
	}
	if payment.Mode != session.ModeLightning {
		return nil, remote.NewError("invoice", http.StatusNotFound, "not_found", "quote "+quoteID+" has no invoice")
	}
	return &remote.InvoiceResponse{PR: payment.Invoice, Routes: []interface{}{}}, nil
}

func (e *Engine) payment(ctx context.Context, operation, quoteID string) (*session.DemoPayment, error) {
	payment, err := e.store.DemoPayment(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, remote.NewError(operation, http.StatusNotFound, "not_found", "quote "+quoteID+" not found")
	}
	return payment, nil
}

func (e *Engine) expired(payment *session.DemoPayment, now time.Time) bool {
	return now.Sub(payment.CreatedAt) > quoteTTL
}

func (e *Engine) authorize(operation, token string) (*claims, error) {
	if token == "" {
		return nil, remote.NewError(operation, http.StatusUnauthorized, "invalid_token", "missing bearer token")
	}
	tokenClaims, err := e.parseToken(token, audienceAccess)
	if err != nil {
		return nil, remote.NewError(operation, http.StatusUnauthorized, "invalid_token", "invalid bearer token")
	}
	return tokenClaims, nil
}

// meter returns token meter, caller must hold mux
func (e *Engine) meter(tokenID string) *meter {
	now := e.clock()
	aMeter, ok := e.meters[tokenID]
	if !ok {
		aMeter = &meter{dayStart: now, minuteStart: now}
		e.meters[tokenID] = aMeter
	}
	aMeter.roll(now)
	return aMeter
}

func (e *Engine) issue(quoteID string) (string, string, error) {
	access, accessClaims, err := e.mintToken(quoteID, audienceAccess, accessTokenTTL, e.maxSatsPerDay)
	if err != nil {
		return "", "", err
	}
	refresh, _, err := e.mintToken(quoteID, audienceRefresh, refreshTokenTTL, 0)
	if err != nil {
		return "", "", err
	}
	e.mux.Lock()
	e.meter(accessClaims.ID)
	e.mux.Unlock()
	return access, refresh, nil
}

// New creates a demo engine backed by store
func New(store session.Store, options ...Option) *Engine {
	ret := &Engine{
		store:             store,
		clock:             time.Now,
		paymentDelay:      DefaultPaymentDelay,
		maxSatsPerDay:     DefaultMaxSatsPerDay,
		maxCallsPerMinute: DefaultMaxCallsPerMinute,
		meters:            map[string]*meter{},
		usedRefreshes:     map[string]bool{},
	}
	for _, option := range options {
		option(ret)
	}
	if len(ret.signingKey) == 0 {
		ret.signingKey = make([]byte, 32)
		_, _ = rand.Read(ret.signingKey)
	}
	return ret
}
