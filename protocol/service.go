package protocol

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/viant/satgate/event"
	"github.com/viant/satgate/remote"
	"github.com/viant/satgate/session"
	"github.com/viant/satgate/tool"
)

// Backend is the auth service contract, implemented by remote.Client and demo.Engine
type Backend interface {
	Start(ctx context.Context, request *remote.StartRequest) (*remote.StartResponse, error)
	Confirm(ctx context.Context, request *remote.ConfirmRequest) (*remote.ConfirmResponse, error)
	Charge(ctx context.Context, token string, request *remote.ChargeRequest) (*remote.ChargeResponse, error)
	Usage(ctx context.Context, token string) (*remote.UsageResponse, error)
	Status(ctx context.Context, quoteID string) (*remote.StatusResponse, error)
	Refresh(ctx context.Context, request *remote.RefreshRequest) (*remote.RefreshResponse, error)
	Invoice(ctx context.Context, quoteID string) (*remote.InvoiceResponse, error)
}

// Service sequences the handshake: start, confirm (solution or payment poll),
// then metered calls with the cached credential.
type Service struct {
	backend   Backend
	store     session.Store
	publisher event.Publisher
	clock     func() time.Time
	demo      bool
}

// Start requests a challenge or an invoice
func (s *Service) Start(ctx context.Context, input *StartInput) (*tool.Result, error) {
	response, err := s.backend.Start(ctx, &remote.StartRequest{ForceLightning: input.ForceLightning})
	if err != nil {
		return nil, err
	}
	output := &StartOutput{QuoteID: response.QuoteID, Challenge: response.PowChallenge}
	switch {
	case response.PowChallenge != nil:
		output.Mode = ModeProofOfWork
		output.NextStep = "Find a nonce such that SHA-256(publicKey:challenge:nonce) < target, then call confirm with quoteId, challenge, nonce, hash, expiresAt, difficultyBits and signature."
	case response.Invoice != nil:
		output.Mode = ModePayment
		output.NextStep = "Pay the invoice, poll status until paymentStatus is paid, then call confirm with quoteId."
	default:
		output.NextStep = "Call confirm with quoteId."
	}
	if response.Invoice != nil {
		output.Invoice = &InvoiceOutput{Invoice: *response.Invoice, AmountBTC: satsToBTC(response.Invoice.AmountSats)}
	}
	s.publish(ctx, &event.Event{Type: event.TypeStarted, QuoteID: response.QuoteID, Mode: output.Mode})
	return tool.OK(output), nil
}

// Confirm submits a solution or polls a payment; a pending payment is not an error
func (s *Service) Confirm(ctx context.Context, input *ConfirmInput) (*tool.Result, error) {
	response, err := s.backend.Confirm(ctx, input.Request())
	if err != nil {
		return nil, err
	}
	if response.JWT == "" {
		if response.PaymentStatus == remote.PaymentStatusPending {
			return tool.Info(fmt.Sprintf("Payment for quote %v is still pending. Poll status with quoteId %v and call confirm again once paymentStatus is paid.", input.QuoteID, input.QuoteID)), nil
		}
		return tool.OK(response), nil
	}
	if err = s.cache(ctx, response.JWT, response.ExpiresIn); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Event{Type: event.TypeAuthenticated, QuoteID: input.QuoteID})
	return tool.OK(&CredentialOutput{
		Token:               response.JWT,
		ExpiresIn:           response.ExpiresIn,
		RemainingBudgetSats: response.RemainingBudgetSats,
		PaymentStatus:       response.PaymentStatus,
		RefreshToken:        response.RefreshToken,
	}), nil
}

// Charge meters a call with the cached credential; deny is a failed result
func (s *Service) Charge(ctx context.Context, input *ChargeInput) (*tool.Result, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	response, err := s.backend.Charge(ctx, token, &remote.ChargeRequest{CallCostSats: input.CallCostSats})
	if err != nil {
		return nil, err
	}
	if response.Status == remote.ChargeStatusDeny {
		s.publish(ctx, &event.Event{Type: event.TypeDenied, CallsUsed: response.CallsUsed, SatsUsed: response.SatsUsed})
		return tool.Fail(tool.FailureBudgetDenied, fmt.Sprintf("charge denied with %d calls used and %d sats used (%v BTC); stop making paid calls", response.CallsUsed, response.SatsUsed, satsToBTC(response.SatsUsed))), nil
	}
	return tool.OK(response), nil
}

// Usage returns the remote metering counters unmodified
func (s *Service) Usage(ctx context.Context, _ *UsageInput) (*tool.Result, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	response, err := s.backend.Usage(ctx, token)
	if err != nil {
		return nil, err
	}
	return tool.OK(response), nil
}

// Status polls a quote
func (s *Service) Status(ctx context.Context, input *StatusInput) (*tool.Result, error) {
	response, err := s.backend.Status(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}
	return tool.OK(response), nil
}

// Refresh exchanges a refresh token; the new credential always replaces the cached one,
// a response without one is a protocol failure
func (s *Service) Refresh(ctx context.Context, input *RefreshInput) (*tool.Result, error) {
	response, err := s.backend.Refresh(ctx, &remote.RefreshRequest{RefreshToken: input.RefreshToken})
	if err != nil {
		return nil, err
	}
	if response.JWT == "" {
		return tool.Fail(tool.FailureProtocol, "refresh: response carried no jwt"), nil
	}
	if err = s.cache(ctx, response.JWT, response.ExpiresIn); err != nil {
		return nil, err
	}
	s.publish(ctx, &event.Event{Type: event.TypeRefreshed})
	return tool.OK(&CredentialOutput{
		Token:               response.JWT,
		ExpiresIn:           response.ExpiresIn,
		RemainingBudgetSats: response.RemainingBudgetSats,
		RefreshToken:        response.RefreshToken,
	}), nil
}

// Invoice looks up the payment request of a quote
func (s *Service) Invoice(ctx context.Context, input *InvoiceInput) (*tool.Result, error) {
	response, err := s.backend.Invoice(ctx, input.QuoteID)
	if err != nil {
		return nil, err
	}
	return tool.OK(response), nil
}

// SessionInfo reports operating mode and cached credential state without revealing the token
func (s *Service) SessionInfo(ctx context.Context, _ *SessionInfoInput) (*tool.Result, error) {
	output := &SessionInfoOutput{Mode: "live"}
	if s.demo {
		output.Mode = "demo"
	}
	credential, err := s.store.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if credential != nil {
		output.Authenticated = true
		if credential.ExpiresIn > 0 {
			expiresAt := credential.ExpiresAt()
			output.ExpiresAt = &expiresAt
			output.Expired = !s.clock().Before(expiresAt)
		}
	}
	return tool.OK(output), nil
}

func (s *Service) token(ctx context.Context) (string, error) {
	credential, err := s.store.Credential(ctx)
	if err != nil || credential == nil {
		return "", err
	}
	return credential.AccessToken, nil
}

func (s *Service) cache(ctx context.Context, token string, expiresIn int64) error {
	if token == "" {
		return nil
	}
	return s.store.SetCredential(ctx, &session.Credential{AccessToken: token, ExpiresIn: expiresIn, ObtainedAt: s.clock()})
}

func (s *Service) publish(ctx context.Context, anEvent *event.Event) {
	if s.publisher == nil {
		return
	}
	anEvent.At = s.clock()
	if err := s.publisher.Publish(ctx, anEvent); err != nil {
		log.Printf("failed to publish %v event: %v", anEvent.Type, err)
	}
}

// Register adds protocol tools to registry
func (s *Service) Register(registry *tool.Registry) error {
	if err := tool.Register[StartInput](registry, "start", "Start authentication: returns a quoteId with either a proof-of-work challenge or a Lightning invoice.", s.Start); err != nil {
		return err
	}
	if err := tool.Register[ConfirmInput](registry, "confirm", "Confirm a quote with a proof-of-work solution, or with quoteId only to poll a payment; returns an access token once authenticated.", s.Confirm); err != nil {
		return err
	}
	if err := tool.Register[ChargeInput](registry, "charge", "Meter one downstream call against the budget of the current access token.", s.Charge); err != nil {
		return err
	}
	if err := tool.Register[UsageInput](registry, "usage", "Show calls made, sats used and limits of the current access token.", s.Usage); err != nil {
		return err
	}
	if err := tool.Register[StatusInput](registry, "status", "Poll quote status, including Lightning payment status.", s.Status); err != nil {
		return err
	}
	if err := tool.Register[RefreshInput](registry, "refresh", "Exchange a refresh token for a new access token.", s.Refresh); err != nil {
		return err
	}
	if err := tool.Register[InvoiceInput](registry, "lookup_invoice", "Look up the Lightning payment request of a quote.", s.Invoice); err != nil {
		return err
	}
	return tool.Register[SessionInfoInput](registry, "session_info", "Report operating mode and whether an access token is cached.", s.SessionInfo)
}

// New creates a protocol service
func New(backend Backend, store session.Store, options ...Option) *Service {
	ret := &Service{backend: backend, store: store, clock: time.Now}
	for _, option := range options {
		option(ret)
	}
	return ret
}
