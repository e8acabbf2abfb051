package session

import (
	"context"
	"time"
)

const (
	ModePow       = "pow"
	ModeLightning = "lightning"
)

type (
	// Store holds process-lifetime authentication state: the most recent
	// access credential and simulated payments of demo mode.
	Store interface {
		// Credential returns the cached credential or nil
		Credential(ctx context.Context) (*Credential, error)

		// SetCredential replaces the cached credential
		SetCredential(ctx context.Context, credential *Credential) error

		// DemoPayment returns a demo session record or nil
		DemoPayment(ctx context.Context, quoteID string) (*DemoPayment, error)

		PutDemoPayment(ctx context.Context, payment *DemoPayment) error

		// MarkDemoPaid flags a demo payment as paid, it returns false if no record exists
		MarkDemoPaid(ctx context.Context, quoteID string) (bool, error)
	}

	// Credential is a bearer access token. Refresh tokens are bound to a single
	// exchange and are never part of a cached credential.
	Credential struct {
		AccessToken string    `json:"accessToken"`
		ExpiresIn   int64     `json:"expiresIn"`
		ObtainedAt  time.Time `json:"obtainedAt"`
	}

	// DemoPayment is a simulated quote of demo mode
	DemoPayment struct {
		QuoteID     string    `json:"quoteId"`
		Mode        string    `json:"mode"`
		Invoice     string    `json:"invoice,omitempty"`
		AmountSats  int64     `json:"amountSats"`
		PaymentHash string    `json:"paymentHash,omitempty"`
		Paid        bool      `json:"paid"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

// ExpiresAt returns credential expiry time
func (c *Credential) ExpiresAt() time.Time {
	return c.ObtainedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}
