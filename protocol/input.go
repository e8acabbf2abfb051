package protocol

import (
	"fmt"
	"strings"

	"github.com/viant/satgate/remote"
)

type (
	// StartInput holds start arguments
	StartInput struct {
		ForceLightning *bool `json:"forceLightning,omitempty" description:"request a Lightning invoice instead of a proof-of-work challenge"`
	}

	// ConfirmInput is either a quote id alone (payment poll) or a quote id with a complete proof-of-work solution
	ConfirmInput struct {
		QuoteID        string  `json:"quoteId" description:"quote id returned by start"`
		Challenge      *string `json:"challenge,omitempty" description:"hex challenge echoed from start"`
		Nonce          *string `json:"nonce,omitempty" description:"nonce found by the solver"`
		Hash           *string `json:"hash,omitempty" description:"hex SHA-256(publicKey:challenge:nonce)"`
		ExpiresAt      *int64  `json:"expiresAt,omitempty" description:"challenge expiry (unix seconds) echoed from start"`
		DifficultyBits *int    `json:"difficultyBits,omitempty" description:"challenge difficulty echoed from start"`
		Signature      *string `json:"signature,omitempty" description:"challenge signature echoed from start"`
	}

	// ChargeInput holds charge arguments
	ChargeInput struct {
		CallCostSats int64 `json:"callCostSats" description:"cost of the downstream call in sats"`
	}

	// UsageInput has no arguments
	UsageInput struct{}

	// StatusInput holds status arguments
	StatusInput struct {
		QuoteID string `json:"quoteId" description:"quote id returned by start"`
	}

	// RefreshInput holds refresh arguments
	RefreshInput struct {
		RefreshToken string `json:"refreshToken" description:"refresh token returned by confirm or refresh"`
	}

	// InvoiceInput holds lookup_invoice arguments
	InvoiceInput struct {
		QuoteID string `json:"quoteId" description:"quote id returned by start"`
	}

	// SessionInfoInput has no arguments
	SessionInfoInput struct{}
)

func (i *ConfirmInput) Validate() error {
	if strings.TrimSpace(i.QuoteID) == "" {
		return fmt.Errorf("quoteId was empty")
	}
	if !i.Request().HasSolution() {
		return nil
	}
	if missing := i.missingSolutionFields(); len(missing) > 0 {
		return fmt.Errorf("incomplete proof-of-work solution, missing: %v", strings.Join(missing, ", "))
	}
	return nil
}

func (i *ConfirmInput) missingSolutionFields() []string {
	var ret []string
	if i.Challenge == nil {
		ret = append(ret, "challenge")
	}
	if i.Nonce == nil {
		ret = append(ret, "nonce")
	}
	if i.Hash == nil {
		ret = append(ret, "hash")
	}
	if i.ExpiresAt == nil {
		ret = append(ret, "expiresAt")
	}
	if i.DifficultyBits == nil {
		ret = append(ret, "difficultyBits")
	}
	if i.Signature == nil {
		ret = append(ret, "signature")
	}
	return ret
}

// Request translates arguments to the wire request, signature is sent as sig
func (i *ConfirmInput) Request() *remote.ConfirmRequest {
	return &remote.ConfirmRequest{
		QuoteID:        i.QuoteID,
		Challenge:      i.Challenge,
		Nonce:          i.Nonce,
		Hash:           i.Hash,
		ExpiresAt:      i.ExpiresAt,
		DifficultyBits: i.DifficultyBits,
		Sig:            i.Signature,
	}
}

func (i *ChargeInput) Validate() error {
	if i.CallCostSats < 0 {
		return fmt.Errorf("callCostSats must not be negative")
	}
	return nil
}

func (i *StatusInput) Validate() error {
	return requireQuoteID(i.QuoteID)
}

func (i *InvoiceInput) Validate() error {
	return requireQuoteID(i.QuoteID)
}

func (i *RefreshInput) Validate() error {
	if strings.TrimSpace(i.RefreshToken) == "" {
		return fmt.Errorf("refreshToken was empty")
	}
	return nil
}

func requireQuoteID(quoteID string) error {
	if strings.TrimSpace(quoteID) == "" {
		return fmt.Errorf("quoteId was empty")
	}
	return nil
}
