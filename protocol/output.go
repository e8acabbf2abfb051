package protocol

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/viant/satgate/remote"
)

// Authentication modes reported by start
const (
	ModeProofOfWork = "proof-of-work"
	ModePayment     = "payment"
)

type (
	// StartOutput describes the authentication mode and the next step
	StartOutput struct {
		QuoteID   string               `json:"quoteId"`
		Mode      string               `json:"mode"`
		Challenge *remote.PowChallenge `json:"challenge,omitempty"`
		Invoice   *InvoiceOutput       `json:"invoice,omitempty"`
		NextStep  string               `json:"nextStep"`
	}

	// InvoiceOutput adds the BTC amount to an invoice
	InvoiceOutput struct {
		remote.Invoice
		AmountBTC string `json:"amountBtc"`
	}

	// CredentialOutput is returned by confirm and refresh
	CredentialOutput struct {
		Token               string `json:"token"`
		ExpiresIn           int64  `json:"expiresIn"`
		RemainingBudgetSats int64  `json:"remainingBudgetSats"`
		PaymentStatus       string `json:"paymentStatus,omitempty"`
		RefreshToken        string `json:"refreshToken,omitempty"`
	}

	// SessionInfoOutput reports bridge mode and cached credential state
	SessionInfoOutput struct {
		Mode          string     `json:"mode"`
		Authenticated bool       `json:"authenticated"`
		ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
		Expired       bool       `json:"expired"`
	}
)

// satsToBTC renders a sats amount in BTC
func satsToBTC(sats int64) string {
	return decimal.New(sats, -8).String()
}
