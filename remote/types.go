package remote

const (
	// ChargeStatusOK means the call was metered
	ChargeStatusOK = "ok"
	// ChargeStatusDeny means the budget or rate limit was exceeded
	ChargeStatusDeny = "deny"

	// PaymentStatusPending means the invoice is not paid yet
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type (
	// StartRequest asks for a challenge, or an invoice when ForceLightning is set
	StartRequest struct {
		ForceLightning *bool `json:"forceLightning,omitempty"`
	}

	// PowChallenge is a signed proof-of-work challenge. A solution is a nonce
	// such that SHA-256(publicKey ":" challenge ":" nonce) < target.
	PowChallenge struct {
		ProjectID      string `json:"projectId"`
		PublicKey      string `json:"publicKey"`
		Challenge      string `json:"challenge"`
		Target         string `json:"target"`
		DifficultyBits int    `json:"difficultyBits"`
		ExpiresAt      int64  `json:"expiresAt"`
		Sig            string `json:"sig"`
	}

	// Invoice is a Lightning payment request for a quote
	Invoice struct {
		Bolt11      string `json:"bolt11"`
		AmountSats  int64  `json:"amountSats"`
		ExpiresAt   int64  `json:"expiresAt"`
		PaymentHash string `json:"paymentHash"`
	}

	// StartResponse carries either a proof-of-work challenge or an invoice
	StartResponse struct {
		QuoteID      string        `json:"quoteId"`
		PowChallenge *PowChallenge `json:"powChallenge,omitempty"`
		Invoice      *Invoice      `json:"invoice,omitempty"`
	}

	// ConfirmRequest carries the quote id and, for proof-of-work, the echoed challenge fields.
	ConfirmRequest struct {
		QuoteID        string  `json:"quoteId"`
		Challenge      *string `json:"challenge,omitempty"`
		Nonce          *string `json:"nonce,omitempty"`
		Hash           *string `json:"hash,omitempty"`
		ExpiresAt      *int64  `json:"expiresAt,omitempty"`
		DifficultyBits *int    `json:"difficultyBits,omitempty"`
		Sig            *string `json:"sig,omitempty"`
	}

	// ConfirmResponse carries the access token once the quote is solved or paid
	ConfirmResponse struct {
		JWT                 string `json:"jwt,omitempty"`
		ExpiresIn           int64  `json:"expiresIn"`
		RemainingBudgetSats int64  `json:"remainingBudgetSats"`
		PaymentStatus       string `json:"paymentStatus,omitempty"`
		RefreshToken        string `json:"refreshToken,omitempty"`
	}

	// ChargeRequest meters one downstream call
	ChargeRequest struct {
		CallCostSats int64 `json:"callCostSats"`
	}

	// ChargeResponse reports the metering outcome and counters
	ChargeResponse struct {
		Status    string `json:"status"`
		CallsUsed int64  `json:"callsUsed"`
		SatsUsed  int64  `json:"satsUsed"`
	}

	// UsageResponse reports token budget and rate counters
	UsageResponse struct {
		Status              string `json:"status"`
		CallsUsed           int64  `json:"callsUsed"`
		SatsUsed            int64  `json:"satsUsed"`
		MaxSatsPerDay       int64  `json:"maxSatsPerDay"`
		RemainingBudgetSats int64  `json:"remainingBudgetSats"`
		MaxCallsPerMinute   int64  `json:"maxCallsPerMinute"`
		ExpiresAt           int64  `json:"expiresAt"`
		DayWindowStart      int64  `json:"dayWindowStart"`
	}

	// StatusResponse reports quote and payment state
	StatusResponse struct {
		QuoteID       string `json:"quoteId"`
		Status        string `json:"status"`
		PaymentStatus string `json:"paymentStatus"`
		ExpiresAt     int64  `json:"expiresAt"`
	}

	// RefreshRequest exchanges a refresh token
	RefreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	// RefreshResponse carries a new access token and rotated refresh token
	RefreshResponse struct {
		JWT                 string `json:"jwt"`
		ExpiresIn           int64  `json:"expiresIn"`
		RemainingBudgetSats int64  `json:"remainingBudgetSats"`
		RefreshToken        string `json:"refreshToken,omitempty"`
	}

	// InvoiceResponse is the LNURL pay response of a quote
	InvoiceResponse struct {
		PR     string        `json:"pr"`
		Routes []interface{} `json:"routes"`
	}

	// ErrorResponse is the error body returned by the auth service
	ErrorResponse struct {
		Error            string `json:"error,omitempty"`
		ErrorDescription string `json:"error_description,omitempty"`
	}
)

// HasSolution returns true when any proof-of-work field is present
func (r *ConfirmRequest) HasSolution() bool {
	return r.Challenge != nil || r.Nonce != nil || r.Hash != nil || r.ExpiresAt != nil || r.DifficultyBits != nil || r.Sig != nil
}
