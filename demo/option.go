package demo

import "time"

// Option configures an engine
type Option func(e *Engine)

// WithClock sets time source, used by tests to simulate elapsed time
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithPaymentDelay sets how long after start a polled invoice is reported as paid
func WithPaymentDelay(delay time.Duration) Option {
	return func(e *Engine) {
		e.paymentDelay = delay
	}
}

// WithSigningKey sets HMAC key used for synthetic tokens and challenges
func WithSigningKey(key []byte) Option {
	return func(e *Engine) {
		e.signingKey = key
	}
}

// WithPowMode makes start issue a proof-of-work challenge unless lightning is forced
func WithPowMode(flag bool) Option {
	return func(e *Engine) {
		e.powMode = flag
	}
}

// WithBudget sets daily sats budget and per minute call limit of minted tokens
func WithBudget(maxSatsPerDay, maxCallsPerMinute int64) Option {
	return func(e *Engine) {
		e.maxSatsPerDay = maxSatsPerDay
		e.maxCallsPerMinute = maxCallsPerMinute
	}
}
