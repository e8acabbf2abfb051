package event

import (
	"context"
	"time"
)

// Topic is the watermill topic of session lifecycle events
const Topic = "satgate.session"

const (
	TypeStarted       = "started"
	TypeAuthenticated = "authenticated"
	TypeRefreshed     = "refreshed"
	TypeDenied        = "denied"
)

type (
	// Event is a session lifecycle transition
	Event struct {
		Type      string    `json:"type"`
		QuoteID   string    `json:"quoteId,omitempty"`
		Mode      string    `json:"mode,omitempty"`
		CallsUsed int64     `json:"callsUsed,omitempty"`
		SatsUsed  int64     `json:"satsUsed,omitempty"`
		At        time.Time `json:"at"`
	}

	// Publisher publishes lifecycle events
	Publisher interface {
		Publish(ctx context.Context, event *Event) error
	}
)
