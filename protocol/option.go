package protocol

import (
	"time"

	"github.com/viant/satgate/event"
)

// Option configures a service
type Option func(s *Service)

// WithPublisher sets lifecycle event publisher
func WithPublisher(publisher event.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithClock sets time source
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithDemo marks the service as running against the demo engine
func WithDemo(flag bool) Option {
	return func(s *Service) {
		s.demo = flag
	}
}
