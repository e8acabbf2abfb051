package session

import (
	"context"
	"sync"

	"github.com/viant/mcp-protocol/syncmap"
)

// MemoryStore implements Store in process memory; mux guards the credential
// and serializes payment writes
type MemoryStore struct {
	mux        sync.RWMutex
	credential *Credential
	payments   *syncmap.Map[string, *DemoPayment]
}

func (s *MemoryStore) Credential(_ context.Context) (*Credential, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	if s.credential == nil {
		return nil, nil
	}
	ret := *s.credential
	return &ret, nil
}

func (s *MemoryStore) SetCredential(_ context.Context, credential *Credential) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if credential == nil {
		s.credential = nil
		return nil
	}
	clone := *credential
	s.credential = &clone
	return nil
}

func (s *MemoryStore) DemoPayment(_ context.Context, quoteID string) (*DemoPayment, error) {
	payment, ok := s.payments.Get(quoteID)
	if !ok {
		return nil, nil
	}
	ret := *payment
	return &ret, nil
}

func (s *MemoryStore) PutDemoPayment(_ context.Context, payment *DemoPayment) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	clone := *payment
	s.payments.Put(payment.QuoteID, &clone)
	return nil
}

func (s *MemoryStore) MarkDemoPaid(_ context.Context, quoteID string) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	payment, ok := s.payments.Get(quoteID)
	if !ok {
		return false, nil
	}
	clone := *payment
	clone.Paid = true
	s.payments.Put(quoteID, &clone)
	return true, nil
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{payments: syncmap.NewMap[string, *DemoPayment]()}
}
