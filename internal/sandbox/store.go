package sandbox

import (
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/paysuite/pkg/paysuite"
)

var (
	ErrPaymentNotFound = errors.New("payment request not found")
	ErrAlreadyPaid     = errors.New("payment request already paid")
)

// Store keeps sandbox payment requests in memory.
type Store struct {
	mu       sync.RWMutex
	payments map[string]*paysuite.Payment
	nextTxID int64
}

func NewStore() *Store {
	return &Store{
		payments: make(map[string]*paysuite.Payment),
	}
}

func (s *Store) Create(p *paysuite.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = clonePayment(p)
}

func (s *Store) Get(id string) (*paysuite.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

// MarkPaid attaches a completed transaction to the payment request.
func (s *Store) MarkPaid(id, transactionID string, paidAt time.Time) (*paysuite.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if p.Transaction != nil {
		return nil, ErrAlreadyPaid
	}

	s.nextTxID++
	paidAt = paidAt.UTC()
	p.Status = paysuite.PaymentStatusPaid
	p.Transaction = &paysuite.Transaction{
		ID:            s.nextTxID,
		Status:        "completed",
		TransactionID: transactionID,
		PaidAt:        &paidAt,
	}
	return clonePayment(p), nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.payments)
}

func clonePayment(p *paysuite.Payment) *paysuite.Payment {
	cp := *p
	if p.Transaction != nil {
		tx := *p.Transaction
		cp.Transaction = &tx
	}
	return &cp
}
