// Package memory is an in-process implementation of the repository contracts.
// Units of work stage their writes on a private copy of the state and publish it on commit,
// so concurrent readers never see a partially applied buy or sell.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

type pairKey struct {
	userID    uuid.UUID
	productID int64
}

// state is the committed (or staged) content of the store
type state struct {
	holdings map[uuid.UUID]domain.Holding
	pairs    map[pairKey]uuid.UUID
	txns     []domain.Transaction
}

func newState() *state {
	return &state{
		holdings: make(map[uuid.UUID]domain.Holding),
		pairs:    make(map[pairKey]uuid.UUID),
	}
}

// clone copies the holding maps; the transaction slice is shared up to its length
// because the ledger is append-only.
func (s *state) clone() *state {
	c := &state{
		holdings: make(map[uuid.UUID]domain.Holding, len(s.holdings)),
		pairs:    make(map[pairKey]uuid.UUID, len(s.pairs)),
		txns:     s.txns[:len(s.txns):len(s.txns)],
	}
	for id, h := range s.holdings {
		c.holdings[id] = h
	}
	for k, id := range s.pairs {
		c.pairs[k] = id
	}
	return c
}

// Store holds products, holdings and transactions in memory
type Store struct {
	writeMu sync.Mutex   // serialises units of work
	mu      sync.RWMutex // guards current and products
	current *state

	products map[int64]domain.Product
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		current:  newState(),
		products: make(map[int64]domain.Product),
	}
}

func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) publish(next *state) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

// Atomic runs fn against a staged copy of the state and publishes it when fn succeeds.
// Units of work are serialised, which also gives FindByUserAndProduct its row-lock semantics.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, holdings domain.HoldingRepository, transactions domain.TransactionRepository) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	staged := s.read().clone()
	if err := fn(ctx, &holdingRepo{view: fixedView(staged)}, &transactionRepo{view: fixedView(staged)}); err != nil {
		return err
	}

	s.publish(staged)
	return nil
}

// write applies fn to a copy of the committed state outside of an explicit unit of work
func (s *Store) write(fn func(st *state) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	staged := s.read().clone()
	if err := fn(staged); err != nil {
		return err
	}
	s.publish(staged)
	return nil
}

// view resolves the state a repository operates on
type view interface {
	snapshot() *state
	update(fn func(st *state) error) error
}

type liveView struct{ store *Store }

func (v liveView) snapshot() *state { return v.store.read() }
func (v liveView) update(fn func(st *state) error) error { return v.store.write(fn) }

type stagedView struct{ st *state }

func (v stagedView) snapshot() *state { return v.st }
func (v stagedView) update(fn func(st *state) error) error { return fn(v.st) }

func fixedView(st *state) view { return stagedView{st: st} }
