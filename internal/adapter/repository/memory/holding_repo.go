package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

type holdingRepo struct {
	view view
}

// NewHoldingRepository creates a HoldingRepository reading the committed state of the store
func NewHoldingRepository(store *Store) domain.HoldingRepository {
	return &holdingRepo{view: liveView{store: store}}
}

func (r *holdingRepo) FindByUserAndProduct(ctx context.Context, userID uuid.UUID, productID int64) (*domain.Holding, error) {
	st := r.view.snapshot()
	id, ok := st.pairs[pairKey{userID: userID, productID: productID}]
	if !ok {
		return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
	}
	h := st.holdings[id]
	return &h, nil
}

func (r *holdingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	h, ok := r.view.snapshot().holdings[id]
	if !ok {
		return nil, fmt.Errorf("holding not found: %w", domain.ErrNotFound)
	}
	return &h, nil
}

func (r *holdingRepo) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	st := r.view.snapshot()

	var holdings []*domain.Holding
	for _, h := range st.holdings {
		if h.UserID == userID {
			h := h
			holdings = append(holdings, &h)
		}
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].ProductID < holdings[j].ProductID
	})
	return holdings, nil
}

func (r *holdingRepo) Save(ctx context.Context, holding *domain.Holding) error {
	if err := holding.Validate(); err != nil {
		return fmt.Errorf("invalid holding: %w", err)
	}

	return r.view.update(func(st *state) error {
		key := pairKey{userID: holding.UserID, productID: holding.ProductID}
		if existing, ok := st.pairs[key]; ok && existing != holding.ID {
			return fmt.Errorf("holding for user %s and product %d already exists: %w", holding.UserID, holding.ProductID, domain.ErrConflict)
		}
		st.holdings[holding.ID] = *holding
		st.pairs[key] = holding.ID
		return nil
	})
}

func (r *holdingRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.view.update(func(st *state) error {
		h, ok := st.holdings[id]
		if !ok {
			return fmt.Errorf("holding not found: %w", domain.ErrNotFound)
		}
		delete(st.holdings, id)
		delete(st.pairs, pairKey{userID: h.UserID, productID: h.ProductID})
		return nil
	})
}
