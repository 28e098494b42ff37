package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProductCatalog is the read-only gateway to the investment product catalog
type ProductCatalog interface {
	// GetProduct retrieves a product snapshot by its ID
	// Returns an error wrapping ErrNotFound when the product does not exist
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

// HoldingRepository defines the interface for holding persistence operations
// Implementations enforce uniqueness of (UserID, ProductID) at the storage layer.
type HoldingRepository interface {
	// FindByUserAndProduct retrieves the holding for a (user, product) pair
	// Returns an error wrapping ErrNotFound when the user has no holding in the product
	FindByUserAndProduct(ctx context.Context, userID uuid.UUID, productID int64) (*Holding, error)

	// FindByID retrieves a holding by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Holding, error)

	// FindAllByUser retrieves every holding owned by a user
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// Save inserts or updates a holding (upsert by ID)
	Save(ctx context.Context, holding *Holding) error

	// DeleteByID removes a holding
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines the interface for the append-only transaction ledger
type TransactionRepository interface {
	// Append inserts a new transaction. There is no update path.
	Append(ctx context.Context, tx *Transaction) error

	// FindAllByUser retrieves a user's transactions ordered by timestamp descending
	// limit <= 0 returns every transaction from offset onward
	FindAllByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, error)

	// CountByUser returns the number of transactions recorded for a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// UnitOfWork runs fn atomically against the holding store and the transaction ledger.
// Either every write made through the repositories handed to fn becomes visible, or none does.
// For HoldingRepository.FindByUserAndProduct, implementations lock the row (or the store)
// until the unit of work ends.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, holdings HoldingRepository, transactions TransactionRepository) error) error
}
