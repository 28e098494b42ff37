package domain

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// Locker provides mutual exclusion keyed by an opaque string.
// Lock blocks until the key is acquired or ctx is done; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// HoldingLockKey is the lock key serialising writes to one (user, product) holding
func HoldingLockKey(userID uuid.UUID, productID int64) string {
	return "holding:" + userID.String() + ":" + strconv.FormatInt(productID, 10)
}
