// Package refreshtokens provides persistence for refresh-token records.
package refreshtokens

import (
	"context"
	"time"

	"github.com/osavchuk/authsvc/internal/server/models"
)

// Repository is the persistence contract for refresh-token records.
// Id generation and concurrent-create safety are delegated to the database,
// so multiple service instances can share one store without in-process locks.
type Repository interface {
	// Create inserts a record for userID expiring at expiresAt and returns it
	// with the generated id filled in.
	Create(ctx context.Context, userID int64, expiresAt time.Time) (*models.RefreshToken, error)

	// FindByID returns the record or common.ErrorNotFound.
	FindByID(ctx context.Context, id int64) (*models.RefreshToken, error)

	// DeleteByID removes the record; common.ErrorNotFound when absent.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteExpired removes records that expired before the given time and
	// returns how many were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
