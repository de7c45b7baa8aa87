// Package users provides persistence for registered identities.
package users

import (
	"context"

	"github.com/osavchuk/authsvc/internal/server/models"
)

// Repository is the persistence contract for identities.
type Repository interface {
	// Create inserts the user and fills in the generated id. A duplicate
	// email yields common.ErrorEmailExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
