package user

import (
	"context"

	"github.com/linearflow/linearflow/pkg/kernel"
)

type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, u *User) error

	// FindByID retrieves a user by ID
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)

	// FindByEmail retrieves a user by normalized email
	FindByEmail(ctx context.Context, email kernel.Email) (*User, error)

	// ExistsByEmail checks if a user exists for the email
	ExistsByEmail(ctx context.Context, email kernel.Email) (bool, error)
}
