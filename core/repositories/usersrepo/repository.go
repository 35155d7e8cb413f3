// Package usersrepo provides access to the user directory.
package usersrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/core/scaffolding/fop"
	"github.com/jrazmi/userdir/sdk/logger"
)

// Storer defines the data storage interface for User.
type Storer interface {
	List(ctx context.Context, filter UserFilter) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, input CreateUser) (User, error)
	Update(ctx context.Context, input UpdateUser) (User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (User, error)
	Restore(ctx context.Context, id uuid.UUID) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
}

// Repository provides access to user storage.
type Repository struct {
	log    *logger.Logger
	storer Storer
}

// NewRepository creates a new User repository
func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

// List returns one page of users matching filter together with its
// metadata. Errors from the store are returned with their kind intact.
func (r *Repository) List(ctx context.Context, filter UserFilter) ([]User, fop.Metadata, error) {
	users, err := r.storer.List(ctx, filter)
	if err != nil {
		r.log.ErrorContext(ctx, "list users", "filter", filter, "error", err)
		return nil, fop.Metadata{}, fmt.Errorf("list users: %w", err)
	}

	md := fop.NewMetadata(users, UserID)
	r.log.InfoContext(ctx, "list users",
		"filter", filter,
		"response_length", md.ResponseLength,
		"next", md.Next,
		"last_seen", md.LastSeen,
	)
	return users, md, nil
}

// GetByID returns the user with the given identifier.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := r.storer.GetByID(ctx, id)
	if err != nil {
		r.log.ErrorContext(ctx, "get user", "id", id, "error", err)
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, input CreateUser) (User, error) {
	user, err := r.storer.Create(ctx, input)
	if err != nil {
		r.log.ErrorContext(ctx, "create user", "username", input.Username, "error", err)
		return User{}, fmt.Errorf("create user: %w", err)
	}

	r.log.InfoContext(ctx, "created user", "id", user.ID)
	return user, nil
}

// Update applies the set fields of input and bumps updated_at.
func (r *Repository) Update(ctx context.Context, input UpdateUser) (User, error) {
	user, err := r.storer.Update(ctx, input)
	if err != nil {
		r.log.ErrorContext(ctx, "update user", "id", input.ID, "error", err)
		return User{}, fmt.Errorf("update user %s: %w", input.ID, err)
	}

	r.log.InfoContext(ctx, "updated user", "id", user.ID)
	return user, nil
}

// SoftDelete flags the user as deleted and stamps deleted_at.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := r.storer.SoftDelete(ctx, id)
	if err != nil {
		r.log.ErrorContext(ctx, "soft delete user", "id", id, "error", err)
		return User{}, fmt.Errorf("soft delete user %s: %w", id, err)
	}

	r.log.InfoContext(ctx, "soft deleted user", "id", id)
	return user, nil
}

// Restore clears the deleted flag and deleted_at.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := r.storer.Restore(ctx, id)
	if err != nil {
		r.log.ErrorContext(ctx, "restore user", "id", id, "error", err)
		return User{}, fmt.Errorf("restore user %s: %w", id, err)
	}

	r.log.InfoContext(ctx, "restored user", "id", id)
	return user, nil
}

// Delete permanently removes the user and returns the removed row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := r.storer.Delete(ctx, id)
	if err != nil {
		r.log.ErrorContext(ctx, "delete user", "id", id, "error", err)
		return User{}, fmt.Errorf("delete user %s: %w", id, err)
	}

	r.log.InfoContext(ctx, "deleted user", "id", id)
	return user, nil
}
