package usersrepobridge

import (
	"github.com/google/uuid"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/sdk/validation"
)

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Name     string `json:"name" validate:"required,max=256"`
	Username string `json:"username" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email,max=256"`
}

func (c CreateUserInput) Validate() error {
	return validation.Check(c)
}

func (c CreateUserInput) toRepository() usersrepo.CreateUser {
	return usersrepo.CreateUser{
		Name:     c.Name,
		Username: c.Username,
		Email:    c.Email,
	}
}

// UpdateUserInput is the body of PATCH /users/{user_id}. Absent fields are
// left unchanged.
type UpdateUserInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=256"`
	Username *string `json:"username" validate:"omitempty,min=1,max=256"`
	Email    *string `json:"email" validate:"omitempty,email,max=256"`
}

func (u UpdateUserInput) Validate() error {
	return validation.Check(u)
}

func (u UpdateUserInput) toRepository(id uuid.UUID) usersrepo.UpdateUser {
	return usersrepo.UpdateUser{
		ID:       id,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}
