package usersrepobridge

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrazmi/userdir/bridge/scaffolding/errs"
	"github.com/jrazmi/userdir/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/userdir/core/repositories/usersrepo"
	"github.com/jrazmi/userdir/core/scaffolding/fop"
	"github.com/jrazmi/userdir/infrastructure/web"
)

// Repository is the part of usersrepo.Repository the bridge calls.
type Repository interface {
	List(ctx context.Context, filter usersrepo.UserFilter) ([]usersrepo.User, fop.Metadata, error)
	GetByID(ctx context.Context, id uuid.UUID) (usersrepo.User, error)
	Create(ctx context.Context, input usersrepo.CreateUser) (usersrepo.User, error)
	Update(ctx context.Context, input usersrepo.UpdateUser) (usersrepo.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (usersrepo.User, error)
	Restore(ctx context.Context, id uuid.UUID) (usersrepo.User, error)
	Delete(ctx context.Context, id uuid.UUID) (usersrepo.User, error)
}

type bridge struct {
	userRepository Repository
}

func newBridge(userRepository Repository) *bridge {
	return &bridge{
		userRepository: userRepository,
	}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	filter, err := parseFilter(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	users, md, err := b.userRepository.List(ctx, filter)
	if err != nil {
		return errs.FromRepoError(err)
	}

	return fopbridge.NewListResponse(users, md)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	id, err := parseUserID(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	user, err := b.userRepository.GetByID(ctx, id)
	if err != nil {
		return errs.FromRepoError(err)
	}

	return fopbridge.NewRecordResponse(user)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateUserInput
	if err := web.Decode(r, &input); err != nil {
		return errs.FromDecodeError(err)
	}

	user, err := b.userRepository.Create(ctx, input.toRepository())
	if err != nil {
		return errs.FromRepoError(err)
	}

	return fopbridge.NewCreatedResponse(user)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	id, err := parseUserID(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	var input UpdateUserInput
	if err := web.Decode(r, &input); err != nil {
		return errs.FromDecodeError(err)
	}

	user, err := b.userRepository.Update(ctx, input.toRepository(id))
	if err != nil {
		return errs.FromRepoError(err)
	}

	return fopbridge.NewRecordResponse(user)
}

// byID adapts a repository call keyed only by the path id.
func (b *bridge) byID(call func(context.Context, uuid.UUID) (usersrepo.User, error)) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		id, err := parseUserID(r)
		if err != nil {
			return errs.New(errs.InvalidArgument, err)
		}

		user, err := call(ctx, id)
		if err != nil {
			return errs.FromRepoError(err)
		}

		return fopbridge.NewRecordResponse(user)
	}
}
