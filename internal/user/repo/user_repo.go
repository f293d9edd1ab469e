package repo

import (
	"context"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/entity"
)

// UserRepo provides data access for the users collection.
type UserRepo struct {
	users *store.Collection[entity.User]
}

func NewUserRepo(s store.Store, collection string) *UserRepo {
	return &UserRepo{users: store.NewCollection[entity.User](s, collection)}
}

// Collection exposes the typed collection, e.g. as an identity finder for
// the local credential verifier.
func (r *UserRepo) Collection() *store.Collection[entity.User] { return r.users }

// Create inserts a new user and returns it with its store-assigned id.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) (*entity.User, error) {
	return r.users.Insert(ctx, u)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.users.Get(ctx, id)
}

// UsernameExists reports whether any record carries username.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	u, _, err := r.users.FindFirst(ctx, store.Filter{"username": username})
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return r.users.List(ctx, nil)
}

// UpdateName sets the given name fields; empty arguments are left untouched.
func (r *UserRepo) UpdateName(ctx context.Context, id, firstName, lastName string) (*entity.User, error) {
	fields := map[string]any{}
	if firstName != "" {
		fields["firstName"] = firstName
	}
	if lastName != "" {
		fields["lastName"] = lastName
	}
	return r.users.Update(ctx, id, fields)
}

// Delete physically removes the record and returns what was stored.
func (r *UserRepo) Delete(ctx context.Context, id string) (*entity.User, error) {
	return r.users.Delete(ctx, id)
}
