package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/store"
	"github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-shelter-go/internal/user/repo"
)

// AdminMarker is stored in User.Admin for administrative identities.
const AdminMarker = "Admin"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUsernameTaken = errors.New("username already taken")
)

// SignupInput is the data needed to create a login identity.
type SignupInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

func (in SignupInput) validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"email", in.Email},
		{"username", in.Username},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	// passwords are taken verbatim, whitespace included
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
	}
	return nil
}

// UserService orchestrates the user lifecycle: signup, reads, name updates
// and deletion. Login is handled by auth.Authenticator.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher auth.PasswordHasher
	logger *zap.SugaredLogger
}

func NewUserService(r *userrepo.UserRepo, hasher auth.PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, hasher: hasher, logger: logger}
}

// Signup creates a user with a freshly salted password hash.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	return s.create(ctx, in, "")
}

// CreateAdmin is Signup with the admin marker set.
func (s *UserService) CreateAdmin(ctx context.Context, in SignupInput) (*entity.User, error) {
	return s.create(ctx, in, AdminMarker)
}

func (s *UserService) create(ctx context.Context, in SignupInput, admin string) (*entity.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	username := auth.NormalizeUsername(in.Username)

	// The unique index (or WithUnique in memory) closes the race left open
	// between this check and the insert.
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	cred, err := s.hasher.HashPassword(ctx, in.Password)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, &entity.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Admin:        admin,
		Username:     &username,
		PasswordHash: &cred.Hash,
		Salt:         &cred.Salt,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.logger.Infow("user created", "user_id", u.ID, "username", username, "admin", admin != "")
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]*entity.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateName changes first and/or last name. At least one must be given.
func (s *UserService) UpdateName(ctx context.Context, id, firstName, lastName string) (*entity.User, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil, fmt.Errorf("%w: firstName or lastName required", ErrInvalidInput)
	}
	return s.repo.UpdateName(ctx, id, firstName, lastName)
}

func (s *UserService) Delete(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("user deleted", "user_id", id)
	return u, nil
}
