package manage

import (
	"context"
	"fmt"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/observability"
)

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	Username string  `json:"username"`
	Nickname string  `json:"nickname"`
	Email    string  `json:"email"`
	Mobile   string  `json:"mobile"`
	Gender   int     `json:"gender"`
	Avatar   string  `json:"avatar"`
	Password string  `json:"password"`
	Remark   string  `json:"remark"`
	Roles    []int64 `json:"roles"`
}

// UpdateUserInput carries the fields accepted when updating a user. The
// password is not updatable through this path.
type UpdateUserInput struct {
	Username string  `json:"username"`
	Nickname string  `json:"nickname"`
	Email    string  `json:"email"`
	Mobile   string  `json:"mobile"`
	Gender   int     `json:"gender"`
	Avatar   string  `json:"avatar"`
	Status   int     `json:"status"`
	Remark   string  `json:"remark"`
	Roles    []int64 `json:"roles"`
}

// UserService implements user administration on top of the store.
type UserService struct {
	store  *UserStore
	hasher *auth.PasswordHasher
	logger *observability.Logger
}

// NewUserService creates a new user service
func NewUserService(store *UserStore, hasher *auth.PasswordHasher, logger *observability.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, logger: logger}
}

// GetUserList returns one page of users.
func (s *UserService) GetUserList(ctx context.Context, current, size int) (*Page[User], error) {
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx, (current-1)*size, size)
	if err != nil {
		return nil, err
	}

	return NewPage(total, current, size, users), nil
}

// GetUser returns a single user by id.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*User, error) {
	return s.store.GetUser(ctx, userID)
}

// AddUser creates a user after checking username and email availability.
// The plaintext password is hashed before it reaches the store.
func (s *UserService) AddUser(ctx context.Context, input CreateUserInput) (*User, error) {
	if err := s.checkAvailable(ctx, input.Username, input.Email, 0); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:       input.Username,
		Nickname:       input.Nickname,
		Email:          input.Email,
		Mobile:         input.Mobile,
		Gender:         input.Gender,
		Avatar:         input.Avatar,
		PasswordDigest: digest,
		Status:         StatusEnabled,
		Remark:         input.Remark,
	}
	if err := s.store.CreateUser(ctx, user, input.Roles); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("user created")
	return user, nil
}

// UpdateUser rewrites a user and replaces its role assignments.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, input UpdateUserInput) error {
	if err := s.checkAvailable(ctx, input.Username, input.Email, userID); err != nil {
		return err
	}

	user := &User{
		ID:       userID,
		Username: input.Username,
		Nickname: input.Nickname,
		Email:    input.Email,
		Mobile:   input.Mobile,
		Gender:   input.Gender,
		Avatar:   input.Avatar,
		Status:   input.Status,
		Remark:   input.Remark,
	}
	return s.store.UpdateUser(ctx, user, input.Roles)
}

// DeleteUser removes a user and its role assignments.
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.WithField("user_id", userID).Info("user deleted")
	return nil
}

// checkAvailable rejects usernames and emails already held by another user.
// Both violations are reported together.
func (s *UserService) checkAvailable(ctx context.Context, username, email string, selfID int64) error {
	users, err := s.store.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return err
	}

	usernameTaken := false
	emailTaken := false
	for _, u := range users {
		if u.ID == selfID {
			continue
		}
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}

	var reasons []string
	if usernameTaken {
		reasons = append(reasons, "username already exists")
	}
	if emailTaken {
		reasons = append(reasons, "email already exists")
	}
	if len(reasons) > 0 {
		return &ConflictError{Reasons: reasons}
	}
	return nil
}
