package manage

import (
	"context"

	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/rbac"
)

// CreateRoleInput carries the fields accepted when creating a role.
type CreateRoleInput struct {
	Name        string  `json:"name"`
	Remark      string  `json:"remark"`
	Status      int     `json:"status"`
	Authorities []int64 `json:"authorities"`
}

// UpdateRoleInput carries the fields accepted when updating a role. A nil
// Authorities slice leaves the existing grants untouched.
type UpdateRoleInput struct {
	Name        string  `json:"name"`
	Remark      string  `json:"remark"`
	Status      int     `json:"status"`
	Authorities []int64 `json:"authorities"`
}

// RoleService implements role administration on top of the store.
type RoleService struct {
	store    *RoleStore
	resolver *rbac.Resolver
	logger   *observability.Logger
}

// NewRoleService creates a new role service
func NewRoleService(store *RoleStore, resolver *rbac.Resolver, logger *observability.Logger) *RoleService {
	return &RoleService{store: store, resolver: resolver, logger: logger}
}

// GetRoleList returns one page of roles.
func (s *RoleService) GetRoleList(ctx context.Context, current, size int) (*Page[Role], error) {
	total, err := s.store.CountRoles(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := s.store.ListRoles(ctx, (current-1)*size, size)
	if err != nil {
		return nil, err
	}

	return NewPage(total, current, size, roles), nil
}

// GetRole returns a single role by id.
func (s *RoleService) GetRole(ctx context.Context, roleID int64) (*Role, error) {
	return s.store.GetRole(ctx, roleID)
}

// AddRole creates a role after checking that the name is free.
func (s *RoleService) AddRole(ctx context.Context, input CreateRoleInput) (*Role, error) {
	count, err := s.store.CountByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Reasons: []string{"role name already exists"}}
	}

	role := &Role{
		Name:   input.Name,
		Status: input.Status,
		Remark: input.Remark,
	}
	if err := s.store.CreateRole(ctx, role, input.Authorities); err != nil {
		return nil, err
	}

	s.logger.WithField("role_id", role.ID).Info("role created")
	return role, nil
}

// UpdateRole rewrites a role. The name uniqueness check only fires when the
// name actually changes, so saving a role without renaming it stays legal.
func (s *RoleService) UpdateRole(ctx context.Context, roleID int64, input UpdateRoleInput) error {
	existing, err := s.store.GetRole(ctx, roleID)
	if err != nil {
		return err
	}

	if input.Name != existing.Name {
		count, err := s.store.CountByName(ctx, input.Name)
		if err != nil {
			return err
		}
		if count > 0 {
			return &ConflictError{Reasons: []string{"role name already exists"}}
		}
	}

	role := &Role{
		ID:     roleID,
		Name:   input.Name,
		Status: input.Status,
		Remark: input.Remark,
	}
	return s.store.UpdateRole(ctx, role, input.Authorities)
}

// DeleteRole removes a role unless users still hold it.
func (s *RoleService) DeleteRole(ctx context.Context, roleID int64) error {
	count, err := s.store.UserCountByRole(ctx, roleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrRoleInUse
	}

	if err := s.store.DeleteRole(ctx, roleID); err != nil {
		return err
	}
	s.logger.WithField("role_id", roleID).Info("role deleted")
	return nil
}

// GetRoleAuthorities returns the ids of every authority granted to the role.
func (s *RoleService) GetRoleAuthorities(ctx context.Context, roleID int64) ([]int64, error) {
	return s.resolver.AuthorityIDsForRole(ctx, roleID)
}
