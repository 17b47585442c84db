package manage

import (
	"context"

	"github.com/proximahq/proxima/pkg/observability"
	"github.com/proximahq/proxima/pkg/rbac"
)

// AuthorityInput carries the fields accepted when creating or updating an
// authority node.
type AuthorityInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Sort     int    `json:"sort"`
	Code     string `json:"code"`
	Remark   string `json:"remark"`
}

// AuthorityService implements authority administration on top of the store.
type AuthorityService struct {
	store  *AuthorityStore
	logger *observability.Logger
}

// NewAuthorityService creates a new authority service
func NewAuthorityService(store *AuthorityStore, logger *observability.Logger) *AuthorityService {
	return &AuthorityService{store: store, logger: logger}
}

// GetAuthorityList returns every authority ordered by sort.
func (s *AuthorityService) GetAuthorityList(ctx context.Context) ([]rbac.Authority, error) {
	return s.store.ListAuthorities(ctx)
}

// GetAuthority returns a single authority by id.
func (s *AuthorityService) GetAuthority(ctx context.Context, authorityID int64) (*rbac.Authority, error) {
	return s.store.GetAuthority(ctx, authorityID)
}

// GetAuthorityTree loads every authority and assembles the display forest.
// Rows arrive pre-sorted so sibling order follows the sort column.
func (s *AuthorityService) GetAuthorityTree(ctx context.Context) ([]*rbac.TreeNode, error) {
	authorities, err := s.store.ListAuthorities(ctx)
	if err != nil {
		return nil, err
	}
	return rbac.BuildTree(authorities)
}

// AddAuthority creates an authority node.
func (s *AuthorityService) AddAuthority(ctx context.Context, input AuthorityInput) (*rbac.Authority, error) {
	authority := &rbac.Authority{
		Name:     input.Name,
		ParentID: input.ParentID,
		Sort:     input.Sort,
		Code:     input.Code,
		Remark:   input.Remark,
	}
	if err := s.store.CreateAuthority(ctx, authority); err != nil {
		return nil, err
	}

	s.logger.WithField("authority_id", authority.ID).Info("authority created")
	return authority, nil
}

// UpdateAuthority rewrites an authority node.
func (s *AuthorityService) UpdateAuthority(ctx context.Context, authorityID int64, input AuthorityInput) error {
	authority := &rbac.Authority{
		ID:       authorityID,
		Name:     input.Name,
		ParentID: input.ParentID,
		Sort:     input.Sort,
		Code:     input.Code,
		Remark:   input.Remark,
	}
	return s.store.UpdateAuthority(ctx, authority)
}

// DeleteAuthority removes an authority unless roles still grant it.
func (s *AuthorityService) DeleteAuthority(ctx context.Context, authorityID int64) error {
	count, err := s.store.RoleCountByAuthority(ctx, authorityID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAuthorityInUse
	}

	if err := s.store.DeleteAuthority(ctx, authorityID); err != nil {
		return err
	}
	s.logger.WithField("authority_id", authorityID).Info("authority deleted")
	return nil
}
