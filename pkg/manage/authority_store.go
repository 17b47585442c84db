package manage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/proximahq/proxima/pkg/rbac"
)

// AuthorityStore persists authority rows.
type AuthorityStore struct {
	db *sql.DB
}

// NewAuthorityStore creates a new authority store
func NewAuthorityStore(db *sql.DB) *AuthorityStore {
	return &AuthorityStore{db: db}
}

const authorityColumns = `id, name, parent_id, sort, code, remark, created, updated`

func scanAuthority(row interface{ Scan(...any) error }) (*rbac.Authority, error) {
	var a rbac.Authority
	var parentID sql.NullInt64
	var remark sql.NullString
	var updated sql.NullInt64

	err := row.Scan(&a.ID, &a.Name, &parentID, &a.Sort, &a.Code, &remark, &a.Created, &updated)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		id := parentID.Int64
		a.ParentID = &id
	}
	if remark.Valid {
		a.Remark = remark.String
	}
	if updated.Valid {
		ts := updated.Int64
		a.Updated = &ts
	}
	return &a, nil
}

// ListAuthorities returns every authority ordered by sort, which is the
// order the tree builder expects children to arrive in.
func (s *AuthorityStore) ListAuthorities(ctx context.Context) ([]rbac.Authority, error) {
	query := `SELECT ` + authorityColumns + ` FROM authority ORDER BY sort ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list authorities: %w", err)
	}
	defer rows.Close()

	var authorities []rbac.Authority
	for rows.Next() {
		a, err := scanAuthority(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan authority: %w", err)
		}
		authorities = append(authorities, *a)
	}

	return authorities, rows.Err()
}

// GetAuthority retrieves an authority by id.
func (s *AuthorityStore) GetAuthority(ctx context.Context, authorityID int64) (*rbac.Authority, error) {
	query := `SELECT ` + authorityColumns + ` FROM authority WHERE id = $1`

	a, err := scanAuthority(s.db.QueryRowContext(ctx, query, authorityID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authority: %w", err)
	}
	return a, nil
}

// CreateAuthority inserts a new authority row.
func (s *AuthorityStore) CreateAuthority(ctx context.Context, authority *rbac.Authority) error {
	query := `
		INSERT INTO authority (name, parent_id, sort, code, remark, created)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	authority.Created = time.Now().Unix()
	err := s.db.QueryRowContext(ctx, query,
		authority.Name,
		authority.ParentID,
		authority.Sort,
		authority.Code,
		authority.Remark,
		authority.Created,
	).Scan(&authority.ID)
	if err != nil {
		return fmt.Errorf("failed to create authority: %w", err)
	}
	return nil
}

// UpdateAuthority rewrites an authority row.
func (s *AuthorityStore) UpdateAuthority(ctx context.Context, authority *rbac.Authority) error {
	query := `
		UPDATE authority
		SET name = $1, parent_id = $2, sort = $3, code = $4, remark = $5, updated = $6
		WHERE id = $7
	`

	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx, query,
		authority.Name,
		authority.ParentID,
		authority.Sort,
		authority.Code,
		authority.Remark,
		now,
		authority.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authority: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	authority.Updated = &now
	return nil
}

// DeleteAuthority removes an authority row.
func (s *AuthorityStore) DeleteAuthority(ctx context.Context, authorityID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM authority WHERE id = $1`, authorityID); err != nil {
		return fmt.Errorf("failed to delete authority: %w", err)
	}
	return nil
}

// RoleCountByAuthority returns how many roles still grant the authority.
func (s *AuthorityStore) RoleCountByAuthority(ctx context.Context, authorityID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(role_id) FROM role_auth_rel WHERE auth_id = $1`, authorityID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count authority roles: %w", err)
	}
	return count, nil
}
