package manage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RoleStore persists role rows and their authority relations.
type RoleStore struct {
	db *sql.DB
}

// NewRoleStore creates a new role store
func NewRoleStore(db *sql.DB) *RoleStore {
	return &RoleStore{db: db}
}

const roleColumns = `id, name, status, remark, created, updated`

func scanRole(row interface{ Scan(...any) error }) (*Role, error) {
	var r Role
	var updated sql.NullInt64

	err := row.Scan(&r.ID, &r.Name, &r.Status, &r.Remark, &r.Created, &updated)
	if err != nil {
		return nil, err
	}
	if updated.Valid {
		ts := updated.Int64
		r.Updated = &ts
	}
	return &r, nil
}

// CountRoles returns the total number of role rows.
func (s *RoleStore) CountRoles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM role`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return count, nil
}

// ListRoles returns one page of roles ordered by id.
func (s *RoleStore) ListRoles(ctx context.Context, offset, limit int) ([]Role, error) {
	query := `SELECT ` + roleColumns + ` FROM role ORDER BY id ASC LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, *r)
	}

	return roles, rows.Err()
}

// GetRole retrieves a role by id.
func (s *RoleStore) GetRole(ctx context.Context, roleID int64) (*Role, error) {
	query := `SELECT ` + roleColumns + ` FROM role WHERE id = $1`

	r, err := scanRole(s.db.QueryRowContext(ctx, query, roleID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return r, nil
}

// CountByName returns how many roles carry the given name.
func (s *RoleStore) CountByName(ctx context.Context, name string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM role WHERE name = $1`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return count, nil
}

// UserCountByRole returns how many users still hold the role.
func (s *RoleStore) UserCountByRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(user_id) FROM user_role_rel WHERE role_id = $1`, roleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count role users: %w", err)
	}
	return count, nil
}

// CreateRole inserts the role and its authority relations in one transaction.
func (s *RoleStore) CreateRole(ctx context.Context, role *Role, authorityIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO role (name, status, remark, created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	role.Created = time.Now().Unix()
	err = tx.QueryRowContext(ctx, query, role.Name, role.Status, role.Remark, role.Created).Scan(&role.ID)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if err := insertRoleAuthorities(ctx, tx, role.ID, authorityIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateRole rewrites the role row. A non-nil authorityIDs replaces the
// authority relations; nil leaves them untouched.
func (s *RoleStore) UpdateRole(ctx context.Context, role *Role, authorityIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if authorityIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_auth_rel WHERE role_id = $1`, role.ID); err != nil {
			return fmt.Errorf("failed to clear role authorities: %w", err)
		}
		if err := insertRoleAuthorities(ctx, tx, role.ID, authorityIDs); err != nil {
			return err
		}
	}

	query := `
		UPDATE role
		SET name = $1, status = $2, remark = $3, updated = $4
		WHERE id = $5
	`

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, query, role.Name, role.Status, role.Remark, now, role.ID)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	role.Updated = &now
	return tx.Commit()
}

// DeleteRole removes the role, its authority relations and its user relations.
func (s *RoleStore) DeleteRole(ctx context.Context, roleID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_auth_rel WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to clear role authorities: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_role_rel WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to clear role users: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM role WHERE id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	return tx.Commit()
}

func insertRoleAuthorities(ctx context.Context, tx *sql.Tx, roleID int64, authorityIDs []int64) error {
	for _, authID := range authorityIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO role_auth_rel (role_id, auth_id) VALUES ($1, $2)`,
			roleID, authID,
		)
		if err != nil {
			return fmt.Errorf("failed to grant authority %d: %w", authID, err)
		}
	}
	return nil
}
