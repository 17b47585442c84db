package rbac

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Resolver reads the user→role→authority relation and computes effective
// permission sets. It only ever reads; mutation of the graph belongs to the
// management stores.
type Resolver struct {
	db *sql.DB
}

// NewResolver creates a resolver on the given database handle.
func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// ResolveAuthorities returns the distinct authority codes reachable through
// every role assigned to the user, sorted for deterministic output. A user
// with no roles or no authorities resolves to an empty set.
func (r *Resolver) ResolveAuthorities(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT DISTINCT a.code
		FROM authority a
		JOIN role_auth_rel ra ON ra.auth_id = a.id
		JOIN user_role_rel ur ON ur.role_id = ra.role_id
		WHERE ur.user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve authorities: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan authority code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to resolve authorities: %w", err)
	}

	sort.Strings(codes)
	return codes, nil
}

// RoleIDsForUser returns the ids of every role assigned to the user.
func (r *Resolver) RoleIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT role_id FROM user_role_rel WHERE user_id = $1 ORDER BY role_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AuthorityIDsForRole returns the ids of every authority granted to the
// role, used by the role-edit screen to preselect tree nodes.
func (r *Resolver) AuthorityIDsForRole(ctx context.Context, roleID int64) ([]int64, error) {
	query := `SELECT auth_id FROM role_auth_rel WHERE role_id = $1 ORDER BY auth_id`

	rows, err := r.db.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list authority ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan authority id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
