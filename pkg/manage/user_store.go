package manage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/proximahq/proxima/pkg/auth"
)

// UserStore persists user rows and their role relations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new user store
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, nickname, email, mobile, gender, avatar, password, status, remark, created, updated`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var avatar sql.NullString
	var updated sql.NullInt64

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Nickname,
		&u.Email,
		&u.Mobile,
		&u.Gender,
		&avatar,
		&u.PasswordDigest,
		&u.Status,
		&u.Remark,
		&u.Created,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	if avatar.Valid {
		u.Avatar = avatar.String
	}
	if updated.Valid {
		ts := updated.Int64
		u.Updated = &ts
	}
	return &u, nil
}

// CountUsers returns the total number of user rows.
func (s *UserStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "user"`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// ListUsers returns one page of users ordered by id.
func (s *UserStore) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM "user"
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// GetUser retrieves a user by id.
func (s *UserStore) GetUser(ctx context.Context, userID int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindByUsernameOrEmail returns every user whose username or email matches,
// feeding the uniqueness check.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE username = $1 OR email = $2`

	rows, err := s.db.QueryContext(ctx, query, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// FindUserByEmail looks up the login account for an email address. A missing
// account returns (nil, nil) so the caller can fold absence and password
// mismatch into one failure.
func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*auth.Account, error) {
	query := `SELECT id, username, email, password, status FROM "user" WHERE email = $1`

	var account auth.Account
	var status int
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordDigest,
		&status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	account.Disabled = status == StatusDisabled
	return &account, nil
}

// CreateUser inserts the user and its role relations in one transaction.
func (s *UserStore) CreateUser(ctx context.Context, user *User, roleIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO "user" (username, nickname, email, mobile, gender, avatar, password, status, remark, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	user.Created = time.Now().Unix()
	err = tx.QueryRowContext(ctx, query,
		user.Username,
		user.Nickname,
		user.Email,
		user.Mobile,
		user.Gender,
		user.Avatar,
		user.PasswordDigest,
		user.Status,
		user.Remark,
		user.Created,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := insertUserRoles(ctx, tx, user.ID, roleIDs); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateUser rewrites the user row and replaces its role relations.
func (s *UserStore) UpdateUser(ctx context.Context, user *User, roleIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_role_rel WHERE user_id = $1`, user.ID); err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}
	if err := insertUserRoles(ctx, tx, user.ID, roleIDs); err != nil {
		return err
	}

	query := `
		UPDATE "user"
		SET username = $1, nickname = $2, email = $3, mobile = $4, gender = $5, avatar = $6, status = $7, remark = $8, updated = $9
		WHERE id = $10
	`

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx, query,
		user.Username,
		user.Nickname,
		user.Email,
		user.Mobile,
		user.Gender,
		user.Avatar,
		user.Status,
		user.Remark,
		now,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	user.Updated = &now
	return tx.Commit()
}

// DeleteUser removes the user and its role relations.
func (s *UserStore) DeleteUser(ctx context.Context, userID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_role_rel WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user roles: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return tx.Commit()
}

func insertUserRoles(ctx context.Context, tx *sql.Tx, userID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_role_rel (user_id, role_id) VALUES ($1, $2)`,
			userID, roleID,
		)
		if err != nil {
			return fmt.Errorf("failed to assign role %d: %w", roleID, err)
		}
	}
	return nil
}
