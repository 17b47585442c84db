package manage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authorityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "parent_id", "sort", "code", "remark", "created", "updated"})
}

func TestAuthorityServiceGetAuthorityTree(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM authority ORDER BY sort ASC, id ASC`).
		WillReturnRows(authorityRows().
			AddRow(int64(1), "System", nil, 1, "sys", nil, int64(1700000000), nil).
			AddRow(int64(2), "Users", int64(1), 1, "sys:user", "user menu", int64(1700000000), nil).
			AddRow(int64(3), "Roles", int64(1), 2, "sys:role", nil, int64(1700000000), nil))

	svc := NewAuthorityService(NewAuthorityStore(db), testLogger())

	forest, err := svc.GetAuthorityTree(context.Background())
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, "System", forest[0].Name)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "Users", forest[0].Children[0].Name)
	assert.Equal(t, "Roles", forest[0].Children[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorityServiceAddAuthority(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO authority`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	svc := NewAuthorityService(NewAuthorityStore(db), testLogger())

	parent := int64(1)
	authority, err := svc.AddAuthority(context.Background(), AuthorityInput{
		Name:     "Files",
		ParentID: &parent,
		Sort:     3,
		Code:     "sys:file",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), authority.ID)
	assert.NotZero(t, authority.Created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorityServiceUpdateAuthorityNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE authority`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	svc := NewAuthorityService(NewAuthorityStore(db), testLogger())

	err = svc.UpdateAuthority(context.Background(), 404, AuthorityInput{Name: "Ghost", Code: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorityServiceDeleteAuthorityInUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(role_id\) FROM role_auth_rel WHERE auth_id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	svc := NewAuthorityService(NewAuthorityStore(db), testLogger())

	err = svc.DeleteAuthority(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAuthorityInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorityServiceDeleteAuthority(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(role_id\) FROM role_auth_rel WHERE auth_id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectExec(`DELETE FROM authority WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := NewAuthorityService(NewAuthorityStore(db), testLogger())

	require.NoError(t, svc.DeleteAuthority(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
