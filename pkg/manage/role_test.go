package manage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proximahq/proxima/pkg/rbac"
)

func roleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "status", "remark", "created", "updated"})
}

func TestRoleServiceGetRoleList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT (.+) FROM role ORDER BY id ASC`).
		WithArgs(10, 0).
		WillReturnRows(roleRows().
			AddRow(int64(1), "admin", 0, "", int64(1700000000), nil).
			AddRow(int64(2), "editor", 0, "content team", int64(1700000000), nil))

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	page, err := svc.GetRoleList(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.Pages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "editor", page.Records[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceAddRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role WHERE name = \$1`).
		WithArgs("editor").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO role`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(`INSERT INTO role_auth_rel`).
		WithArgs(int64(3), int64(10)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	role, err := svc.AddRole(context.Background(), CreateRoleInput{
		Name:        "editor",
		Authorities: []int64{10},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceAddRoleDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role WHERE name = \$1`).
		WithArgs("editor").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	_, err = svc.AddRole(context.Background(), CreateRoleInput{Name: "editor"})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "role name already exists", conflict.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceUpdateRoleKeepingNameSkipsUniquenessCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM role WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(roleRows().AddRow(int64(3), "editor", 0, "", int64(1700000000), nil))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM role_auth_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO role_auth_rel`).
		WithArgs(int64(3), int64(11)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE role`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	err = svc.UpdateRole(context.Background(), 3, UpdateRoleInput{
		Name:        "editor",
		Authorities: []int64{11},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceUpdateRoleRenameConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM role WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(roleRows().AddRow(int64(3), "editor", 0, "", int64(1700000000), nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM role WHERE name = \$1`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	err = svc.UpdateRole(context.Background(), 3, UpdateRoleInput{Name: "admin"})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceDeleteRoleInUse(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(user_id\) FROM user_role_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	err = svc.DeleteRole(context.Background(), 3)
	assert.ErrorIs(t, err, ErrRoleInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceDeleteRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(user_id\) FROM user_role_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM role_auth_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM user_role_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM role WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	require.NoError(t, svc.DeleteRole(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleServiceGetRoleAuthorities(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT auth_id FROM role_auth_rel WHERE role_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"auth_id"}).AddRow(int64(10)).AddRow(int64(11)))

	svc := NewRoleService(NewRoleStore(db), rbac.NewResolver(db), testLogger())

	ids, err := svc.GetRoleAuthorities(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
