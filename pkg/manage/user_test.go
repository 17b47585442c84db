package manage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proximahq/proxima/pkg/auth"
	"github.com/proximahq/proxima/pkg/observability"
)

func testLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "nickname", "email", "mobile", "gender",
		"avatar", "password", "status", "remark", "created", "updated",
	})
}

func TestUserServiceGetUserList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(23)))
	mock.ExpectQuery(`SELECT (.+) FROM "user" ORDER BY id ASC`).
		WithArgs(10, 10).
		WillReturnRows(userRows().
			AddRow(int64(11), "alice", "Alice", "alice@example.com", "", 0, nil, "digest", 0, "", int64(1700000000), nil).
			AddRow(int64(12), "bob", "Bob", "bob@example.com", "", 0, "a.png", "digest", 1, "", int64(1700000001), int64(1700000002)))

	svc := NewUserService(NewUserStore(db), auth.NewPasswordHasher(), testLogger())

	page, err := svc.GetUserList(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(23), page.Total)
	assert.Equal(t, 2, page.Current)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, int64(3), page.Pages)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "alice", page.Records[0].Username)
	assert.Equal(t, "a.png", page.Records[1].Avatar)
	require.NotNil(t, page.Records[1].Updated)
	assert.Equal(t, int64(1700000002), *page.Records[1].Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceAddUserConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM "user" WHERE username = \$1 OR email = \$2`).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(userRows().
			AddRow(int64(5), "alice", "", "alice@example.com", "", 0, nil, "digest", 0, "", int64(1700000000), nil))

	svc := NewUserService(NewUserStore(db), auth.NewPasswordHasher(), testLogger())

	_, err = svc.AddUser(context.Background(), CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret",
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username already exists, email already exists", conflict.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceAddUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM "user" WHERE username = \$1 OR email = \$2`).
		WithArgs("carol", "carol@example.com").
		WillReturnRows(userRows())

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "user"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`INSERT INTO user_role_rel`).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO user_role_rel`).
		WithArgs(int64(7), int64(3)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	svc := NewUserService(NewUserStore(db), auth.NewPasswordHasher(), testLogger())

	user, err := svc.AddUser(context.Background(), CreateUserInput{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "secret",
		Roles:    []int64{2, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, StatusEnabled, user.Status)
	assert.NotEqual(t, "secret", user.PasswordDigest)
	assert.True(t, auth.NewPasswordHasher().Verify("secret", user.PasswordDigest))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceUpdateUserExcludesSelfFromUniqueness(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Only the user being updated matches, so no conflict.
	mock.ExpectQuery(`SELECT (.+) FROM "user" WHERE username = \$1 OR email = \$2`).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(userRows().
			AddRow(int64(5), "alice", "", "alice@example.com", "", 0, nil, "digest", 0, "", int64(1700000000), nil))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_role_rel WHERE user_id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_role_rel`).
		WithArgs(int64(5), int64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE "user"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewUserService(NewUserStore(db), auth.NewPasswordHasher(), testLogger())

	err = svc.UpdateUser(context.Background(), 5, UpdateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []int64{1},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserServiceDeleteUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM user_role_rel WHERE user_id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "user" WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewUserService(NewUserStore(db), auth.NewPasswordHasher(), testLogger())

	require.NoError(t, svc.DeleteUser(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreGetUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM "user" WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(userRows())

	store := NewUserStore(db)

	_, err = store.GetUser(context.Background(), 404)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStoreFindUserByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewUserStore(db)

	// Absent account returns nil, nil.
	mock.ExpectQuery(`SELECT id, username, email, password, status FROM "user"`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "status"}))

	account, err := store.FindUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, account)

	// A disabled row maps status to the Disabled flag.
	mock.ExpectQuery(`SELECT id, username, email, password, status FROM "user"`).
		WithArgs("dora@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "status"}).
			AddRow(int64(4), "dora", "dora@example.com", "digest", StatusDisabled))

	account, err = store.FindUserByEmail(context.Background(), "dora@example.com")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, account.Disabled)
	assert.Equal(t, "dora", account.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
