// internal/repository/postgres/user_pg_test.go
package postgres

import (
	"context"
	"database/sql"
	"testing"

	"wallet-ledger/internal/domain"
	"wallet-ledger/internal/util"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAssignsID(t *testing.T) {
	repo := NewUserRepository(nil)
	q := &fakeExecutor{getFn: func(dest interface{}) error {
		*(dest.(*int64)) = 42 // RETURNING id
		return nil
	}}

	user := domain.NewUser("alina")
	require.NoError(t, repo.CreateUser(context.Background(), q, user))
	assert.Equal(t, int64(42), user.ID)
}

func TestCreateUserMapsUniqueViolationToDuplicateEntry(t *testing.T) {
	repo := NewUserRepository(nil)
	q := &fakeExecutor{getFn: func(dest interface{}) error {
		return &pq.Error{Code: "23505", Constraint: "users_username_key"}
	}}

	err := repo.CreateUser(context.Background(), q, domain.NewUser("alina"))

	assert.ErrorIs(t, err, util.ErrDuplicateEntry)
	assert.Contains(t, err.Error(), "alina")
}

func TestLockUserMissing(t *testing.T) {
	repo := NewUserRepository(nil)
	q := &fakeExecutor{getFn: func(dest interface{}) error { return sql.ErrNoRows }}

	err := repo.LockUser(context.Background(), q, 9)

	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGetUserByIDNotFound(t *testing.T) {
	repo := NewUserRepository(nil)
	q := &fakeExecutor{getFn: func(dest interface{}) error { return sql.ErrNoRows }}

	user, err := repo.GetUserByID(context.Background(), q, 9)

	assert.Nil(t, user)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	repo := NewUserRepository(nil)
	q := &fakeExecutor{getFn: func(dest interface{}) error { return sql.ErrNoRows }}

	user, err := repo.GetUserByUsername(context.Background(), q, "ghost")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
