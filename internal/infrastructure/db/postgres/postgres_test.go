package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listshare/todo-share/internal/core/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New err: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "bo%", likePrefix("bo"))
	assert.Equal(t, `a\%b\_c\\%`, likePrefix(`a%b_c\`))
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("u1", "alice", "a@example.com", "hash", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := repo.Create(context.Background(), &domain.User{
		ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "hash", CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := repo.Create(context.Background(), &domain.User{ID: "u2", Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("conn reset"))

	_, err := repo.Create(context.Background(), &domain.User{ID: "u2", Username: "alice"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserExists)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at FROM users`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
			AddRow("u1", "alice", "a@example.com", "hash", now))

	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)

	mock.ExpectQuery(`SELECT id, username, email, password_hash, created_at FROM users`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_SearchByPrefix(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT username FROM users`).
		WithArgs("bo%", "u0", 5).
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("bob").AddRow("bobby"))

	names, err := repo.SearchByPrefix(context.Background(), "bo", "u0", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "bobby"}, names)

	empty, err := repo.SearchByPrefix(context.Background(), "", "u0", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRepository_Put(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListRepository(db)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO shared_lists`).
		WithArgs("l1", `{"name":"X"}`, sql.NullString{}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO shared_lists`).
		WithArgs("l2", `{}`, sql.NullString{String: "u1", Valid: true}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO shared_lists`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &domain.SharedList{ID: "l1", Payload: domain.Payload{"name": "X"}, CreatedAt: now}))
	require.NoError(t, repo.Put(ctx, &domain.SharedList{ID: "l2", Payload: domain.Payload{}, OwnerID: "u1", CreatedAt: now}))
	assert.ErrorIs(t, repo.Put(ctx, &domain.SharedList{ID: "l1", Payload: domain.Payload{}}), domain.ErrListExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT payload, owner_id, created_at FROM shared_lists`).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "owner_id", "created_at"}).
			AddRow(`{"name":"X","tasks":[]}`, nil, now))
	mock.ExpectQuery(`SELECT payload, owner_id, created_at FROM shared_lists`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	l, err := repo.Get(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "X", l.Payload.Name())
	assert.True(t, l.Anonymous())

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestListRepository_ListRecentByOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListRepository(db)

	mock.ExpectQuery(`ORDER BY seq DESC`).
		WithArgs("u1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).
			AddRow("l2", `{"name":"Second"}`).
			AddRow("l1", `{}`))

	got, err := repo.ListRecentByOwner(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, []domain.ListSummary{
		{ID: "l2", Name: "Second"},
		{ID: "l1", Name: domain.DefaultListName},
	}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRepository_DeleteByIDAndOwner(t *testing.T) {
	db, mock := newMock(t)
	repo := NewListRepository(db)

	mock.ExpectExec(`DELETE FROM shared_lists WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("l1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteByIDAndOwner(context.Background(), "l1", "u1"))
	require.NoError(t, repo.DeleteByIDAndOwner(context.Background(), "l1", ""))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesEmbeddedFS(t *testing.T) {
	db, _ := newMock(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.Equal(t, ".", gotDir)
}
