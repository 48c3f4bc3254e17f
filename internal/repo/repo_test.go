package repo

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkrylov/accountd/internal/config"
	"github.com/mkrylov/accountd/internal/db"
	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
	"github.com/mkrylov/accountd/internal/pkg/timeutil"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "accountd",
		Password: "accountd_pass",
		DBName:   "accountd_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	require.NoError(t, db.ApplyMigrations(conn))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func seedUser(t *testing.T, users *UserRepo) *model.User {
	t.Helper()
	now := timeutil.NowUnix()
	user := &model.User{
		ID:            randomHex(16),
		Name:          "Alice",
		Email:         randomHex(8) + "@example.com",
		PasswordHash:  "hash",
		RememberToken: randomHex(30),
		Ctime:         now,
		Mtime:         now,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestUserRepoCreateAndGet(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepo(conn)
	ctx := context.Background()

	user := seedUser(t, users)

	byEmail, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Nil(t, byEmail.EmailVerifiedAt)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, byID.Email)

	_, err = users.GetByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestUserRepoEmailUnique(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepo(conn)
	ctx := context.Background()

	user := seedUser(t, users)
	dup := *user
	dup.ID = randomHex(16)
	err := users.Create(ctx, &dup)
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestUserRepoMarkVerifiedOnce(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepo(conn)
	ctx := context.Background()

	user := seedUser(t, users)
	now := timeutil.NowUnix()

	ok, err := users.MarkVerified(ctx, user.ID, now, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = users.MarkVerified(ctx, user.ID, now+10, now+10)
	require.NoError(t, err)
	require.False(t, ok, "verification is monotonic")

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailVerifiedAt)
	require.Equal(t, now, *got.EmailVerifiedAt)

	ok, err = users.MarkVerified(ctx, "missing", now, now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserRepoUpdatePassword(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepo(conn)
	ctx := context.Background()

	user := seedUser(t, users)
	newToken := randomHex(30)
	require.NoError(t, users.UpdatePassword(ctx, user.ID, "newhash", newToken, timeutil.NowUnix()))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "newhash", got.PasswordHash)
	require.Equal(t, newToken, got.RememberToken)

	err = users.UpdatePassword(ctx, "missing", "x", "y", timeutil.NowUnix())
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestAccessTokenRepoLifecycle(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepo(conn)
	tokens := NewAccessTokenRepo(conn)
	ctx := context.Background()

	user := seedUser(t, users)
	now := timeutil.NowUnix()
	first := &model.AccessToken{ID: randomHex(16), UserID: user.ID, Name: "auth-token", TokenHash: randomHex(32), Ctime: now}
	second := &model.AccessToken{ID: randomHex(16), UserID: user.ID, Name: "auth-token", TokenHash: randomHex(32), Ctime: now}
	require.NoError(t, tokens.Create(ctx, first))
	require.NoError(t, tokens.Create(ctx, second))

	got, err := tokens.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.UserID)
	require.Nil(t, got.LastUsedAt)

	require.NoError(t, tokens.Touch(ctx, first.ID, now+5))
	got, err = tokens.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsedAt)

	count, err := tokens.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	require.NoError(t, tokens.DeleteByUser(ctx, user.ID))
	count, err = tokens.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestPasswordResetRepoReplaceAndPurge(t *testing.T) {
	conn := openTestDB(t)
	resets := NewPasswordResetRepo(conn)
	ctx := context.Background()

	email := randomHex(8) + "@example.com"
	now := timeutil.NowUnix()
	require.NoError(t, resets.Replace(ctx, &model.PasswordReset{Email: email, TokenHash: "h1", Ctime: now - 100}))
	require.NoError(t, resets.Replace(ctx, &model.PasswordReset{Email: email, TokenHash: "h2", Ctime: now}))

	got, err := resets.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.Equal(t, "h2", got.TokenHash, "new request supersedes the old one")

	deleted, err := resets.DeleteCreatedBefore(ctx, now-50)
	require.NoError(t, err)
	require.Equal(t, int64(0), deleted)

	require.NoError(t, resets.DeleteByEmail(ctx, email))
	_, err = resets.GetByEmail(ctx, email)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
