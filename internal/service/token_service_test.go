package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkrylov/accountd/internal/model"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
	"github.com/mkrylov/accountd/internal/pkg/timeutil"
	"github.com/mkrylov/accountd/internal/service"
	"github.com/mkrylov/accountd/internal/testutil"
)

func newTokenFixture(t *testing.T) (*service.TokenService, *testutil.MemTokenStore, *model.User) {
	t.Helper()
	users := testutil.NewMemUserStore()
	tokens := testutil.NewMemTokenStore()
	now := timeutil.NowUnix()
	user := &model.User{ID: "u1", Name: "Alice", Email: "a@x.com", Ctime: now, Mtime: now}
	require.NoError(t, users.Create(context.Background(), user))
	return service.NewTokenService(tokens, users), tokens, user
}

func TestIssueAndAuthenticate(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	plaintext, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	id, secret, found := strings.Cut(plaintext, "|")
	require.True(t, found)
	require.NotEmpty(t, id)
	require.Len(t, secret, 40)

	got, err := svc.Authenticate(ctx, plaintext)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestAuthenticateRejectsTamperedToken(t *testing.T) {
	svc, _, user := newTokenFixture(t)
	ctx := context.Background()

	plaintext, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	id, _, _ := strings.Cut(plaintext, "|")

	for _, bad := range []string{
		"",
		"no-separator",
		id + "|",
		id + "|" + strings.Repeat("0", 40),
		"wrong-id|" + strings.Repeat("0", 40),
	} {
		_, err := svc.Authenticate(ctx, bad)
		require.ErrorIs(t, err, appErr.ErrUnauthorized, "token %q", bad)
	}
}

func TestAuthenticateTouchesLastUsed(t *testing.T) {
	svc, tokens, user := newTokenFixture(t)
	ctx := context.Background()

	plaintext, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	id, _, _ := strings.Cut(plaintext, "|")

	stored, err := tokens.GetByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, stored.LastUsedAt)

	_, err = svc.Authenticate(ctx, plaintext)
	require.NoError(t, err)
	stored, err = tokens.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.LastUsedAt)
}

func TestRevokeAllDeletesEveryToken(t *testing.T) {
	svc, tokens, user := newTokenFixture(t)
	ctx := context.Background()

	first, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 2, tokens.CountByUser(user.ID))

	require.NoError(t, svc.RevokeAll(ctx, user.ID))
	require.Equal(t, 0, tokens.CountByUser(user.ID))
	for _, plaintext := range []string{first, second} {
		_, err := svc.Authenticate(ctx, plaintext)
		require.ErrorIs(t, err, appErr.ErrUnauthorized)
	}
}
