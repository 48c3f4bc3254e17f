package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/mkrylov/accountd/internal/model"
	"github.com/mkrylov/accountd/internal/pkg/dbutil"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
)

type AccessTokenRepo struct {
	db *sql.DB
}

func NewAccessTokenRepo(db *sql.DB) *AccessTokenRepo {
	return &AccessTokenRepo{db: db}
}

func (r *AccessTokenRepo) Create(ctx context.Context, token *model.AccessToken) error {
	data := map[string]interface{}{
		"id":           token.ID,
		"user_id":      token.UserID,
		"name":         token.Name,
		"token_hash":   token.TokenHash,
		"last_used_at": token.LastUsedAt,
		"ctime":        token.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("access_tokens", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *AccessTokenRepo) GetByID(ctx context.Context, tokenID string) (*model.AccessToken, error) {
	where := map[string]interface{}{"id": tokenID}
	sqlStr, args, err := builder.BuildSelect("access_tokens", where, []string{"id", "user_id", "name", "token_hash", "last_used_at", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var token model.AccessToken
	if err := rows.Scan(&token.ID, &token.UserID, &token.Name, &token.TokenHash, &token.LastUsedAt, &token.Ctime); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *AccessTokenRepo) Touch(ctx context.Context, tokenID string, lastUsedAt int64) error {
	where := map[string]interface{}{"id": tokenID}
	update := map[string]interface{}{"last_used_at": lastUsedAt}
	sqlStr, args, err := builder.BuildUpdate("access_tokens", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// DeleteByUser removes every token of the user. Logout is full session
// revocation, not single-device.
func (r *AccessTokenRepo) DeleteByUser(ctx context.Context, userID string) error {
	where := map[string]interface{}{"user_id": userID}
	sqlStr, args, err := builder.BuildDelete("access_tokens", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AccessTokenRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	where := map[string]interface{}{"user_id": userID}
	sqlStr, args, err := builder.BuildSelect("access_tokens", where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
