package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/mkrylov/accountd/internal/model"
	"github.com/mkrylov/accountd/internal/pkg/dbutil"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
)

var userColumns = []string{"id", "name", "email", "password_hash", "remember_token", "email_verified_at", "ctime", "mtime"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"password_hash":     user.PasswordHash,
		"remember_token":    user.RememberToken,
		"email_verified_at": user.EmailVerifiedAt,
		"ctime":             user.Ctime,
		"mtime":             user.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
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

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepo) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return r.getOne(ctx, map[string]interface{}{"id": userID})
}

// MarkVerified flips email_verified_at from null exactly once. The returned
// bool is false when the user does not exist or was already verified; the
// caller decides which of the two it was.
func (r *UserRepo) MarkVerified(ctx context.Context, userID string, verifiedAt, mtime int64) (bool, error) {
	sqlStr := "UPDATE users SET email_verified_at = ?, mtime = ? WHERE id = ? AND email_verified_at IS NULL"
	args := []interface{}{verifiedAt, mtime, userID}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash, rememberToken string, mtime int64) error {
	where := map[string]interface{}{"id": userID}
	update := map[string]interface{}{
		"password_hash":  passwordHash,
		"remember_token": rememberToken,
		"mtime":          mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("users", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *UserRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.User, error) {
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
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
	var user model.User
	if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RememberToken, &user.EmailVerifiedAt, &user.Ctime, &user.Mtime); err != nil {
		return nil, err
	}
	return &user, nil
}
