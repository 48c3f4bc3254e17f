package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/mkrylov/accountd/internal/model"
	"github.com/mkrylov/accountd/internal/pkg/dbutil"
	appErr "github.com/mkrylov/accountd/internal/pkg/errors"
)

type PasswordResetRepo struct {
	db *sql.DB
}

func NewPasswordResetRepo(db *sql.DB) *PasswordResetRepo {
	return &PasswordResetRepo{db: db}
}

// Replace stores the reset request for the email, superseding any earlier
// one. At most one live request exists per email.
func (r *PasswordResetRepo) Replace(ctx context.Context, reset *model.PasswordReset) error {
	sqlStr := "INSERT INTO password_resets (email, token_hash, ctime) VALUES (?, ?, ?) " +
		"ON CONFLICT (email) DO UPDATE SET token_hash = ?, ctime = ?"
	args := []interface{}{reset.Email, reset.TokenHash, reset.Ctime, reset.TokenHash, reset.Ctime}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *PasswordResetRepo) GetByEmail(ctx context.Context, email string) (*model.PasswordReset, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("password_resets", where, []string{"email", "token_hash", "ctime"})
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
	var reset model.PasswordReset
	if err := rows.Scan(&reset.Email, &reset.TokenHash, &reset.Ctime); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *PasswordResetRepo) DeleteByEmail(ctx context.Context, email string) error {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildDelete("password_resets", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// DeleteCreatedBefore purges requests older than the cutoff. Used by the
// periodic cleanup job.
func (r *PasswordResetRepo) DeleteCreatedBefore(ctx context.Context, cutoff int64) (int64, error) {
	where := map[string]interface{}{"ctime <": cutoff}
	sqlStr, args, err := builder.BuildDelete("password_resets", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
