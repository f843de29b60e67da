package repository

import (
	"context"
	"fmt"
	"time"
)

// Verification is a single-use token record, e.g. a password reset.
type Verification struct {
	ID         string
	Identifier string
	Value      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

func (r *Repository) CreateVerification(ctx context.Context, v Verification) error {
	query := `INSERT INTO verifications (id, identifier, value, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, v.ID, v.Identifier, v.Value, v.ExpiresAt); err != nil {
		return fmt.Errorf("create verification: %w", mapErr(err))
	}
	return nil
}

// ConsumeVerification deletes the record holding value and returns it.
// Expired records are deleted too but reported as ErrNotFound.
func (r *Repository) ConsumeVerification(ctx context.Context, value string) (Verification, error) {
	var v Verification
	err := r.db.QueryRow(ctx,
		`DELETE FROM verifications WHERE value = $1 RETURNING id, identifier, value, expires_at, created_at`, value,
	).Scan(&v.ID, &v.Identifier, &v.Value, &v.ExpiresAt, &v.CreatedAt)
	if err != nil {
		return Verification{}, fmt.Errorf("consume verification: %w", mapErr(err))
	}
	if !time.Now().Before(v.ExpiresAt) {
		return Verification{}, fmt.Errorf("consume verification: %w", ErrNotFound)
	}
	return v, nil
}

// DeleteVerificationsFor removes every pending record for identifier.
func (r *Repository) DeleteVerificationsFor(ctx context.Context, identifier string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE identifier = $1`, identifier); err != nil {
		return fmt.Errorf("delete verifications: %w", err)
	}
	return nil
}

func (r *Repository) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM verifications WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired verifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
