package repository

import (
	"context"
	"fmt"
	"time"
)

// Provider ids.
const (
	ProviderCredential = "credential"
	ProviderGoogle     = "google"
)

// Account links a user to a sign-in provider. PasswordHash is set only for
// the credential provider.
type Account struct {
	ID           string
	UserID       string
	ProviderID   string
	AccountID    string
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const accountColumns = `id, user_id, provider_id, account_id, password_hash, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.UserID, &a.ProviderID, &a.AccountID, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *Repository) CreateAccount(ctx context.Context, a Account) (Account, error) {
	query := `INSERT INTO accounts (id, user_id, provider_id, account_id, password_hash)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + accountColumns

	saved, err := scanAccount(r.db.QueryRow(ctx, query, a.ID, a.UserID, a.ProviderID, a.AccountID, a.PasswordHash))
	if err != nil {
		return Account{}, fmt.Errorf("create account: %w", mapErr(err))
	}
	return saved, nil
}

// GetAccount returns the user's account for providerID.
func (r *Repository) GetAccount(ctx context.Context, userID, providerID string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND provider_id = $2`
	a, err := scanAccount(r.db.QueryRow(ctx, query, userID, providerID))
	if err != nil {
		return Account{}, fmt.Errorf("get account: %w", mapErr(err))
	}
	return a, nil
}

// GetAccountByProvider finds the account a provider knows as accountID.
func (r *Repository) GetAccountByProvider(ctx context.Context, providerID, accountID string) (Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE provider_id = $1 AND account_id = $2`
	a, err := scanAccount(r.db.QueryRow(ctx, query, providerID, accountID))
	if err != nil {
		return Account{}, fmt.Errorf("get account by provider: %w", mapErr(err))
	}
	return a, nil
}

// UpdatePassword replaces the credential hash of userID.
func (r *Repository) UpdatePassword(ctx context.Context, userID, hash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = now()
			  WHERE user_id = $1 AND provider_id = '` + ProviderCredential + `'`
	tag, err := r.db.Exec(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update password: %w", ErrNotFound)
	}
	return nil
}
