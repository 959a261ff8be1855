package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrCredentialNotFound indicates no stored credential exists for the
// requested user and account pair.
var ErrCredentialNotFound = errors.New("credential not found")

// GetCredential returns the stored credential for a user and account.
func (s *Store) GetCredential(ctx context.Context, userID int64, accountID string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, account_id, access_token, refresh_token, scope, expiry, account_label
		FROM credentials
		WHERE user_id = ? AND account_id = ?`, userID, accountID)

	cred, err := scanCredential(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d account %q", ErrCredentialNotFound, userID, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return cred, nil
}

// PutCredential inserts or replaces the credential for its user and account.
func (s *Store) PutCredential(ctx context.Context, cred *Credential) error {
	if cred == nil {
		return errors.New("credential is nil")
	}
	if cred.AccountID == "" {
		return errors.New("credential account id is empty")
	}

	var expiry any
	if !cred.Expiry.IsZero() {
		expiry = cred.Expiry.UTC().Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, account_id, access_token, refresh_token, scope, expiry, account_label, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, account_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			scope = excluded.scope,
			expiry = excluded.expiry,
			account_label = excluded.account_label,
			updated_at = excluded.updated_at`,
		cred.UserID,
		cred.AccountID,
		cred.AccessToken,
		nullableString(cred.RefreshToken),
		nullableString(joinScope(cred.Scope)),
		expiry,
		nullableString(cred.AccountLabel),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put credential: %w", err)
	}
	return nil
}

// DeleteCredential removes the credential for a user and account. It reports
// whether a row was actually removed.
func (s *Store) DeleteCredential(ctx context.Context, userID int64, accountID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM credentials WHERE user_id = ? AND account_id = ?", userID, accountID)
	if err != nil {
		return false, fmt.Errorf("delete credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete credential rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListAccounts returns the account ids with stored credentials for a user.
func (s *Store) ListAccounts(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT account_id FROM credentials WHERE user_id = ? ORDER BY account_id", userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		accounts = append(accounts, accountID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*Credential, error) {
	var (
		cred         Credential
		refreshToken sql.NullString
		scope        sql.NullString
		expiry       sql.NullString
		accountLabel sql.NullString
	)
	err := row.Scan(&cred.UserID, &cred.AccountID, &cred.AccessToken, &refreshToken, &scope, &expiry, &accountLabel)
	if err != nil {
		return nil, err
	}

	cred.RefreshToken = refreshToken.String
	cred.Scope = splitScope(scope.String)
	cred.AccountLabel = accountLabel.String
	if expiry.Valid && expiry.String != "" {
		parsed, parseErr := time.Parse(time.RFC3339Nano, expiry.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse credential expiry: %w", parseErr)
		}
		cred.Expiry = parsed
	}
	return &cred, nil
}
