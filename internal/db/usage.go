package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// chooseSource picks the allowance to draw from: quota before credits
func chooseSource(quota, credits int) (AllowanceSource, error) {
	switch {
	case quota > 0:
		return SourceQuota, nil
	case credits > 0:
		return SourceCredits, nil
	default:
		return "", ErrNoAllowance
	}
}

// ConsumeTailoring takes one unit of allowance for userID, drawing on the
// period quota first and on credits only once the quota is spent. The read
// and decrement run in one transaction with the row locked.
func (db *DB) ConsumeTailoring(ctx context.Context, userID string) (AllowanceSource, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var quota, credits int
	err = tx.QueryRow(ctx,
		`SELECT quota_remaining, credits FROM usage_allowances WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&quota, &credits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoAllowance
		}
		return "", fmt.Errorf("failed to read allowance: %w", err)
	}

	source, err := chooseSource(quota, credits)
	if err != nil {
		return "", err
	}

	query := `UPDATE usage_allowances SET quota_remaining = quota_remaining - 1, updated_at = NOW() WHERE user_id = $1`
	if source == SourceCredits {
		query = `UPDATE usage_allowances SET credits = credits - 1, updated_at = NOW() WHERE user_id = $1`
	}
	if _, err = tx.Exec(ctx, query, userID); err != nil {
		return "", fmt.Errorf("failed to consume %s: %w", source, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return source, nil
}

// RefundTailoring returns one unit to the allowance that paid for a
// request that produced nothing
func (db *DB) RefundTailoring(ctx context.Context, userID string, source AllowanceSource) error {
	query := `UPDATE usage_allowances SET quota_remaining = quota_remaining + 1, updated_at = NOW() WHERE user_id = $1`
	if source == SourceCredits {
		query = `UPDATE usage_allowances SET credits = credits + 1, updated_at = NOW() WHERE user_id = $1`
	}
	tag, err := db.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to refund %s: %w", source, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoAllowance
	}
	return nil
}

// GrantAllowance sets a user's quota and credits
func (db *DB) GrantAllowance(ctx context.Context, userID string, quota, credits int) error {
	if quota < 0 || credits < 0 {
		return fmt.Errorf("allowance must be non-negative, got quota=%d credits=%d", quota, credits)
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO usage_allowances (user_id, quota_remaining, credits)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET quota_remaining = $2, credits = $3, updated_at = NOW()`,
		userID, quota, credits,
	)
	if err != nil {
		return fmt.Errorf("failed to grant allowance: %w", err)
	}
	return nil
}

// GetAllowance loads a user's allowance. A missing user returns nil, nil.
func (db *DB) GetAllowance(ctx context.Context, userID string) (*Allowance, error) {
	var a Allowance
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, quota_remaining, credits, updated_at FROM usage_allowances WHERE user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.QuotaRemaining, &a.Credits, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}
	return &a, nil
}
