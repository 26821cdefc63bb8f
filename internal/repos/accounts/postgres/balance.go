package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/accounts"
)

func (r *accountsRepo) GetBalance(ctx context.Context, address betting.AccountID) (int64, error) {
	var balance int64

	err := r.db.QueryRowContext(ctx, `
		SELECT balance
		FROM accounts
		WHERE address = $1
	`, string(address)).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrNotFound
		}

		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

func (r *accountsRepo) LockAndGetBalance(tx *sql.Tx, address betting.AccountID) (int64, error) {
	var balance int64

	err := tx.QueryRow(`
		SELECT balance
		FROM accounts
		WHERE address = $1
		FOR UPDATE
	`, string(address)).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, accounts.ErrNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

func (r *accountsRepo) Credit(tx *sql.Tx, address betting.AccountID, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE address = $1
	`, string(address), amount)
	if err != nil {
		return fmt.Errorf("credit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrNotFound
	}

	return nil
}

// Debit withdraws amount only when the balance covers it, so a bettor can
// never be driven negative.
func (r *accountsRepo) Debit(tx *sql.Tx, address betting.AccountID, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2
		WHERE address = $1
		  AND balance >= $2
	`, string(address), amount)
	if err != nil {
		return fmt.Errorf("debit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
