package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/accounts"
)

func (r *accountsRepo) Exists(tx *sql.Tx, address betting.AccountID) error {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE address = $1)
	`, string(address)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrNotFound
	}

	return nil
}
