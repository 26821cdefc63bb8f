package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/betledger/internal/betting"
)

var ErrNotFound = errors.New("account not found")
var ErrInsufficientFunds = errors.New("insufficient funds")

// Accounts is the value-transfer collaborator: bettor wallet balances in
// base units. Escrow lives on the market row, not here.
type Accounts interface {
	Exists(tx *sql.Tx, address betting.AccountID) error
	GetBalance(ctx context.Context, address betting.AccountID) (int64, error)
	LockAndGetBalance(tx *sql.Tx, address betting.AccountID) (int64, error)
	Credit(tx *sql.Tx, address betting.AccountID, amount int64) error
	Debit(tx *sql.Tx, address betting.AccountID, amount int64) error
}
