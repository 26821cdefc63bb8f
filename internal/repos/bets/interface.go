package bets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/betledger/internal/betting"
)

var ErrNotFound = errors.New("bet not found")
var ErrAlreadyExists = errors.New("bet already exists")

// Bets stores bet records keyed (event_id, market_id, bet_id, bettor).
// Rows are immutable except for the one-shot settlement update.
type Bets interface {
	Insert(tx *sql.Tx, b *betting.Bet) error
	Get(ctx context.Context, key betting.BetKey) (*betting.Bet, error)
	LockForUpdate(tx *sql.Tx, key betting.BetKey) (*betting.Bet, error)
	MarkSettled(tx *sql.Tx, b *betting.Bet) error
	SumPendingPayouts(tx *sql.Tx, key betting.MarketKey, selection betting.Outcome) (int64, error)
}
