package bets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/bets"
)

func (r *betsRepo) Insert(tx *sql.Tx, b *betting.Bet) error {
	_, err := tx.Exec(`
		INSERT INTO bets (
			event_id, market_id, bet_id, bettor, authority,
			selection, stake, odds, expected_payout, settled, result
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		int64(b.EventID), int64(b.MarketID), int64(b.BetID),
		string(b.Bettor), string(b.Authority),
		int16(b.Selection), int64(b.Stake), int64(b.Odds),
		b.ExpectedPayout, b.Settled, string(b.Result),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return bets.ErrAlreadyExists
		}

		return fmt.Errorf("insert bet: %w", err)
	}

	return nil
}
