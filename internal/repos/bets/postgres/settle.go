package bets

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/bets"
)

// MarkSettled persists the one-shot settlement fields. Everything else on a
// bet row is immutable.
func (r *betsRepo) MarkSettled(tx *sql.Tx, b *betting.Bet) error {
	res, err := tx.Exec(`
		UPDATE bets
		SET settled = $5,
		    result = $6
		WHERE event_id = $1 AND market_id = $2 AND bet_id = $3 AND bettor = $4
	`,
		int64(b.EventID), int64(b.MarketID), int64(b.BetID), string(b.Bettor),
		b.Settled, string(b.Result),
	)
	if err != nil {
		return fmt.Errorf("mark settled: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return bets.ErrNotFound
	}

	return nil
}

// SumPendingPayouts totals the expected payouts of unsettled bets on one
// outcome of a market. Used by the strict-collateral mode to bound the
// outcome's aggregate liability.
func (r *betsRepo) SumPendingPayouts(tx *sql.Tx, key betting.MarketKey, selection betting.Outcome) (int64, error) {
	var total int64

	err := tx.QueryRow(`
		SELECT COALESCE(SUM(expected_payout), 0)
		FROM bets
		WHERE event_id = $1 AND market_id = $2 AND authority = $3
		  AND selection = $4
		  AND settled = FALSE
	`, int64(key.EventID), int64(key.MarketID), string(key.Authority), int16(selection)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum pending payouts: %w", err)
	}

	return total, nil
}
