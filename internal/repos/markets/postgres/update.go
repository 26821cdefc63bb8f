package markets

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/markets"
)

// Update persists the mutable market fields. Identity, names, outcome count
// and line are immutable after creation and never rewritten.
func (r *marketsRepo) Update(tx *sql.Tx, m *betting.Market) error {
	var oddsThree sql.NullInt64
	if m.Outcomes == 3 {
		oddsThree = sql.NullInt64{Int64: int64(m.Odds[2]), Valid: true}
	}

	res, err := tx.Exec(`
		UPDATE markets
		SET odds_one = $4,
		    odds_two = $5,
		    odds_three = $6,
		    status = $7,
		    winner = $8,
		    last_bet_id = $9,
		    max_win = $10,
		    escrow = $11
		WHERE event_id = $1 AND market_id = $2 AND authority = $3
	`,
		int64(m.EventID), int64(m.MarketID), string(m.Authority),
		int64(m.Odds[0]), int64(m.Odds[1]), oddsThree,
		int16(m.Status), int16(m.Winner), int64(m.LastBetID), m.MaxWin, m.Escrow,
	)
	if err != nil {
		return fmt.Errorf("update market: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return markets.ErrNotFound
	}

	return nil
}
