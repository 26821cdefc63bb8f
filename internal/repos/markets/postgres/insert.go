package markets

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/markets"
)

func (r *marketsRepo) Insert(tx *sql.Tx, m *betting.Market) error {
	var line sql.NullInt32
	if m.Line != nil {
		line = sql.NullInt32{Int32: int32(*m.Line), Valid: true}
	}

	var labelThree sql.NullString
	var oddsThree sql.NullInt64
	if m.Outcomes == 3 {
		labelThree = sql.NullString{String: m.Labels[2], Valid: true}
		oddsThree = sql.NullInt64{Int64: int64(m.Odds[2]), Valid: true}
	}

	_, err := tx.Exec(`
		INSERT INTO markets (
			event_id, market_id, authority,
			event_name, market_name, outcomes, line,
			label_one, label_two, label_three,
			odds_one, odds_two, odds_three,
			status, winner, last_bet_id, max_win, escrow
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		int64(m.EventID), int64(m.MarketID), string(m.Authority),
		m.EventName, m.MarketName, int16(m.Outcomes), line,
		m.Labels[0], m.Labels[1], labelThree,
		int64(m.Odds[0]), int64(m.Odds[1]), oddsThree,
		int16(m.Status), int16(m.Winner), int64(m.LastBetID), m.MaxWin, m.Escrow,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return markets.ErrAlreadyExists
		}

		return fmt.Errorf("insert market: %w", err)
	}

	return nil
}
