package markets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/markets"
)

const marketColumns = `
	event_id, market_id, authority,
	event_name, market_name, outcomes, line,
	label_one, label_two, label_three,
	odds_one, odds_two, odds_three,
	status, winner, last_bet_id, max_win, escrow`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMarket(row rowScanner) (*betting.Market, error) {
	var (
		m         betting.Market
		eventID   int64
		marketID  int64
		authority string
		outcomes  int16
		line      sql.NullInt32
		labelOne  string
		labelTwo  string
		labelTri  sql.NullString
		oddsOne   int64
		oddsTwo   int64
		oddsTri   sql.NullInt64
		status    int16
		winner    int16
		lastBetID int64
	)

	err := row.Scan(
		&eventID, &marketID, &authority,
		&m.EventName, &m.MarketName, &outcomes, &line,
		&labelOne, &labelTwo, &labelTri,
		&oddsOne, &oddsTwo, &oddsTri,
		&status, &winner, &lastBetID, &m.MaxWin, &m.Escrow,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, markets.ErrNotFound
		}

		return nil, fmt.Errorf("scan market: %w", err)
	}

	m.EventID = uint32(eventID)
	m.MarketID = uint32(marketID)
	m.Authority = betting.AccountID(authority)
	m.Outcomes = uint8(outcomes)
	m.Status = betting.Status(status)
	m.Winner = betting.Outcome(winner)
	m.LastBetID = uint32(lastBetID)

	if line.Valid {
		l := uint16(line.Int32)
		m.Line = &l
	}

	m.Labels = []string{labelOne, labelTwo}
	m.Odds = []uint32{uint32(oddsOne), uint32(oddsTwo)}
	if m.Outcomes == 3 {
		m.Labels = append(m.Labels, labelTri.String)
		m.Odds = append(m.Odds, uint32(oddsTri.Int64))
	}

	return &m, nil
}

func (r *marketsRepo) Get(ctx context.Context, key betting.MarketKey) (*betting.Market, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+marketColumns+`
		FROM markets
		WHERE event_id = $1 AND market_id = $2 AND authority = $3
	`, int64(key.EventID), int64(key.MarketID), string(key.Authority))

	return scanMarket(row)
}

// LockForUpdate reads the market row under FOR UPDATE so concurrent mutating
// requests on the same market serialize for the rest of the transaction.
func (r *marketsRepo) LockForUpdate(tx *sql.Tx, key betting.MarketKey) (*betting.Market, error) {
	row := tx.QueryRow(`
		SELECT `+marketColumns+`
		FROM markets
		WHERE event_id = $1 AND market_id = $2 AND authority = $3
		FOR UPDATE
	`, int64(key.EventID), int64(key.MarketID), string(key.Authority))

	return scanMarket(row)
}
