package bets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/bets"
)

const betColumns = `
	event_id, market_id, bet_id, bettor, authority,
	selection, stake, odds, expected_payout, settled, result`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(row rowScanner) (*betting.Bet, error) {
	var (
		b         betting.Bet
		eventID   int64
		marketID  int64
		betID     int64
		bettor    string
		authority string
		selection int16
		stake     int64
		odds      int64
		result    string
	)

	err := row.Scan(
		&eventID, &marketID, &betID, &bettor, &authority,
		&selection, &stake, &odds, &b.ExpectedPayout, &b.Settled, &result,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bets.ErrNotFound
		}

		return nil, fmt.Errorf("scan bet: %w", err)
	}

	b.EventID = uint32(eventID)
	b.MarketID = uint32(marketID)
	b.BetID = uint32(betID)
	b.Bettor = betting.AccountID(bettor)
	b.Authority = betting.AccountID(authority)
	b.Selection = betting.Outcome(selection)
	b.Stake = uint64(stake)
	b.Odds = uint32(odds)
	b.Result = betting.Result(result)

	return &b, nil
}

func (r *betsRepo) Get(ctx context.Context, key betting.BetKey) (*betting.Bet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+betColumns+`
		FROM bets
		WHERE event_id = $1 AND market_id = $2 AND bet_id = $3 AND bettor = $4
	`, int64(key.EventID), int64(key.MarketID), int64(key.BetID), string(key.Bettor))

	return scanBet(row)
}

func (r *betsRepo) LockForUpdate(tx *sql.Tx, key betting.BetKey) (*betting.Bet, error) {
	row := tx.QueryRow(`
		SELECT `+betColumns+`
		FROM bets
		WHERE event_id = $1 AND market_id = $2 AND bet_id = $3 AND bettor = $4
		FOR UPDATE
	`, int64(key.EventID), int64(key.MarketID), int64(key.BetID), string(key.Bettor))

	return scanBet(row)
}
