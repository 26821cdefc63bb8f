package wagering

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/infra/pgutils"
)

type PlaceBetParams struct {
	Bettor    betting.AccountID
	EventID   uint32
	MarketID  uint32
	Authority betting.AccountID // market owner, part of the address
	BetID     uint32
	Selection betting.Outcome
	Stake     uint64 // whole native tokens
}

// PlaceBet runs the full placement flow in one database transaction:
//
// 1) Verify the caller is the bettor.
// 2) Lock the market row (serializes bet-id issuance).
// 3) Validate and apply the placement via the core.
// 4) Strict mode only: bound the outcome's aggregate liability.
// 5) Debit the bettor's wallet and fund escrow.
// 6) Insert the bet record.
func (s *Service) PlaceBet(ctx context.Context, caller betting.AccountID, p PlaceBetParams) (*betting.Bet, error) {
	err := betting.Authorize("bettor", p.Bettor, caller)
	if err != nil {
		return nil, err
	}

	key := betting.MarketKey{EventID: p.EventID, MarketID: p.MarketID, Authority: p.Authority}

	var placed *betting.Bet

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.accounts.Exists(tx, p.Bettor)
		if err != nil {
			return fmt.Errorf("check bettor exists: %w", err)
		}

		m, err := s.markets.LockForUpdate(tx, key)
		if err != nil {
			return fmt.Errorf("lock market: %w", err)
		}

		bet, deposit, err := m.PlaceBet(p.Bettor, p.BetID, p.Selection, p.Stake)
		if err != nil {
			return err
		}

		if s.cfg.StrictCollateral {
			pending, err := s.bets.SumPendingPayouts(tx, key, p.Selection)
			if err != nil {
				return fmt.Errorf("sum pending payouts: %w", err)
			}

			// m.Escrow already includes this deposit.
			if pending+bet.ExpectedPayout > m.Escrow {
				return betting.ErrStakeTooHigh
			}
		}

		err = s.accounts.Debit(tx, p.Bettor, deposit)
		if err != nil {
			return fmt.Errorf("escrow deposit: %w", err)
		}

		err = s.markets.Update(tx, m)
		if err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		err = s.bets.Insert(tx, bet)
		if err != nil {
			return fmt.Errorf("insert bet: %w", err)
		}

		placed = bet

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("place bet: %w", err)
	}

	return placed, nil
}

// SettleBet resolves one bet of a settled market, run by the market
// authority. A win releases the locked-in payout from escrow to the bettor;
// a loss leaves the stake in escrow. Lock order is market row then bet row,
// same as placement, so the two flows never deadlock each other.
//
// The market is addressed by the requested authority, not the caller; the
// core rejects a caller who is not that authority and a bet that was placed
// under a different market.
func (s *Service) SettleBet(ctx context.Context, caller, authority betting.AccountID, key betting.BetKey) (*betting.Bet, error) {
	marketKey := betting.MarketKey{EventID: key.EventID, MarketID: key.MarketID, Authority: authority}

	var settled *betting.Bet

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		m, err := s.markets.LockForUpdate(tx, marketKey)
		if err != nil {
			return fmt.Errorf("lock market: %w", err)
		}

		b, err := s.bets.LockForUpdate(tx, key)
		if err != nil {
			return fmt.Errorf("lock bet: %w", err)
		}

		payout, err := m.SettleBet(caller, b)
		if err != nil {
			return err
		}

		if payout > 0 {
			err = s.accounts.Credit(tx, b.Bettor, payout)
			if err != nil {
				return fmt.Errorf("pay out win: %w", err)
			}
		}

		err = s.markets.Update(tx, m)
		if err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		err = s.bets.MarkSettled(tx, b)
		if err != nil {
			return fmt.Errorf("mark bet settled: %w", err)
		}

		settled = b

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("settle bet: %w", err)
	}

	return settled, nil
}
