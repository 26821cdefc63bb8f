package wagering

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/infra/pgutils"
)

// CreateMarket initializes a market owned by the caller. The caller becomes
// the market's authority; an occupied (event, market, authority) key fails.
func (s *Service) CreateMarket(ctx context.Context, caller betting.AccountID, p betting.MarketParams) (*betting.Market, error) {
	p.Authority = caller

	m, err := betting.NewMarket(p)
	if err != nil {
		return nil, fmt.Errorf("new market: %w", err)
	}

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.markets.Insert(tx, m)
	})
	if err != nil {
		return nil, fmt.Errorf("create market: %w", err)
	}

	return m, nil
}

// mutateMarket locks the market row, applies fn to the in-memory entity and
// persists the result. Any error rolls everything back.
func (s *Service) mutateMarket(ctx context.Context, key betting.MarketKey, fn func(m *betting.Market) error) (*betting.Market, error) {
	var out *betting.Market

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		m, err := s.markets.LockForUpdate(tx, key)
		if err != nil {
			return fmt.Errorf("lock market: %w", err)
		}

		err = fn(m)
		if err != nil {
			return err
		}

		err = s.markets.Update(tx, m)
		if err != nil {
			return fmt.Errorf("update market: %w", err)
		}

		out = m

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// OpenMarket starts accepting stakes on the market.
func (s *Service) OpenMarket(ctx context.Context, caller betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
	return s.mutateMarket(ctx, key, func(m *betting.Market) error {
		return m.Open(caller)
	})
}

// CloseMarket stops accepting stakes on the market.
func (s *Service) CloseMarket(ctx context.Context, caller betting.AccountID, key betting.MarketKey) (*betting.Market, error) {
	return s.mutateMarket(ctx, key, func(m *betting.Market) error {
		return m.Close(caller)
	})
}

// UpdateOdds replaces the market's current odds. Locked bet odds are
// untouched.
func (s *Service) UpdateOdds(ctx context.Context, caller betting.AccountID, key betting.MarketKey, odds []uint32) (*betting.Market, error) {
	return s.mutateMarket(ctx, key, func(m *betting.Market) error {
		return m.SetOdds(caller, odds)
	})
}

// SettleMarket declares the winning outcome. One-way; the market must be
// closed first.
func (s *Service) SettleMarket(ctx context.Context, caller betting.AccountID, key betting.MarketKey, winner betting.Outcome) (*betting.Market, error) {
	return s.mutateMarket(ctx, key, func(m *betting.Market) error {
		return m.Settle(caller, winner)
	})
}
