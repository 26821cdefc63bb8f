package wagering

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/betledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/betledger/internal/repos/bets"
	pgbets "github.com/fastprodman/betledger/internal/repos/bets/postgres"
	"github.com/fastprodman/betledger/internal/repos/markets"
	pgmarkets "github.com/fastprodman/betledger/internal/repos/markets/postgres"
)

// Config holds the service toggles.
//
// StrictCollateral refuses a stake when the selected outcome's aggregate
// pending liability would exceed post-deposit escrow. Off by default: the
// ledger otherwise accepts unlimited stakes per outcome and max_win remains
// informational, matching the original accounting.
type Config struct {
	StrictCollateral bool
}

// Service is the host around the betting core: it runs every mutating
// operation in one database transaction with the market row locked first,
// so each request applies atomically and bet ids are issued serially.
type Service struct {
	db       *sql.DB
	cfg      Config
	markets  markets.Markets
	bets     bets.Bets
	accounts accounts.Accounts
}

func New(db *sql.DB, cfg Config) *Service {
	return &Service{
		db:       db,
		cfg:      cfg,
		markets:  pgmarkets.New(db),
		bets:     pgbets.New(db),
		accounts: pgaccounts.New(db),
	}
}

// GetMarket returns a market snapshot (no locks).
func (s *Service) GetMarket(ctx context.Context, key betting.MarketKey) (*betting.Market, error) {
	m, err := s.markets.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get market: %w", err)
	}

	return m, nil
}

// GetBet returns a bet snapshot (no locks).
func (s *Service) GetBet(ctx context.Context, key betting.BetKey) (*betting.Bet, error) {
	b, err := s.bets.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get bet: %w", err)
	}

	return b, nil
}

// GetBalance returns an account's base-unit balance (no locks).
func (s *Service) GetBalance(ctx context.Context, address betting.AccountID) (int64, error) {
	balance, err := s.accounts.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
