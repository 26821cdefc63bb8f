package bets

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/fastprodman/betledger/internal/betting"
	"github.com/fastprodman/betledger/internal/infra/pgtestutil"
	"github.com/fastprodman/betledger/internal/repos/bets"
	pgmarkets "github.com/fastprodman/betledger/internal/repos/markets/postgres"
)

const (
	testAuthority = betting.AccountID("acct_authority")
	testBettor    = betting.AccountID("acct_bettor")
)

// seedMarket satisfies the bets foreign key.
func seedMarket(t *testing.T, db *sql.DB, eventID, marketID uint32) betting.MarketKey {
	t.Helper()

	m, err := betting.NewMarket(betting.MarketParams{
		Authority:  testAuthority,
		EventID:    eventID,
		MarketID:   marketID,
		EventName:  "Arsenal vs Chelsea",
		MarketName: "Full Time Result",
		Outcomes:   3,
		Labels:     []string{"Home", "Draw", "Away"},
		Odds:       []uint32{2960, 3750, 2520},
	})
	if err != nil {
		t.Fatalf("new market: %v", err)
	}

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = pgmarkets.New(db).Insert(tx, m)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("seed market: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return betting.MarketKey{EventID: eventID, MarketID: marketID, Authority: testAuthority}
}

func newBet(key betting.MarketKey, betID uint32, bettor betting.AccountID, selection betting.Outcome, payout int64) *betting.Bet {
	return &betting.Bet{
		Bettor:         bettor,
		Authority:      key.Authority,
		EventID:        key.EventID,
		MarketID:       key.MarketID,
		BetID:          betID,
		Selection:      selection,
		Stake:          10,
		Odds:           2960,
		ExpectedPayout: payout,
		Settled:        false,
		Result:         betting.ResultPending,
	}
}

func insertBet(t *testing.T, db *sql.DB, repo *betsRepo, b *betting.Bet) error {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.Insert(tx, b)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return nil
}

func TestBets_InsertGet_Roundtrip(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	key := seedMarket(t, db, 100, 1)
	repo := New(db)

	b := newBet(key, 1, testBettor, 1, 29_600_000_000)

	err := insertBet(t, db, repo, b)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(t.Context(), betting.BetKey{
		EventID:  key.EventID,
		MarketID: key.MarketID,
		BetID:    1,
		Bettor:   testBettor,
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !reflect.DeepEqual(got, b) {
		t.Fatalf("roundtrip mismatch:\n got %+v\nwant %+v", got, b)
	}
}

func TestBets_Get_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	_, err := repo.Get(t.Context(), betting.BetKey{EventID: 1, MarketID: 1, BetID: 1, Bettor: testBettor})
	if !errors.Is(err, bets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestBets_Insert_Duplicate(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	key := seedMarket(t, db, 200, 1)
	repo := New(db)

	err := insertBet(t, db, repo, newBet(key, 1, testBettor, 1, 29_600_000_000))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = insertBet(t, db, repo, newBet(key, 1, testBettor, 2, 37_500_000_000))
	if !errors.Is(err, bets.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got: %v", err)
	}
}

func TestBets_MarkSettled(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	key := seedMarket(t, db, 300, 1)
	repo := New(db)

	b := newBet(key, 1, testBettor, 1, 29_600_000_000)

	err := insertBet(t, db, repo, b)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	b.Settled = true
	b.Result = betting.ResultWin

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.MarkSettled(tx, b)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("mark settled: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := repo.Get(t.Context(), betting.BetKey{
		EventID:  key.EventID,
		MarketID: key.MarketID,
		BetID:    1,
		Bettor:   testBettor,
	})
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if !got.Settled || got.Result != betting.ResultWin {
		t.Fatalf("settlement not persisted: settled=%v result=%q", got.Settled, got.Result)
	}
}

func TestBets_MarkSettled_Missing(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	key := seedMarket(t, db, 350, 1)
	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	ghost := newBet(key, 9, testBettor, 1, 1)
	ghost.Settled = true
	ghost.Result = betting.ResultLose

	err = repo.MarkSettled(tx, ghost)
	if !errors.Is(err, bets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestBets_SumPendingPayouts(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	key := seedMarket(t, db, 400, 1)
	repo := New(db)

	settledBet := newBet(key, 2, testBettor, 1, 50_000_000_000)

	seed := []*betting.Bet{
		newBet(key, 1, testBettor, 1, 29_600_000_000),
		settledBet,
		newBet(key, 3, "acct_other", 1, 10_000_000_000),
		newBet(key, 4, testBettor, 2, 37_500_000_000), // other selection
	}

	for _, b := range seed {
		err := insertBet(t, db, repo, b)
		if err != nil {
			t.Fatalf("insert bet %d: %v", b.BetID, err)
		}
	}

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	settledBet.Settled = true
	settledBet.Result = betting.ResultWin

	err = repo.MarkSettled(tx, settledBet)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("mark settled: %v", err)
	}

	sum, err := repo.SumPendingPayouts(tx, key, 1)
	if err != nil {
		t.Fatalf("sum pending: %v", err)
	}

	// settled and other-selection bets excluded
	if want := int64(29_600_000_000 + 10_000_000_000); sum != want {
		t.Fatalf("sum = %d, want %d", sum, want)
	}

	empty, err := repo.SumPendingPayouts(tx, key, 3)
	if err != nil {
		t.Fatalf("sum pending empty: %v", err)
	}

	if empty != 0 {
		t.Fatalf("empty sum = %d, want 0", empty)
	}

	_ = tx.Rollback()
}
