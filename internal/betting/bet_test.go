package betting

import (
	"errors"
	"testing"
)

func openMarket(t *testing.T) *Market {
	t.Helper()

	m := mustMarket(t, threeWayParams())

	err := m.Open(testAuthority)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	return m
}

func TestPlaceBet_Basic(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	bet, deposit, err := m.PlaceBet(testBettor, 1, 1, 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	if deposit != 10*UnitScale {
		t.Fatalf("deposit mismatch: want %d, got %d", int64(10*UnitScale), deposit)
	}
	if bet.Odds != 2960 {
		t.Fatalf("locked odds mismatch: want 2960, got %d", bet.Odds)
	}
	if bet.ExpectedPayout != 29_600_000_000 {
		t.Fatalf("expected payout mismatch: want 29600000000, got %d", bet.ExpectedPayout)
	}
	if bet.Result != ResultPending || bet.Settled {
		t.Fatalf("new bet must be pending/unsettled, got %s/%v", bet.Result, bet.Settled)
	}
	if m.LastBetID != 1 {
		t.Fatalf("last bet id: want 1, got %d", m.LastBetID)
	}
	if m.Escrow != deposit {
		t.Fatalf("escrow: want %d, got %d", deposit, m.Escrow)
	}
	if m.MaxWin != bet.ExpectedPayout {
		t.Fatalf("max win: want %d, got %d", bet.ExpectedPayout, m.MaxWin)
	}
}

func TestPlaceBet_SequentialIDs(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	for id := uint32(1); id <= 3; id++ {
		_, _, err := m.PlaceBet(testBettor, id, 1, 1)
		if err != nil {
			t.Fatalf("place bet %d: %v", id, err)
		}
		if m.LastBetID != id {
			t.Fatalf("last bet id: want %d, got %d", id, m.LastBetID)
		}
	}

	// gap
	_, _, err := m.PlaceBet(testBettor, 5, 1, 1)
	if !errors.Is(err, ErrInvalidBetSequence) {
		t.Fatalf("gapped id: got %v, want %v", err, ErrInvalidBetSequence)
	}

	// replay
	_, _, err = m.PlaceBet(testBettor, 3, 1, 1)
	if !errors.Is(err, ErrInvalidBetSequence) {
		t.Fatalf("replayed id: got %v, want %v", err, ErrInvalidBetSequence)
	}

	if m.LastBetID != 3 {
		t.Fatalf("failed placements must not advance the counter, got %d", m.LastBetID)
	}
}

func TestPlaceBet_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prep      func(m *Market)
		betID     uint32
		selection Outcome
		stake     uint64
		wantErr   error
	}{
		{
			name:      "closed_market",
			prep:      func(m *Market) { _ = m.Close(testAuthority) },
			betID:     1,
			selection: 1,
			stake:     1,
			wantErr:   ErrMarketClosed,
		},
		{
			name: "settled_market",
			prep: func(m *Market) {
				_ = m.Close(testAuthority)
				_ = m.Settle(testAuthority, 1)
			},
			betID:     1,
			selection: 1,
			stake:     1,
			wantErr:   ErrMarketSettled,
		},
		{
			name:      "selection_zero",
			prep:      func(m *Market) {},
			betID:     1,
			selection: 0,
			stake:     1,
			wantErr:   ErrInvalidSelection,
		},
		{
			name:      "selection_out_of_range",
			prep:      func(m *Market) {},
			betID:     1,
			selection: 4,
			stake:     1,
			wantErr:   ErrInvalidSelection,
		},
		{
			name:      "zero_stake",
			prep:      func(m *Market) {},
			betID:     1,
			selection: 1,
			stake:     0,
			wantErr:   ErrInvalidStake,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := openMarket(t)
			tt.prep(m)

			_, _, err := m.PlaceBet(testBettor, tt.betID, tt.selection, tt.stake)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
			}

			if m.LastBetID != 0 || m.Escrow != 0 {
				t.Fatalf("failed placement mutated the market: last_bet_id %d escrow %d",
					m.LastBetID, m.Escrow)
			}
		})
	}
}

func TestPlaceBet_SelectionThreeOnTwoWay(t *testing.T) {
	t.Parallel()

	m := mustMarket(t, twoWayParams())

	err := m.Open(testAuthority)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, _, err = m.PlaceBet(testBettor, 1, 3, 1)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("selection 3 on two-way: got %v, want %v", err, ErrInvalidSelection)
	}
}

func TestPlaceBet_LockedOddsSurviveUpdate(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	bet, _, err := m.PlaceBet(testBettor, 1, 2, 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	err = m.SetOdds(testAuthority, []uint32{5000, 5000, 5000})
	if err != nil {
		t.Fatalf("set odds: %v", err)
	}

	if bet.Odds != 3750 {
		t.Fatalf("locked odds changed after update: got %d", bet.Odds)
	}

	// a later stake locks the new odds
	bet2, _, err := m.PlaceBet(testBettor, 2, 2, 10)
	if err != nil {
		t.Fatalf("place second bet: %v", err)
	}
	if bet2.Odds != 5000 {
		t.Fatalf("second bet should lock updated odds, got %d", bet2.Odds)
	}
}

func TestSettleBet_WinAndLose(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	// odds [2960, 3750, 2520], bets on outcomes 1 and 3, winner 1
	betA, _, err := m.PlaceBet(testBettor, 1, 1, 10)
	if err != nil {
		t.Fatalf("place bet A: %v", err)
	}
	betB, _, err := m.PlaceBet("acct_bettor_b", 2, 3, 10)
	if err != nil {
		t.Fatalf("place bet B: %v", err)
	}

	err = m.Close(testAuthority)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	err = m.Settle(testAuthority, 1)
	if err != nil {
		t.Fatalf("settle market: %v", err)
	}

	escrowBefore := m.Escrow

	payout, err := m.SettleBet(testAuthority, betA)
	if err != nil {
		t.Fatalf("settle bet A: %v", err)
	}
	if payout != 29_600_000_000 {
		t.Fatalf("win payout: want 29600000000, got %d", payout)
	}
	if betA.Result != ResultWin || !betA.Settled {
		t.Fatalf("bet A should be settled Win, got %s/%v", betA.Result, betA.Settled)
	}
	if m.Escrow != escrowBefore-payout {
		t.Fatalf("escrow after win: want %d, got %d", escrowBefore-payout, m.Escrow)
	}

	escrowBefore = m.Escrow

	payout, err = m.SettleBet(testAuthority, betB)
	if err != nil {
		t.Fatalf("settle bet B: %v", err)
	}
	if payout != 0 {
		t.Fatalf("lose payout: want 0, got %d", payout)
	}
	if betB.Result != ResultLose || !betB.Settled {
		t.Fatalf("bet B should be settled Lose, got %s/%v", betB.Result, betB.Settled)
	}
	if m.Escrow != escrowBefore {
		t.Fatalf("losing settlement must not move escrow: want %d, got %d", escrowBefore, m.Escrow)
	}
}

func TestSettleBet_Preconditions(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	bet, _, err := m.PlaceBet(testBettor, 1, 1, 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	// market not settled yet
	_, err = m.SettleBet(testAuthority, bet)
	if !errors.Is(err, ErrMarketNotSettled) {
		t.Fatalf("unsettled market: got %v, want %v", err, ErrMarketNotSettled)
	}

	_ = m.Close(testAuthority)
	err = m.Settle(testAuthority, 1)
	if err != nil {
		t.Fatalf("settle market: %v", err)
	}

	// wrong caller
	_, err = m.SettleBet(testBettor, bet)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("settle by bettor: got %v, want %v", err, ErrUnauthorized)
	}
	if bet.Settled {
		t.Fatalf("failed settlement must not mark the bet settled")
	}

	_, err = m.SettleBet(testAuthority, bet)
	if err != nil {
		t.Fatalf("settle bet: %v", err)
	}

	// double settle
	escrow := m.Escrow
	_, err = m.SettleBet(testAuthority, bet)
	if !errors.Is(err, ErrBetSettled) {
		t.Fatalf("double settle: got %v, want %v", err, ErrBetSettled)
	}
	if m.Escrow != escrow {
		t.Fatalf("double settle moved escrow: want %d, got %d", escrow, m.Escrow)
	}
}

func TestSettleBet_ForeignMarketRejected(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	bet, _, err := m.PlaceBet(testBettor, 1, 1, 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	// Another authority sets up a market reusing the same event/market ids
	// and settles it on the losing side.
	params := threeWayParams()
	params.Authority = "acct_rival"
	rival := mustMarket(t, params)

	err = rival.Settle("acct_rival", 2)
	if err != nil {
		t.Fatalf("settle rival market: %v", err)
	}

	_, err = rival.SettleBet("acct_rival", bet)
	if !errors.Is(err, ErrBetMismatch) {
		t.Fatalf("foreign settle: got %v, want %v", err, ErrBetMismatch)
	}
	if bet.Settled || bet.Result != ResultPending {
		t.Fatalf("foreign settle touched the bet: %s/%v", bet.Result, bet.Settled)
	}

	// The owning market, once settled, still resolves it.
	_ = m.Close(testAuthority)
	err = m.Settle(testAuthority, 1)
	if err != nil {
		t.Fatalf("settle market: %v", err)
	}

	m.Escrow = bet.ExpectedPayout

	payout, err := m.SettleBet(testAuthority, bet)
	if err != nil {
		t.Fatalf("settle bet: %v", err)
	}
	if payout != bet.ExpectedPayout || bet.Result != ResultWin {
		t.Fatalf("owning market settle: payout=%d result=%s", payout, bet.Result)
	}
}

func TestSettleBet_InsufficientEscrowIsFatal(t *testing.T) {
	t.Parallel()

	m := openMarket(t)

	bet, _, err := m.PlaceBet(testBettor, 1, 1, 10)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	_ = m.Close(testAuthority)
	err = m.Settle(testAuthority, 1)
	if err != nil {
		t.Fatalf("settle market: %v", err)
	}

	// Simulate prior under-collateralization: the deposit (10 tokens) cannot
	// cover the 29.6-token payout on its own.
	m.Escrow = bet.ExpectedPayout - 1

	_, err = m.SettleBet(testAuthority, bet)
	if !errors.Is(err, ErrInsufficientEscrow) {
		t.Fatalf("short escrow: got %v, want %v", err, ErrInsufficientEscrow)
	}
	if bet.Settled || bet.Result != ResultPending {
		t.Fatalf("fatal path must not settle the bet, got %s/%v", bet.Result, bet.Settled)
	}
	if m.Escrow != bet.ExpectedPayout-1 {
		t.Fatalf("fatal path must not move escrow, got %d", m.Escrow)
	}
}

func TestAuthorize_Roles(t *testing.T) {
	t.Parallel()

	err := Authorize("bettor", testBettor, testBettor)
	if err != nil {
		t.Fatalf("matching identity: %v", err)
	}

	err = Authorize("bettor", testBettor, testAuthority)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("mismatch: got %v, want %v", err, ErrUnauthorized)
	}

	err = Authorize("authority", "", testAuthority)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("empty recorded identity: got %v, want %v", err, ErrUnauthorized)
	}
}
