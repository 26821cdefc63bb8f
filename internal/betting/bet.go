package betting

import "math"

// Result is a bet's settlement outcome.
type Result string

const (
	ResultPending Result = "Pending"
	ResultWin     Result = "Win"
	ResultLose    Result = "Lose"
)

// BetKey addresses a bet under its market.
type BetKey struct {
	EventID  uint32
	MarketID uint32
	BetID    uint32
	Bettor   AccountID
}

// Bet is a staked wager on one outcome. Odds are copied from the market at
// placement and never re-read.
type Bet struct {
	Bettor         AccountID
	Authority      AccountID
	EventID        uint32
	MarketID       uint32
	BetID          uint32
	Selection      Outcome
	Stake          uint64 // whole native tokens
	Odds           uint32 // locked at placement, scaled by OddsScale
	ExpectedPayout int64  // base units, stake * UnitScale * Odds / OddsScale
	Settled        bool
	Result         Result
}

func (b *Bet) Key() BetKey {
	return BetKey{EventID: b.EventID, MarketID: b.MarketID, BetID: b.BetID, Bettor: b.Bettor}
}

// PlaceBet records a stake on the market and returns the new bet together
// with the base-unit deposit the host must move from the bettor into escrow.
// Bet ids are issued strictly sequentially: the supplied id must be
// LastBetID+1, which blocks replays and gaps.
func (m *Market) PlaceBet(bettor AccountID, betID uint32, selection Outcome, stake uint64) (*Bet, int64, error) {
	if m.Status == StatusSettled {
		return nil, 0, ErrMarketSettled
	}

	if m.Status != StatusOpen {
		return nil, 0, ErrMarketClosed
	}

	if betID != m.LastBetID+1 {
		return nil, 0, ErrInvalidBetSequence
	}

	if selection == 0 || uint8(selection) > m.Outcomes {
		return nil, 0, ErrInvalidSelection
	}

	if stake == 0 {
		return nil, 0, ErrInvalidStake
	}

	odds := m.Odds[selection-1]

	deposit, err := Deposit(stake)
	if err != nil {
		return nil, 0, err
	}

	payout, err := Payout(stake, odds)
	if err != nil {
		return nil, 0, err
	}

	if m.Escrow > math.MaxInt64-deposit {
		return nil, 0, ErrStakeTooHigh
	}

	m.LastBetID = betID
	m.Escrow += deposit
	m.MaxWin = MaxWin(m.MaxWin, payout)

	bet := &Bet{
		Bettor:         bettor,
		Authority:      m.Authority,
		EventID:        m.EventID,
		MarketID:       m.MarketID,
		BetID:          betID,
		Selection:      selection,
		Stake:          stake,
		Odds:           odds,
		ExpectedPayout: payout,
		Settled:        false,
		Result:         ResultPending,
	}

	return bet, deposit, nil
}

// SettleBet resolves one bet against the settled market and returns the
// base-unit payout the host must release from escrow to the bettor, zero on
// a loss. A losing stake stays in escrow, forfeited to the authority. Each
// bet settles at most once.
func (m *Market) SettleBet(caller AccountID, b *Bet) (int64, error) {
	err := m.authorize(caller)
	if err != nil {
		return 0, err
	}

	// A bet settles only against the market it was placed on. Another
	// market reusing the same event/market ids must never resolve it.
	if b.EventID != m.EventID || b.MarketID != m.MarketID || b.Authority != m.Authority {
		return 0, ErrBetMismatch
	}

	if m.Status != StatusSettled {
		return 0, ErrMarketNotSettled
	}

	if b.Settled {
		return 0, ErrBetSettled
	}

	if b.Selection != m.Winner {
		b.Result = ResultLose
		b.Settled = true

		return 0, nil
	}

	// Wins are paid only from escrowed funds. Falling short here means the
	// ledger was under-collateralized earlier; fail loudly, never truncate.
	if m.Escrow < b.ExpectedPayout {
		return 0, ErrInsufficientEscrow
	}

	m.Escrow -= b.ExpectedPayout
	b.Result = ResultWin
	b.Settled = true

	return b.ExpectedPayout, nil
}
