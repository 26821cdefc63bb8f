package betting

import "slices"

// Outcome indexes a market outcome, 1-based. Zero means unset.
type Outcome uint8

// Status is the market lifecycle state. A market is created closed, toggles
// freely between closed and open, and settles exactly once from closed.
// Settled is terminal.
type Status uint8

const (
	StatusClosed Status = iota
	StatusOpen
	StatusSettled
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusSettled:
		return "settled"
	default:
		return "closed"
	}
}

// MarketKey addresses a market. Creation on an occupied key fails.
type MarketKey struct {
	EventID   uint32
	MarketID  uint32
	Authority AccountID
}

// Market is a single bettable proposition with fixed outcomes and
// authority-set odds. Escrow is the pool of deposited stakes in base units,
// the only source of winning payouts.
type Market struct {
	Authority  AccountID
	EventID    uint32
	MarketID   uint32
	EventName  string
	MarketName string
	Outcomes   uint8
	Line       *uint16 // two-way handicap line; nil for three-way markets
	Labels     []string
	Odds       []uint32 // scaled by OddsScale, one per outcome
	Status     Status
	Winner     Outcome // nonzero only once settled
	LastBetID  uint32
	MaxWin     int64
	Escrow     int64
}

const maxNameLen = 128

type MarketParams struct {
	Authority  AccountID
	EventID    uint32
	MarketID   uint32
	EventName  string
	MarketName string
	Outcomes   uint8
	Line       *uint16
	Labels     []string
	Odds       []uint32
}

// NewMarket validates params and returns a closed, unsettled market with no
// bets and an empty escrow.
func NewMarket(p MarketParams) (*Market, error) {
	if p.Outcomes != 2 && p.Outcomes != 3 {
		return nil, ErrInvalidOutcomes
	}

	// A line is what distinguishes a two-way handicap market; three-way
	// markets never carry one.
	if (p.Line != nil) != (p.Outcomes == 2) {
		return nil, ErrInvalidLine
	}

	if len(p.Labels) != int(p.Outcomes) {
		return nil, ErrInvalidOutcomes
	}

	if len(p.EventName) > maxNameLen || len(p.MarketName) > maxNameLen {
		return nil, ErrInvalidName
	}

	err := validateOdds(p.Odds, p.Outcomes)
	if err != nil {
		return nil, err
	}

	return &Market{
		Authority:  p.Authority,
		EventID:    p.EventID,
		MarketID:   p.MarketID,
		EventName:  p.EventName,
		MarketName: p.MarketName,
		Outcomes:   p.Outcomes,
		Line:       p.Line,
		Labels:     slices.Clone(p.Labels),
		Odds:       slices.Clone(p.Odds),
		Status:     StatusClosed,
		Winner:     0,
		LastBetID:  0,
		MaxWin:     0,
		Escrow:     0,
	}, nil
}

// validateOdds requires one odds value per outcome, each above 1.000 decimal.
func validateOdds(odds []uint32, outcomes uint8) error {
	if len(odds) != int(outcomes) {
		return ErrInvalidOdds
	}

	for _, o := range odds {
		if o <= OddsScale {
			return ErrInvalidOdds
		}
	}

	return nil
}

func (m *Market) Key() MarketKey {
	return MarketKey{EventID: m.EventID, MarketID: m.MarketID, Authority: m.Authority}
}

// Open starts accepting stakes. Idempotent while unsettled.
func (m *Market) Open(caller AccountID) error {
	err := m.authorize(caller)
	if err != nil {
		return err
	}

	if m.Status == StatusSettled {
		return ErrMarketSettled
	}

	m.Status = StatusOpen

	return nil
}

// Close stops accepting stakes. Idempotent while unsettled.
func (m *Market) Close(caller AccountID) error {
	err := m.authorize(caller)
	if err != nil {
		return err
	}

	if m.Status == StatusSettled {
		return ErrMarketSettled
	}

	m.Status = StatusClosed

	return nil
}

// SetOdds replaces the current odds. Bets already placed keep the odds they
// locked in; new odds apply to future stakes only.
func (m *Market) SetOdds(caller AccountID, odds []uint32) error {
	err := m.authorize(caller)
	if err != nil {
		return err
	}

	if m.Status == StatusSettled {
		return ErrMarketSettled
	}

	err = validateOdds(odds, m.Outcomes)
	if err != nil {
		return err
	}

	m.Odds = slices.Clone(odds)

	return nil
}

// Settle declares the winning outcome. The market must already be closed so
// settlement cannot race with new stakes. One-way: a settled market never
// changes again.
func (m *Market) Settle(caller AccountID, winner Outcome) error {
	err := m.authorize(caller)
	if err != nil {
		return err
	}

	if m.Status == StatusSettled {
		return ErrMarketSettled
	}

	if m.Status == StatusOpen {
		return ErrMarketOpen
	}

	if winner == 0 || uint8(winner) > m.Outcomes {
		return ErrInvalidOutcome
	}

	m.Status = StatusSettled
	m.Winner = winner

	return nil
}
