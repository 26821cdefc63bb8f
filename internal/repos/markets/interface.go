package markets

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastprodman/betledger/internal/betting"
)

var ErrNotFound = errors.New("market not found")
var ErrAlreadyExists = errors.New("market already exists")

// Markets is the addressing/storage collaborator for market records. Rows
// are keyed (event_id, market_id, authority); inserting on an occupied key
// fails with ErrAlreadyExists.
type Markets interface {
	Insert(tx *sql.Tx, m *betting.Market) error
	Get(ctx context.Context, key betting.MarketKey) (*betting.Market, error)
	LockForUpdate(tx *sql.Tx, key betting.MarketKey) (*betting.Market, error)
	Update(tx *sql.Tx, m *betting.Market) error
}
