package markets

import (
	"database/sql"

	"github.com/fastprodman/betledger/internal/repos/markets"
)

var _ markets.Markets = (*marketsRepo)(nil)

type marketsRepo struct{ db *sql.DB }

func New(db *sql.DB) *marketsRepo {
	return &marketsRepo{db: db}
}
