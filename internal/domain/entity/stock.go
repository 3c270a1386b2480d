package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockedItem materia prima o activo controlado por cantidad. Su ciclo de vida lo maneja el
// catálogo externo; el ledger solo modifica CurrentQuantity y, en traslados, Location.
type StockedItem struct {
	ID              string
	UnitOfMeasure   string
	CurrentQuantity decimal.Decimal // nunca negativa
	Location        string
	UpdatedAt       time.Time
}
