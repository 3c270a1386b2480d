package entity

import "time"

// DateRange rango de fechas inclusivo; cualquiera de los extremos puede ser nil.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains indica si t cae dentro del rango.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// MovementFilter filtros para consultas del ledger (reportes).
type MovementFilter struct {
	ItemID           string
	Type             MovementType
	ResponsibleParty string
	Range            DateRange
}

// Matches aplica el filtro en memoria.
func (f MovementFilter) Matches(m Movement) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.ResponsibleParty != "" && m.ResponsibleParty != f.ResponsibleParty {
		return false
	}
	return f.Range.Contains(m.Date)
}
