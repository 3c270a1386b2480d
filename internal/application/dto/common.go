package dto

// ErrorResponse cuerpo de error HTTP.
// Issues lista todas las reglas incumplidas en errores de validación;
// Details lleva datos del error (stock disponible, movimiento pendiente de conciliar).
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Issues  []IssueDTO             `json:"issues,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// IssueDTO una regla de validación incumplida.
type IssueDTO struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
