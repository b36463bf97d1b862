package models

// Operator is a structured filter comparison.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// FilterClause is one structured filter condition composed in the dashboard.
// Clauses are transient UI state, never persisted; mid-edit clauses routinely
// arrive with empty values and must be tolerated.
type FilterClause struct {
	ID       string   `json:"id"`
	Property string   `json:"property"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}
