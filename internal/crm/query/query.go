// Package query compiles dashboard filter state into backend predicates.
//
// The compiler is a pure builder: it walks the clause list and the free-text
// search term and emits predicate operations on an injected Builder. It never
// executes anything and never fails; malformed input degrades to "no
// additional predicate" because clauses are routine UI churn (a clause
// mid-edit arrives with an empty value).
package query

import (
	"strings"

	"confcrm/internal/crm/models"
)

// Filter bundles the two user-composed query inputs.
type Filter struct {
	Clauses []models.FilterClause
	Search  string
}

// Empty reports whether the filter adds no predicate at all.
func (f Filter) Empty() bool {
	return len(f.Clauses) == 0 && strings.TrimSpace(f.Search) == ""
}

// Builder receives predicate operations from Compile. All operations are
// AND-combined by the implementation; AnyContainsFold forms a single OR group
// over several fields. Implementations exist for the Postgres store (SQL
// fragments), the memory store (closures), and test fakes.
type Builder interface {
	Equals(field, value string)
	In(field string, values []string)
	ContainsFold(field, value string)
	HasPrefixFold(field, value string)
	HasSuffixFold(field, value string)
	Empty(field string)
	NotEmpty(field string)
	GreaterThan(field, value string)
	LessThan(field, value string)
	AnyContainsFold(fields []string, term string)
}

// Compile translates clauses plus a search term into predicate operations on b
// for the given collection. Malformed clauses (empty or unknown property,
// unknown operator, missing value where one is required) are skipped silently.
func Compile(b Builder, clauses []models.FilterClause, search string, col models.Collection) {
	for _, clause := range clauses {
		compileClause(b, clause, col)
	}

	if term := strings.TrimSpace(search); term != "" {
		if fields := SearchFields(col); len(fields) > 0 {
			b.AnyContainsFold(fields, term)
		}
	}
}

// Apply is a convenience wrapper over Compile for a bundled Filter.
func Apply(b Builder, f Filter, col models.Collection) {
	Compile(b, f.Clauses, f.Search, col)
}

func compileClause(b Builder, c models.FilterClause, col models.Collection) {
	field := strings.TrimSpace(c.Property)
	if field == "" || !Filterable(col, field) {
		return
	}

	switch c.Operator {
	case models.OpEquals:
		// An equals value containing a comma is a deliberate overload: it is
		// interpreted as a set-membership test over trimmed non-empty tokens.
		if strings.Contains(c.Value, ",") {
			tokens := splitTokens(c.Value)
			if len(tokens) > 0 {
				b.In(field, tokens)
			}
			return
		}
		if c.Value == "" {
			return
		}
		b.Equals(field, c.Value)
	case models.OpContains:
		if c.Value != "" {
			b.ContainsFold(field, c.Value)
		}
	case models.OpStartsWith:
		if c.Value != "" {
			b.HasPrefixFold(field, c.Value)
		}
	case models.OpEndsWith:
		if c.Value != "" {
			b.HasSuffixFold(field, c.Value)
		}
	case models.OpIsEmpty:
		b.Empty(field)
	case models.OpIsNotEmpty:
		b.NotEmpty(field)
	case models.OpGreaterThan:
		if c.Value != "" {
			b.GreaterThan(field, c.Value)
		}
	case models.OpLessThan:
		if c.Value != "" {
			b.LessThan(field, c.Value)
		}
	default:
		// Unknown operator: no-op.
	}
}

func splitTokens(value string) []string {
	parts := strings.Split(value, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
