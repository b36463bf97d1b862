package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlBuilder implements query.Builder by accumulating WHERE fragments and
// positional args. Field names are whitelisted by the compiler before they
// reach this builder, so interpolating them into fragments is safe.
type sqlBuilder struct {
	conds []string
	args  []any
}

// newSQLBuilder seeds the builder with args already bound by the enclosing
// query (e.g. a join's list id), so fragment placeholders number correctly.
func newSQLBuilder(seed ...any) *sqlBuilder {
	return &sqlBuilder{args: seed}
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// where renders the accumulated fragments as an AND-combined clause,
// including the leading keyword; empty when no predicate applies.
func (b *sqlBuilder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// escapeLike escapes LIKE/ILIKE metacharacters in user input.
func escapeLike(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `%`, `\%`)
	return strings.ReplaceAll(v, `_`, `\_`)
}

func (b *sqlBuilder) Equals(field, value string) {
	// Cast to text so uuid and date columns compare against string input the
	// same way the in-memory store does.
	b.conds = append(b.conds, fmt.Sprintf("%s::text = %s", field, b.bind(value)))
}

func (b *sqlBuilder) In(field string, values []string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text = ANY(%s)", field, b.bind(values)))
}

func (b *sqlBuilder) ContainsFold(field, value string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text ILIKE %s", field, b.bind("%"+escapeLike(value)+"%")))
}

func (b *sqlBuilder) HasPrefixFold(field, value string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text ILIKE %s", field, b.bind(escapeLike(value)+"%")))
}

func (b *sqlBuilder) HasSuffixFold(field, value string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text ILIKE %s", field, b.bind("%"+escapeLike(value))))
}

func (b *sqlBuilder) Empty(field string) {
	b.conds = append(b.conds, fmt.Sprintf("(%s IS NULL OR %s::text = '')", field, field))
}

func (b *sqlBuilder) NotEmpty(field string) {
	b.conds = append(b.conds, fmt.Sprintf("(%s IS NOT NULL AND %s::text <> '')", field, field))
}

func (b *sqlBuilder) GreaterThan(field, value string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text > %s", field, b.bind(value)))
}

func (b *sqlBuilder) LessThan(field, value string) {
	b.conds = append(b.conds, fmt.Sprintf("%s::text < %s", field, b.bind(value)))
}

func (b *sqlBuilder) AnyContainsFold(fields []string, term string) {
	pattern := b.bind("%" + escapeLike(term) + "%")
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s::text ILIKE %s", f, pattern)
	}
	b.conds = append(b.conds, "("+strings.Join(parts, " OR ")+")")
}
