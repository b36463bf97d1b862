package memory

import "strings"

// fieldRecord is the slice of a model the predicate evaluator needs.
type fieldRecord interface {
	Field(name string) (string, bool)
}

// predicate implements query.Builder by accumulating closures that are
// AND-combined over a record's named fields.
type predicate struct {
	conds []func(fieldRecord) bool
}

func (p *predicate) add(cond func(fieldRecord) bool) {
	p.conds = append(p.conds, cond)
}

func (p *predicate) matches(r fieldRecord) bool {
	for _, cond := range p.conds {
		if !cond(r) {
			return false
		}
	}
	return true
}

func (p *predicate) Equals(field, value string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && v == value
	})
}

func (p *predicate) In(field string, values []string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		if !ok {
			return false
		}
		for _, want := range values {
			if v == want {
				return true
			}
		}
		return false
	})
}

func (p *predicate) ContainsFold(field, value string) {
	needle := strings.ToLower(value)
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && strings.Contains(strings.ToLower(v), needle)
	})
}

func (p *predicate) HasPrefixFold(field, value string) {
	prefix := strings.ToLower(value)
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && strings.HasPrefix(strings.ToLower(v), prefix)
	})
}

func (p *predicate) HasSuffixFold(field, value string) {
	suffix := strings.ToLower(value)
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && strings.HasSuffix(strings.ToLower(v), suffix)
	})
}

func (p *predicate) Empty(field string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && v == ""
	})
}

func (p *predicate) NotEmpty(field string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && v != ""
	})
}

func (p *predicate) GreaterThan(field, value string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && v != "" && v > value
	})
}

func (p *predicate) LessThan(field, value string) {
	p.add(func(r fieldRecord) bool {
		v, ok := r.Field(field)
		return ok && v != "" && v < value
	})
}

func (p *predicate) AnyContainsFold(fields []string, term string) {
	needle := strings.ToLower(term)
	p.add(func(r fieldRecord) bool {
		for _, f := range fields {
			if v, ok := r.Field(f); ok && strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	})
}
