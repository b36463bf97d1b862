package query

import "confcrm/internal/crm/models"

// searchFields is the fixed, collection-specific field set the free-text
// search OR-group matches against. The per-collection scoping is deliberate:
// search on attendees must not leak into health-system name matching.
var searchFields = map[models.Collection][]string{
	models.CollectionAttendees:     {"first_name", "last_name", "email", "title", "company"},
	models.CollectionHealthSystems: {"name", "city", "state"},
	models.CollectionConferences:   {"name", "location"},
}

// filterableFields whitelists the properties structured clauses may target.
// Field names double as column names in the Postgres store, so unknown
// properties are dropped here rather than interpolated into SQL.
var filterableFields = map[models.Collection]map[string]struct{}{
	models.CollectionAttendees: set(
		"id", "first_name", "last_name", "email", "phone", "linkedin_url",
		"title", "company", "notes", "health_system_id",
	),
	models.CollectionHealthSystems: set(
		"id", "name", "external_id", "street", "city", "state", "zip", "website",
	),
	models.CollectionConferences: set(
		"id", "name", "location", "start_date", "end_date",
	),
}

// SearchFields returns the substring-search field set for a collection.
func SearchFields(col models.Collection) []string {
	return searchFields[col]
}

// Filterable reports whether a clause property is valid for the collection.
func Filterable(col models.Collection, field string) bool {
	fields, ok := filterableFields[col]
	if !ok {
		return false
	}
	_, ok = fields[field]
	return ok
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
