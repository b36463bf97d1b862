// Package models defines the CRM record types and the transient filter model.
//
// Records carry an explicit Collection discriminant through the Record
// interface instead of being distinguished by which fields happen to be set.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection identifies one of the three browsable record kinds and its
// backing table.
type Collection string

const (
	CollectionAttendees     Collection = "attendees"
	CollectionHealthSystems Collection = "health_systems"
	CollectionConferences   Collection = "conferences"
)

// Collections lists all browsable collections in fetch order.
func Collections() []Collection {
	return []Collection{CollectionAttendees, CollectionHealthSystems, CollectionConferences}
}

// Valid reports whether c names a known collection.
func (c Collection) Valid() bool {
	switch c {
	case CollectionAttendees, CollectionHealthSystems, CollectionConferences:
		return true
	}
	return false
}

// Record is implemented by all browsable record types.
type Record interface {
	Kind() Collection
	RecordID() uuid.UUID
}

// Attendee is a conference attendee. HealthSystemID is a soft reference: the
// client layer does not enforce it referentially.
type Attendee struct {
	ID             uuid.UUID    `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	LinkedInURL    string       `json:"linkedin_url"`
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	Notes          string       `json:"notes"`
	Certifications []string     `json:"certifications"`
	HealthSystemID *uuid.UUID   `json:"health_system_id,omitempty"`
	Conferences    []Conference `json:"conferences,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (a Attendee) Kind() Collection    { return CollectionAttendees }
func (a Attendee) RecordID() uuid.UUID { return a.ID }

// Field returns the named filterable/searchable field as a string. The bool
// reports whether the field name is known for this record type.
func (a Attendee) Field(name string) (string, bool) {
	switch name {
	case "id":
		return a.ID.String(), true
	case "first_name":
		return a.FirstName, true
	case "last_name":
		return a.LastName, true
	case "email":
		return a.Email, true
	case "phone":
		return a.Phone, true
	case "linkedin_url":
		return a.LinkedInURL, true
	case "title":
		return a.Title, true
	case "company":
		return a.Company, true
	case "notes":
		return a.Notes, true
	case "health_system_id":
		if a.HealthSystemID == nil {
			return "", true
		}
		return a.HealthSystemID.String(), true
	}
	return "", false
}

// HealthSystem is an employer organization attendees may belong to.
type HealthSystem struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ExternalID string    `json:"external_id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Zip        string    `json:"zip"`
	Website    string    `json:"website"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (h HealthSystem) Kind() Collection    { return CollectionHealthSystems }
func (h HealthSystem) RecordID() uuid.UUID { return h.ID }

func (h HealthSystem) Field(name string) (string, bool) {
	switch name {
	case "id":
		return h.ID.String(), true
	case "name":
		return h.Name, true
	case "external_id":
		return h.ExternalID, true
	case "street":
		return h.Street, true
	case "city":
		return h.City, true
	case "state":
		return h.State, true
	case "zip":
		return h.Zip, true
	case "website":
		return h.Website, true
	}
	return "", false
}

// Conference is an event attendees are associated with through a join entity.
type Conference struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Conference) Kind() Collection    { return CollectionConferences }
func (c Conference) RecordID() uuid.UUID { return c.ID }

func (c Conference) Field(name string) (string, bool) {
	switch name {
	case "id":
		return c.ID.String(), true
	case "name":
		return c.Name, true
	case "location":
		return c.Location, true
	case "start_date":
		if c.StartDate.IsZero() {
			return "", true
		}
		return c.StartDate.Format("2006-01-02"), true
	case "end_date":
		if c.EndDate.IsZero() {
			return "", true
		}
		return c.EndDate.Format("2006-01-02"), true
	}
	return "", false
}

// List is a user-curated set of attendees. MemberCount is derived from the
// membership join entity, never stored.
type List struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}
