// Package enrichment fills in attendee and organization data from external
// providers and runs AI prompts over attendee records.
package enrichment

import (
	"context"

	"confcrm/internal/crm/models"
)

// ContactData is what the contact provider knows about a person.
type ContactData struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	LinkedInURL string `json:"linkedin_url"`
	Title       string `json:"title"`
}

// OrganizationData is what the registry provider knows about an organization.
type OrganizationData struct {
	ExternalID string `json:"external_id"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	Website    string `json:"website"`
}

// ContactClient looks up contact data for an attendee.
type ContactClient interface {
	LookupContact(ctx context.Context, a models.Attendee) (ContactData, error)
}

// OrganizationClient looks up registry data for a health system.
type OrganizationClient interface {
	LookupOrganization(ctx context.Context, h models.HealthSystem) (OrganizationData, error)
}

// AIClient completes a free-text prompt.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
