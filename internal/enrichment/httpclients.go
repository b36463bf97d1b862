package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"confcrm/internal/crm/models"
)

const defaultClientTimeout = 15 * time.Second

// httpClient is the shared plumbing for the JSON-over-HTTP providers.
type httpClient struct {
	base   string
	apiKey string
	client *http.Client
}

func newHTTPClient(base, apiKey string) httpClient {
	return httpClient{
		base:   base,
		apiKey: apiKey,
		client: &http.Client{Timeout: defaultClientTimeout},
	}
}

func (c httpClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// HTTPContactClient calls the contact-data provider.
type HTTPContactClient struct {
	httpClient
}

func NewHTTPContactClient(base, apiKey string) *HTTPContactClient {
	return &HTTPContactClient{newHTTPClient(base, apiKey)}
}

func (c *HTTPContactClient) LookupContact(ctx context.Context, a models.Attendee) (ContactData, error) {
	payload := map[string]string{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"email":      a.Email,
		"company":    a.Company,
	}
	var data ContactData
	if err := c.post(ctx, "/v1/contacts/lookup", payload, &data); err != nil {
		return ContactData{}, err
	}
	return data, nil
}

// HTTPOrganizationClient calls the organization-registry provider.
type HTTPOrganizationClient struct {
	httpClient
}

func NewHTTPOrganizationClient(base, apiKey string) *HTTPOrganizationClient {
	return &HTTPOrganizationClient{newHTTPClient(base, apiKey)}
}

func (c *HTTPOrganizationClient) LookupOrganization(ctx context.Context, h models.HealthSystem) (OrganizationData, error) {
	payload := map[string]string{
		"name":  h.Name,
		"city":  h.City,
		"state": h.State,
	}
	var data OrganizationData
	if err := c.post(ctx, "/v1/organizations/lookup", payload, &data); err != nil {
		return OrganizationData{}, err
	}
	return data, nil
}

// HTTPAIClient calls the AI completion provider.
type HTTPAIClient struct {
	httpClient
}

func NewHTTPAIClient(base, apiKey string) *HTTPAIClient {
	return &HTTPAIClient{newHTTPClient(base, apiKey)}
}

func (c *HTTPAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]string{"prompt": prompt}
	var out struct {
		Completion string `json:"completion"`
	}
	if err := c.post(ctx, "/v1/completions", payload, &out); err != nil {
		return "", err
	}
	return out.Completion, nil
}
