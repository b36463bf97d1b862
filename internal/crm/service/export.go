package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	dErrors "confcrm/pkg/domain-errors"
)

// exportBatchSize bounds memory while streaming large exports.
const exportBatchSize = 500

var exportHeader = []string{
	"first_name", "last_name", "email", "phone", "linkedin_url",
	"title", "company", "notes", "certifications", "health_system_id",
}

// ExportAttendeesCSV streams the filtered attendee set as CSV. The same
// filter and list scope the dashboard is showing apply, so the export matches
// what the operator sees.
func (s *Service) ExportAttendeesCSV(ctx context.Context, f query.Filter, listID *uuid.UUID, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "csv write failed")
	}

	for from := 0; ; from += exportBatchSize {
		to := from + exportBatchSize - 1
		var (
			batch []models.Attendee
			err   error
		)
		if listID != nil {
			batch, err = s.stores.Attendees.PageListMembers(ctx, *listID, f, from, to)
		} else {
			batch, err = s.stores.Attendees.Page(ctx, f, from, to)
		}
		if err != nil {
			return translate(err, "list not found")
		}

		for _, a := range batch {
			var hsID string
			if a.HealthSystemID != nil {
				hsID = a.HealthSystemID.String()
			}
			row := []string{
				a.FirstName, a.LastName, a.Email, a.Phone, a.LinkedInURL,
				a.Title, a.Company, a.Notes,
				strings.Join(a.Certifications, ";"), hsID,
			}
			if err := cw.Write(row); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "csv write failed")
			}
		}
		if len(batch) < exportBatchSize {
			break
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "csv write failed")
	}
	return nil
}
