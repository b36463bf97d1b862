package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/pkg/platform/sentinel"
)

const (
	attendeeColumns = `id, first_name, last_name, email, phone, linkedin_url, title,
		company, notes, certifications, health_system_id, created_at, updated_at`
	attendeeOrder = ` ORDER BY last_name ASC, first_name ASC, id ASC`
)

// AttendeeStore persists attendees and their join entities in PostgreSQL.
type AttendeeStore struct {
	pool *pgxpool.Pool
}

// NewAttendeeStore constructs a PostgreSQL-backed attendee store.
func NewAttendeeStore(pool *pgxpool.Pool) *AttendeeStore {
	return &AttendeeStore{pool: pool}
}

func (s *AttendeeStore) Count(ctx context.Context, f query.Filter) (int, error) {
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionAttendees)

	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendees"+b.where(), b.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	return count, nil
}

func (s *AttendeeStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.Attendee, error) {
	if to < from {
		return []models.Attendee{}, nil
	}
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionAttendees)

	stmt := fmt.Sprintf("SELECT %s FROM attendees%s%s LIMIT %d OFFSET %d",
		attendeeColumns, b.where(), attendeeOrder, to-from+1, from)
	rows, err := s.pool.Query(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("page attendees: %w", err)
	}
	defer rows.Close()
	return scanAttendees(rows)
}

// CountListMembers counts list membership without filter clauses: the join
// makes a filtered count structurally different from the membership count the
// dashboard displays, so the asymmetry is deliberate.
func (s *AttendeeStore) CountListMembers(ctx context.Context, listID uuid.UUID) (int, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return 0, err
	}
	var count int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM list_members WHERE list_id = $1", listID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count list members: %w", err)
	}
	return count, nil
}

func (s *AttendeeStore) PageListMembers(ctx context.Context, listID uuid.UUID, f query.Filter, from, to int) ([]models.Attendee, error) {
	if err := s.requireList(ctx, listID); err != nil {
		return nil, err
	}
	if to < from {
		return []models.Attendee{}, nil
	}
	b := newSQLBuilder(listID)
	query.Apply(b, f, models.CollectionAttendees)

	where := "WHERE lm.list_id = $1"
	if extra := b.where(); extra != "" {
		where += " AND " + extra[len(" WHERE "):]
	}
	stmt := fmt.Sprintf(`SELECT %s FROM attendees
		JOIN list_members lm ON lm.attendee_id = attendees.id
		%s%s LIMIT %d OFFSET %d`,
		qualifyAttendeeColumns(), where, attendeeQualifiedOrder(), to-from+1, from)
	rows, err := s.pool.Query(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("page list members: %w", err)
	}
	defer rows.Close()
	return scanAttendees(rows)
}

func (s *AttendeeStore) Get(ctx context.Context, id uuid.UUID) (models.Attendee, error) {
	stmt := fmt.Sprintf("SELECT %s FROM attendees WHERE id = $1", attendeeColumns)
	rows, err := s.pool.Query(ctx, stmt, id)
	if err != nil {
		return models.Attendee{}, fmt.Errorf("get attendee: %w", err)
	}
	defer rows.Close()
	attendees, err := scanAttendees(rows)
	if err != nil {
		return models.Attendee{}, err
	}
	if len(attendees) == 0 {
		return models.Attendee{}, sentinel.ErrNotFound
	}
	a := attendees[0]

	// Embed associated conferences, most recent first.
	confRows, err := s.pool.Query(ctx, `SELECT c.id, c.name, c.start_date, c.end_date, c.location, c.created_at, c.updated_at
		FROM conferences c
		JOIN attendee_conferences ac ON ac.conference_id = c.id
		WHERE ac.attendee_id = $1
		ORDER BY c.start_date DESC`, id)
	if err != nil {
		return models.Attendee{}, fmt.Errorf("get attendee conferences: %w", err)
	}
	defer confRows.Close()
	for confRows.Next() {
		var c models.Conference
		if err := confRows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Location, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return models.Attendee{}, fmt.Errorf("scan conference: %w", err)
		}
		a.Conferences = append(a.Conferences, c)
	}
	if err := confRows.Err(); err != nil {
		return models.Attendee{}, fmt.Errorf("get attendee conferences: %w", err)
	}
	return a, nil
}

func (s *AttendeeStore) Create(ctx context.Context, a models.Attendee) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO attendees
		(id, first_name, last_name, email, phone, linkedin_url, title, company, notes, certifications, health_system_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.LinkedInURL, a.Title,
		a.Company, a.Notes, a.Certifications, a.HealthSystemID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create attendee: %w", err)
	}
	return nil
}

func (s *AttendeeStore) Update(ctx context.Context, a models.Attendee) error {
	tag, err := s.pool.Exec(ctx, `UPDATE attendees SET
		first_name = $2, last_name = $3, email = $4, phone = $5, linkedin_url = $6,
		title = $7, company = $8, notes = $9, certifications = $10,
		health_system_id = $11, updated_at = $12
		WHERE id = $1`,
		a.ID, a.FirstName, a.LastName, a.Email, a.Phone, a.LinkedInURL, a.Title,
		a.Company, a.Notes, a.Certifications, a.HealthSystemID, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update attendee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *AttendeeStore) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, "DELETE FROM attendees WHERE id = ANY($1::uuid[])", uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("delete attendees: %w", err)
	}
	return nil
}

func (s *AttendeeStore) AddConference(ctx context.Context, attendeeID, conferenceID uuid.UUID) error {
	// Duplicate pair: no-op success.
	_, err := s.pool.Exec(ctx, `INSERT INTO attendee_conferences (attendee_id, conference_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, attendeeID, conferenceID)
	if err != nil {
		return fmt.Errorf("add attendee conference: %w", err)
	}
	return nil
}

func (s *AttendeeStore) requireList(ctx context.Context, listID uuid.UUID) error {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1)", listID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanAttendees(rows pgx.Rows) ([]models.Attendee, error) {
	attendees := []models.Attendee{}
	for rows.Next() {
		var a models.Attendee
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.Phone,
			&a.LinkedInURL, &a.Title, &a.Company, &a.Notes, &a.Certifications,
			&a.HealthSystemID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read attendees: %w", err)
	}
	return attendees, nil
}

func qualifyAttendeeColumns() string {
	return `attendees.id, attendees.first_name, attendees.last_name, attendees.email,
		attendees.phone, attendees.linkedin_url, attendees.title, attendees.company,
		attendees.notes, attendees.certifications, attendees.health_system_id,
		attendees.created_at, attendees.updated_at`
}

func attendeeQualifiedOrder() string {
	return " ORDER BY attendees.last_name ASC, attendees.first_name ASC, attendees.id ASC"
}
