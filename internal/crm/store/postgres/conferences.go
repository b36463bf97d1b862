package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/pkg/platform/sentinel"
)

const conferenceColumns = `id, name, start_date, end_date, location, created_at, updated_at`

// ConferenceStore persists conferences in PostgreSQL.
type ConferenceStore struct {
	pool *pgxpool.Pool
}

func NewConferenceStore(pool *pgxpool.Pool) *ConferenceStore {
	return &ConferenceStore{pool: pool}
}

func (s *ConferenceStore) Count(ctx context.Context, f query.Filter) (int, error) {
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionConferences)

	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM conferences"+b.where(), b.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count conferences: %w", err)
	}
	return count, nil
}

// Page returns conferences newest first, so upcoming events surface before
// historical ones.
func (s *ConferenceStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.Conference, error) {
	if to < from {
		return []models.Conference{}, nil
	}
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionConferences)

	stmt := fmt.Sprintf("SELECT %s FROM conferences%s ORDER BY start_date DESC, id ASC LIMIT %d OFFSET %d",
		conferenceColumns, b.where(), to-from+1, from)
	rows, err := s.pool.Query(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("page conferences: %w", err)
	}
	defer rows.Close()

	conferences := []models.Conference{}
	for rows.Next() {
		var c models.Conference
		if err := rows.Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Location,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conference: %w", err)
		}
		conferences = append(conferences, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read conferences: %w", err)
	}
	return conferences, nil
}

func (s *ConferenceStore) Get(ctx context.Context, id uuid.UUID) (models.Conference, error) {
	var c models.Conference
	stmt := fmt.Sprintf("SELECT %s FROM conferences WHERE id = $1", conferenceColumns)
	err := s.pool.QueryRow(ctx, stmt, id).Scan(&c.ID, &c.Name, &c.StartDate,
		&c.EndDate, &c.Location, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return models.Conference{}, sentinel.ErrNotFound
		}
		return models.Conference{}, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

func (s *ConferenceStore) Create(ctx context.Context, c models.Conference) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO conferences
		(id, name, start_date, end_date, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.StartDate, c.EndDate, c.Location, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create conference: %w", err)
	}
	return nil
}

func (s *ConferenceStore) Update(ctx context.Context, c models.Conference) error {
	tag, err := s.pool.Exec(ctx, `UPDATE conferences SET
		name = $2, start_date = $3, end_date = $4, location = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.StartDate, c.EndDate, c.Location, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *ConferenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM conferences WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete conference: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
