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

const healthSystemColumns = `id, name, external_id, street, city, state, zip, website, created_at, updated_at`

// HealthSystemStore persists health systems in PostgreSQL.
type HealthSystemStore struct {
	pool *pgxpool.Pool
}

func NewHealthSystemStore(pool *pgxpool.Pool) *HealthSystemStore {
	return &HealthSystemStore{pool: pool}
}

func (s *HealthSystemStore) Count(ctx context.Context, f query.Filter) (int, error) {
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionHealthSystems)

	var count int
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM health_systems"+b.where(), b.args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count health systems: %w", err)
	}
	return count, nil
}

func (s *HealthSystemStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.HealthSystem, error) {
	if to < from {
		return []models.HealthSystem{}, nil
	}
	b := newSQLBuilder()
	query.Apply(b, f, models.CollectionHealthSystems)

	stmt := fmt.Sprintf("SELECT %s FROM health_systems%s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d",
		healthSystemColumns, b.where(), to-from+1, from)
	rows, err := s.pool.Query(ctx, stmt, b.args...)
	if err != nil {
		return nil, fmt.Errorf("page health systems: %w", err)
	}
	defer rows.Close()

	systems := []models.HealthSystem{}
	for rows.Next() {
		var h models.HealthSystem
		if err := rows.Scan(&h.ID, &h.Name, &h.ExternalID, &h.Street, &h.City,
			&h.State, &h.Zip, &h.Website, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan health system: %w", err)
		}
		systems = append(systems, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read health systems: %w", err)
	}
	return systems, nil
}

func (s *HealthSystemStore) Get(ctx context.Context, id uuid.UUID) (models.HealthSystem, error) {
	var h models.HealthSystem
	stmt := fmt.Sprintf("SELECT %s FROM health_systems WHERE id = $1", healthSystemColumns)
	err := s.pool.QueryRow(ctx, stmt, id).Scan(&h.ID, &h.Name, &h.ExternalID,
		&h.Street, &h.City, &h.State, &h.Zip, &h.Website, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return models.HealthSystem{}, sentinel.ErrNotFound
		}
		return models.HealthSystem{}, fmt.Errorf("get health system: %w", err)
	}
	return h, nil
}

func (s *HealthSystemStore) Create(ctx context.Context, h models.HealthSystem) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO health_systems
		(id, name, external_id, street, city, state, zip, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.Name, h.ExternalID, h.Street, h.City, h.State, h.Zip, h.Website,
		h.CreatedAt, h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create health system: %w", err)
	}
	return nil
}

func (s *HealthSystemStore) Update(ctx context.Context, h models.HealthSystem) error {
	tag, err := s.pool.Exec(ctx, `UPDATE health_systems SET
		name = $2, external_id = $3, street = $4, city = $5, state = $6,
		zip = $7, website = $8, updated_at = $9
		WHERE id = $1`,
		h.ID, h.Name, h.ExternalID, h.Street, h.City, h.State, h.Zip, h.Website, h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update health system: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes a health system; dangling attendee references are cleared
// rather than cascaded since the reference is soft.
func (s *HealthSystemStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		"UPDATE attendees SET health_system_id = NULL WHERE health_system_id = $1", id)
	if err != nil {
		return fmt.Errorf("clear attendee employers: %w", err)
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM health_systems WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete health system: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
