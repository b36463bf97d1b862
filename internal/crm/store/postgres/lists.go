package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"confcrm/internal/crm/models"
	"confcrm/pkg/platform/sentinel"
)

// ListStore persists attendee lists and their memberships in PostgreSQL.
type ListStore struct {
	pool *pgxpool.Pool
}

func NewListStore(pool *pgxpool.Pool) *ListStore {
	return &ListStore{pool: pool}
}

// All returns every list with its derived member count, newest first.
func (s *ListStore) All(ctx context.Context) ([]models.List, error) {
	rows, err := s.pool.Query(ctx, `SELECT l.id, l.name, l.created_at, COUNT(lm.attendee_id)
		FROM lists l
		LEFT JOIN list_members lm ON lm.list_id = l.id
		GROUP BY l.id, l.name, l.created_at
		ORDER BY l.created_at DESC, l.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var l models.List
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt, &l.MemberCount); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read lists: %w", err)
	}
	return lists, nil
}

func (s *ListStore) Get(ctx context.Context, id uuid.UUID) (models.List, error) {
	var l models.List
	err := s.pool.QueryRow(ctx, `SELECT l.id, l.name, l.created_at, COUNT(lm.attendee_id)
		FROM lists l
		LEFT JOIN list_members lm ON lm.list_id = l.id
		WHERE l.id = $1
		GROUP BY l.id, l.name, l.created_at`, id).
		Scan(&l.ID, &l.Name, &l.CreatedAt, &l.MemberCount)
	if err != nil {
		if isNoRows(err) {
			return models.List{}, sentinel.ErrNotFound
		}
		return models.List{}, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

func (s *ListStore) Create(ctx context.Context, l models.List) error {
	_, err := s.pool.Exec(ctx, "INSERT INTO lists (id, name, created_at) VALUES ($1, $2, $3)",
		l.ID, l.Name, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create list: %w", err)
	}
	return nil
}

func (s *ListStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM lists WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// AddMembers inserts membership pairs in one statement; existing pairs are
// skipped so the operation stays idempotent.
func (s *ListStore) AddMembers(ctx context.Context, listID uuid.UUID, attendeeIDs []uuid.UUID) error {
	if len(attendeeIDs) == 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM lists WHERE id = $1)", listID).Scan(&exists); err != nil {
		return fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO list_members (list_id, attendee_id)
		SELECT $1, unnest($2::uuid[])
		ON CONFLICT DO NOTHING`, listID, uuidStrings(attendeeIDs))
	if err != nil {
		return fmt.Errorf("add list members: %w", err)
	}
	return nil
}

func (s *ListStore) RemoveMember(ctx context.Context, listID, attendeeID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM list_members WHERE list_id = $1 AND attendee_id = $2", listID, attendeeID)
	if err != nil {
		return fmt.Errorf("remove list member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
