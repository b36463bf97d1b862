// Package postgres implements the CRM stores over PostgreSQL via pgx.
//
// The schema is assumed provisioned (migration tooling is out of scope); the
// Schema constant documents the expected DDL and is applied by the
// integration-test containers.
package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"confcrm/internal/crm/store"
)

// Schema is the DDL the stores expect. health_system_id is a soft reference
// by design: the dashboard tolerates dangling employers rather than rejecting
// imports, so no FK is declared on it.
const Schema = `
CREATE TABLE IF NOT EXISTS health_systems (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	external_id TEXT NOT NULL DEFAULT '',
	street      TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	zip         TEXT NOT NULL DEFAULT '',
	website     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attendees (
	id               UUID PRIMARY KEY,
	first_name       TEXT NOT NULL DEFAULT '',
	last_name        TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	phone            TEXT NOT NULL DEFAULT '',
	linkedin_url     TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	company          TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	certifications   TEXT[] NOT NULL DEFAULT '{}',
	health_system_id UUID,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS conferences (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date   DATE NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attendee_conferences (
	attendee_id   UUID NOT NULL REFERENCES attendees (id) ON DELETE CASCADE,
	conference_id UUID NOT NULL REFERENCES conferences (id) ON DELETE CASCADE,
	PRIMARY KEY (attendee_id, conference_id)
);

CREATE TABLE IF NOT EXISTS lists (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS list_members (
	list_id     UUID NOT NULL REFERENCES lists (id) ON DELETE CASCADE,
	attendee_id UUID NOT NULL REFERENCES attendees (id) ON DELETE CASCADE,
	PRIMARY KEY (list_id, attendee_id)
);
`

// NewStores wires all four Postgres-backed stores onto one pool.
func NewStores(pool *pgxpool.Pool) store.Stores {
	return store.Stores{
		Attendees:     NewAttendeeStore(pool),
		HealthSystems: NewHealthSystemStore(pool),
		Conferences:   NewConferenceStore(pool),
		Lists:         NewListStore(pool),
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// uuidStrings converts ids for ANY($n::uuid[]) binding.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
