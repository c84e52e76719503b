// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package postgres implements the note and mention repositories using
// PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/notes"
	"github.com/lorekeep/lorekeep/internal/world"
)

// NoteRepository implements notes.Repository using PostgreSQL.
type NoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create persists a new note.
// Creation-time validation happens before this call.
func (r *NoteRepository) Create(ctx context.Context, n *notes.Note) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notes (id, entity_id, author_id, visibility, campaign_id, character_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID.String(), n.EntityID.String(), n.AuthorID.String(), string(n.Visibility),
		ulidToStringPtr(n.CampaignID), ulidToStringPtr(n.CharacterID), n.Body, n.CreatedAt)
	if err != nil {
		return oops.With("operation", "create note").With("id", n.ID.String()).Wrap(err)
	}
	return nil
}

// Get retrieves a note by ID.
func (r *NoteRepository) Get(ctx context.Context, id ulid.ULID) (*notes.Note, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, entity_id, author_id, visibility, campaign_id, character_id, body, created_at
		FROM notes WHERE id = $1
	`, id.String())

	n, err := scanNoteRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOT_FOUND").With("id", id.String()).Wrap(world.ErrNotFound)
	}
	if err != nil {
		return nil, oops.With("operation", "get note").With("id", id.String()).Wrap(err)
	}
	return n, nil
}

// ListByEntity returns all notes on an entity, newest first.
func (r *NoteRepository) ListByEntity(ctx context.Context, entityID ulid.ULID) ([]*notes.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_id, author_id, visibility, campaign_id, character_id, body, created_at
		FROM notes WHERE entity_id = $1 ORDER BY id DESC
	`, entityID.String())
	if err != nil {
		return nil, oops.With("operation", "list notes by entity").
			With("entity_id", entityID.String()).
			Wrap(err)
	}
	defer rows.Close()

	result := make([]*notes.Note, 0)
	for rows.Next() {
		n, err := scanNoteRow(rows)
		if err != nil {
			return nil, oops.With("operation", "scan note row").Wrap(err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate notes").Wrap(err)
	}
	return result, nil
}

// scanNoteRow scans one note from a row.
func scanNoteRow(row pgx.Row) (*notes.Note, error) {
	var n notes.Note
	var idStr, entityIDStr, authorIDStr, visibilityStr string
	var campaignIDStr, characterIDStr *string

	err := row.Scan(&idStr, &entityIDStr, &authorIDStr, &visibilityStr,
		&campaignIDStr, &characterIDStr, &n.Body, &n.CreatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.With("operation", "scan note").Wrap(err)
	}

	if n.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.With("operation", "parse note id").With("id", idStr).Wrap(err)
	}
	if n.EntityID, err = ulid.Parse(entityIDStr); err != nil {
		return nil, oops.With("operation", "parse entity_id").With("entity_id", entityIDStr).Wrap(err)
	}
	if n.AuthorID, err = ulid.Parse(authorIDStr); err != nil {
		return nil, oops.With("operation", "parse author_id").With("author_id", authorIDStr).Wrap(err)
	}
	n.Visibility = notes.Visibility(visibilityStr)
	if n.CampaignID, err = parseOptionalULID(campaignIDStr, "campaign_id"); err != nil {
		return nil, err
	}
	if n.CharacterID, err = parseOptionalULID(characterIDStr, "character_id"); err != nil {
		return nil, err
	}
	return &n, nil
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL
// parameters. Returns nil if the input is nil.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer into a ULID
// pointer. Returns nil if the input is nil.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// Compile-time interface check.
var _ notes.Repository = (*NoteRepository)(nil)
