// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lorekeep/lorekeep/internal/mentions"
)

// MentionRepository implements mentions.Repository using PostgreSQL.
type MentionRepository struct {
	pool *pgxpool.Pool
}

// NewMentionRepository creates a new MentionRepository.
func NewMentionRepository(pool *pgxpool.Pool) *MentionRepository {
	return &MentionRepository{pool: pool}
}

// Create persists a new mention.
func (r *MentionRepository) Create(ctx context.Context, m *mentions.Mention) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mentions (id, note_id, source_entity_id, target_entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID.String(), m.NoteID.String(), m.SourceEntityID.String(), m.TargetEntityID.String(), m.CreatedAt)
	if err != nil {
		return oops.With("operation", "create mention").With("id", m.ID.String()).Wrap(err)
	}
	return nil
}

// ListByTarget returns all mentions pointing at the target entity.
func (r *MentionRepository) ListByTarget(ctx context.Context, targetEntityID ulid.ULID) ([]*mentions.Mention, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, note_id, source_entity_id, target_entity_id, created_at
		FROM mentions WHERE target_entity_id = $1 ORDER BY id
	`, targetEntityID.String())
	if err != nil {
		return nil, oops.With("operation", "list mentions by target").
			With("target_entity_id", targetEntityID.String()).
			Wrap(err)
	}
	defer rows.Close()

	result := make([]*mentions.Mention, 0)
	for rows.Next() {
		var m mentions.Mention
		var idStr, noteIDStr, sourceIDStr, targetIDStr string
		if err := rows.Scan(&idStr, &noteIDStr, &sourceIDStr, &targetIDStr, &m.CreatedAt); err != nil {
			return nil, oops.With("operation", "scan mention").Wrap(err)
		}
		if m.ID, err = ulid.Parse(idStr); err != nil {
			return nil, oops.With("operation", "parse mention id").With("id", idStr).Wrap(err)
		}
		if m.NoteID, err = ulid.Parse(noteIDStr); err != nil {
			return nil, oops.With("operation", "parse note_id").With("note_id", noteIDStr).Wrap(err)
		}
		if m.SourceEntityID, err = ulid.Parse(sourceIDStr); err != nil {
			return nil, oops.With("operation", "parse source_entity_id").With("source_entity_id", sourceIDStr).Wrap(err)
		}
		if m.TargetEntityID, err = ulid.Parse(targetIDStr); err != nil {
			return nil, oops.With("operation", "parse target_entity_id").With("target_entity_id", targetIDStr).Wrap(err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate mentions").Wrap(err)
	}
	return result, nil
}

// Compile-time interface check.
var _ mentions.Repository = (*MentionRepository)(nil)
