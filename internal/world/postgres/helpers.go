// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

// Package postgres implements the world repositories using PostgreSQL.
package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// parseULID parses a required ULID column value.
func parseULID(s, fieldName string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, oops.With("operation", "parse "+fieldName).With(fieldName, s).Wrap(err)
	}
	return id, nil
}

// scanIDList collects a single-ULID-column result set.
func scanIDList(rows pgx.Rows, fieldName string) ([]ulid.ULID, error) {
	var ids []ulid.ULID
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, oops.With("operation", "scan "+fieldName).Wrap(err)
		}
		id, err := parseULID(s, fieldName)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate "+fieldName).Wrap(err)
	}
	return ids, nil
}
