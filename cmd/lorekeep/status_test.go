// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStatusTable(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		out := formatStatusTable(Status{
			Database:         "ok",
			SchemaVersion:    1,
			Observability:    "ready",
			ObservabilityURL: "http://127.0.0.1:9100/healthz/readiness",
		})

		assert.Contains(t, out, "COMPONENT")
		assert.Contains(t, out, "database")
		assert.Contains(t, out, "schema v1")
		assert.Contains(t, out, "ready")
	})

	t.Run("dirty schema with pending migrations", func(t *testing.T) {
		out := formatStatusTable(Status{
			Database:        "ok",
			SchemaVersion:   2,
			SchemaDirty:     true,
			PendingVersions: []uint{3},
			Observability:   "down",
		})

		assert.Contains(t, out, "(dirty)")
		assert.Contains(t, out, "1 pending")
		assert.Contains(t, out, "down")
	})

	t.Run("unreachable database", func(t *testing.T) {
		out := formatStatusTable(Status{
			Database:      "unreachable",
			Observability: "down",
		})

		assert.Contains(t, out, "unreachable")
		assert.NotContains(t, out, "schema v")
	})
}

func TestStatus_JSONShape(t *testing.T) {
	data, err := json.Marshal(Status{
		Database:      "ok",
		SchemaVersion: 1,
		Observability: "ready",
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "ok", decoded["database"])
	assert.Equal(t, float64(1), decoded["schema_version"])
	assert.NotContains(t, decoded, "pending_versions", "empty slice should be omitted")
}
