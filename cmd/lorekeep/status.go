// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorekeep/lorekeep/internal/config"
	"github.com/lorekeep/lorekeep/internal/store"
)

// Status holds the health information reported by the status command.
type Status struct {
	Database         string `json:"database"`
	SchemaVersion    uint   `json:"schema_version,omitempty"`
	SchemaDirty      bool   `json:"schema_dirty,omitempty"`
	PendingVersions  []uint `json:"pending_versions,omitempty"`
	Observability    string `json:"observability"`
	ObservabilityURL string `json:"observability_url,omitempty"`
}

// statusConfig holds flags for the status subcommand.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	sc := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and server health",
		Long: `Reports schema migration state and whether a running serve process
answers its health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, sc)
		},
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().BoolVar(&sc.jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, sc *statusConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	status := collectStatus(cfg)

	if sc.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

func collectStatus(cfg config.Config) Status {
	status := Status{
		Database:      "unreachable",
		Observability: "down",
	}

	if migrator, err := store.NewMigrator(cfg.Database.URL); err == nil {
		version, dirty, verr := migrator.Version()
		pending, perr := migrator.PendingMigrations()
		_ = migrator.Close()
		if verr == nil && perr == nil {
			status.Database = "ok"
			status.SchemaVersion = version
			status.SchemaDirty = dirty
			status.PendingVersions = pending
		}
	}

	url := "http://" + cfg.Observability.Addr + "/healthz/readiness"
	client := &http.Client{Timeout: 2 * time.Second}
	if resp, err := client.Get(url); err == nil {
		_ = resp.Body.Close()
		status.ObservabilityURL = url
		if resp.StatusCode == http.StatusOK {
			status.Observability = "ready"
		} else {
			status.Observability = "not ready"
		}
	}

	return status
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status Status) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "COMPONENT\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "---------\t------\t------")

	detail := "-"
	if status.Database == "ok" {
		detail = fmt.Sprintf("schema v%d", status.SchemaVersion)
		if status.SchemaDirty {
			detail += " (dirty)"
		}
		if len(status.PendingVersions) > 0 {
			detail += fmt.Sprintf(", %d pending", len(status.PendingVersions))
		}
	}
	_, _ = fmt.Fprintf(w, "database\t%s\t%s\n", status.Database, detail)

	obsDetail := "-"
	if status.ObservabilityURL != "" {
		obsDetail = status.ObservabilityURL
	}
	_, _ = fmt.Fprintf(w, "observability\t%s\t%s\n", status.Observability, obsDetail)

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
