// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lorekeep Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lorekeep/lorekeep/internal/atlas"
	"github.com/lorekeep/lorekeep/internal/config"
	"github.com/lorekeep/lorekeep/internal/store"
	"github.com/lorekeep/lorekeep/internal/world"

	atlaspg "github.com/lorekeep/lorekeep/internal/atlas/postgres"
	worldpg "github.com/lorekeep/lorekeep/internal/world/postgres"
)

// Default timeout for seed database operations.
const defaultSeedTimeout = 30 * time.Second

// rulePack is the YAML document consumed by the seed command: the location
// types of a world and the hierarchy rules between them.
type rulePack struct {
	WorldID string         `yaml:"world_id"`
	Types   []string       `yaml:"types"`
	Rules   []rulePackRule `yaml:"rules"`
}

// rulePackRule names types rather than IDs so packs stay hand-editable.
type rulePackRule struct {
	Parent  string `yaml:"parent"`
	Child   string `yaml:"child"`
	Allowed bool   `yaml:"allowed"`
}

// seedConfig holds flags for the seed subcommand.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	sc := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply a location-type rule pack to a world",
		Long: `Loads a YAML rule pack and creates the listed location types and
hierarchy rules. The command is idempotent: existing types are reused and a
rule row is only appended when it changes the effective permission.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, sc)
		},
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().StringVar(&sc.file, "file", "", "rule pack YAML file (required)")
	cmd.Flags().DurationVar(&sc.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, sc *seedConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	pack, err := loadRulePack(sc.file)
	if err != nil {
		return err
	}
	worldID, err := ulid.Parse(pack.WorldID)
	if err != nil {
		return oops.Code("VALIDATION").With("world_id", pack.WorldID).
			Wrapf(err, "rule pack world_id is not a ULID")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	st, err := store.New(ctx, cfg.Database.URL, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	pool := st.Pool()
	if _, err := worldpg.NewWorldRepository(pool).Get(ctx, worldID); err != nil {
		return oops.With("world_id", worldID.String()).Wrapf(err, "rule pack world not found")
	}

	types := atlaspg.NewTypeRepository(pool)

	byName, err := ensureTypes(ctx, types, worldID, pack.Types)
	if err != nil {
		return err
	}
	for name := range byName {
		cmd.Printf("Type %q ready\n", name)
	}

	applied, err := applyRules(ctx, types, worldID, pack.Rules, byName)
	if err != nil {
		return err
	}

	cmd.Printf("Rule pack applied: %d of %d rules appended\n", applied, len(pack.Rules))
	return nil
}

func loadRulePack(path string) (*rulePack, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("VALIDATION").With("path", path).Wrapf(err, "cannot read rule pack")
	}

	var pack rulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, oops.Code("VALIDATION").With("path", path).Wrapf(err, "cannot parse rule pack")
	}
	if pack.WorldID == "" {
		return nil, oops.Code("VALIDATION").Errorf("rule pack is missing world_id")
	}
	if len(pack.Types) == 0 && len(pack.Rules) == 0 {
		return nil, oops.Code("VALIDATION").Errorf("rule pack declares no types and no rules")
	}
	return &pack, nil
}

// ensureTypes creates missing location types and returns all of them by name.
func ensureTypes(ctx context.Context, types *atlaspg.TypeRepository, worldID ulid.ULID, names []string) (map[string]ulid.ULID, error) {
	byName := make(map[string]ulid.ULID, len(names))

	for _, name := range names {
		existing, err := types.FindTypeByName(ctx, worldID, name)
		if err == nil {
			byName[name] = existing.ID
			continue
		}
		if !errors.Is(err, world.ErrNotFound) {
			return nil, err
		}

		lt, err := atlas.NewLocationType(worldID, name)
		if err != nil {
			return nil, err
		}
		if err := types.CreateType(ctx, lt); err != nil {
			// A concurrent seed may have created it; re-resolve on conflict.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				existing, findErr := types.FindTypeByName(ctx, worldID, name)
				if findErr != nil {
					return nil, findErr
				}
				byName[name] = existing.ID
				continue
			}
			return nil, err
		}
		byName[name] = lt.ID
	}
	return byName, nil
}

// applyRules appends the rule rows whose desired permission differs from the
// current effective one, and returns how many were appended.
func applyRules(ctx context.Context, types *atlaspg.TypeRepository, worldID ulid.ULID, rules []rulePackRule, byName map[string]ulid.ULID) (int, error) {
	applied := 0

	for _, rule := range rules {
		parentID, ok := byName[rule.Parent]
		if !ok {
			return applied, oops.Code("VALIDATION").With("type", rule.Parent).
				Errorf("rule references a type not declared in the pack")
		}
		childID, ok := byName[rule.Child]
		if !ok {
			return applied, oops.Code("VALIDATION").With("type", rule.Child).
				Errorf("rule references a type not declared in the pack")
		}

		log, err := types.RulesForPair(ctx, parentID, childID)
		if err != nil {
			return applied, err
		}
		if atlas.RuleLog(log).Effective(parentID, childID) == rule.Allowed {
			continue
		}

		row, err := atlas.NewTypeRule(worldID, parentID, childID, rule.Allowed)
		if err != nil {
			return applied, err
		}
		if err := types.AppendRule(ctx, row); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}
