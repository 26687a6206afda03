//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package seed

import (
	"context"
	"fmt"

	"github.com/fieldgate/permengine/pkg/core/config"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/fieldgate/permengine/pkg/seeds/pgcache"
	"github.com/fieldgate/permengine/pkg/seeds/registry"
	"github.com/urfave/cli/v3"
)

// ExecutePush loads the given seed files and mirrors the flattened rule
// set into the Postgres rule cache, replacing its previous contents.
func ExecutePush(ctx context.Context, cmd *cli.Command) error {
	seedPaths := cmd.StringSlice("seed")
	if len(seedPaths) == 0 {
		return fmt.Errorf("at least one seed file must be specified")
	}

	r, err := registry.NewRegistry(seedPaths)
	if err != nil {
		return err
	}

	if err := config.Load(); err != nil {
		return err
	}
	dsn := cmd.String("dsn")
	if dsn == "" {
		dsn = config.VConfig.GetString(config.PgCacheDSN)
	}
	if dsn == "" {
		return fmt.Errorf("no DSN specified; use --dsn or set %s_PGCACHE_DSN", config.EnvVarPrefix)
	}
	table := cmd.String("table")
	if table == "" {
		table = config.VConfig.GetString(config.PgCacheTable)
	}

	cache, err := pgcache.Open(dsn, table)
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	if err := cache.EnsureSchema(ctx); err != nil {
		return err
	}

	var rules []model.Rule
	for _, moduleRules := range r.Rules() {
		rules = append(rules, moduleRules...)
	}
	if err := cache.Replace(ctx, rules); err != nil {
		return err
	}

	fmt.Printf("pushed %d rules from %d module(s)\n", len(rules), len(r.Modules()))
	return nil
}
