//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package pgcache mirrors the seed-generated rule set into a Postgres
// table, for processes that prefer reading the cache at boot over
// re-running every module seed.
//
// The seed programs remain authoritative: a cache push is a full
// replacement of the table within one transaction, and a load-back
// reconstructs the module grouping from each rule's module condition
// token. The table layout is one row per rule:
//
//	target          text
//	permission_kind text
//	effect          text
//	condition       text[]
package pgcache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/core/config"
	"github.com/fieldgate/permengine/pkg/core/model"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("permengine.pgcache")

const agent = "pgcache"

// Cache is a handle on the rule cache table.
type Cache struct {
	db    *sql.DB
	table string
}

// Open connects to the Postgres rule cache at dsn, storing rules in the
// named table.
func Open(dsn, table string) (*Cache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening rule cache")
	}
	return &Cache{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}, nil
}

// OpenFromConfig connects using the pgcache.dsn and pgcache.table
// configuration keys. Returns nil (and no error) when no DSN is
// configured, meaning the cache is disabled.
func OpenFromConfig() (*Cache, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	dsn := config.VConfig.GetString(config.PgCacheDSN)
	if dsn == "" {
		return nil, nil
	}
	return Open(dsn, config.VConfig.GetString(config.PgCacheTable))
}

// EnsureSchema creates the rule table if it does not exist.
func (c *Cache) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (
			target          text   NOT NULL,
			permission_kind text   NOT NULL,
			effect          text   NOT NULL,
			condition       text[] NOT NULL DEFAULT '{}'
		)`, c.table))
	return errors.Wrap(err, "error creating rule cache table")
}

// Replace overwrites the table with the given rules in one transaction.
func (c *Cache) Replace(ctx context.Context, rules []model.Rule) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error starting rule cache transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.table)); err != nil {
		return errors.Wrap(err, "error clearing rule cache")
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (target, permission_kind, effect, condition) VALUES ($1, $2, $3, $4)", c.table))
	if err != nil {
		return errors.Wrap(err, "error preparing rule cache insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rules {
		r = r.Normalize()
		if _, err := stmt.ExecContext(ctx, string(r.Target), string(r.Kind), string(r.Effect),
			pq.Array([]string(r.Conditions))); err != nil {
			return errors.Wrapf(err, "error caching rule for %q", r.Target)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing rule cache")
	}

	logger.SysInfof("cached %d rules", len(rules))
	return nil
}

// Load reads every cached rule back, in table order.
func (c *Cache) Load(ctx context.Context) ([]model.Rule, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT target, permission_kind, effect, condition FROM %s ORDER BY target, permission_kind, effect", c.table))
	if err != nil {
		return nil, errors.Wrap(err, "error reading rule cache")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Rule
	for rows.Next() {
		var (
			target, kind, effect string
			conditions           pq.StringArray
		)
		if err := rows.Scan(&target, &kind, &effect, &conditions); err != nil {
			return nil, errors.Wrap(err, "error scanning cached rule")
		}
		out = append(out, model.Rule{
			Target:     model.Target(target),
			Kind:       model.Kind(kind),
			Effect:     model.Effect(effect),
			Conditions: model.ConditionSet(conditions),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error reading rule cache")
	}

	logger.Debugf(agent, "Load", "loaded %d cached rules", len(out))
	return out, nil
}

// Close releases the database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GroupByModule reconstructs the module grouping the rule store loads
// from, using each rule's "module=<name>" condition token. Rules
// without one land under the empty module name.
func GroupByModule(rules []model.Rule) map[string][]model.Rule {
	out := make(map[string][]model.Rule)
	for _, r := range rules {
		module := ""
		for _, token := range r.Conditions {
			if name, ok := strings.CutPrefix(token, "module="); ok {
				module = name
				break
			}
		}
		out[module] = append(out[module], r)
	}
	return out
}
