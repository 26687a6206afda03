//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package main

import (
	"context"
	"log"
	"os"

	"github.com/fieldgate/permengine/cmd/fpe/subcommands/lint"
	"github.com/fieldgate/permengine/cmd/fpe/subcommands/seed"
	"github.com/fieldgate/permengine/cmd/fpe/subcommands/serve"
	"github.com/fieldgate/permengine/cmd/fpe/subcommands/test"
	"github.com/fieldgate/permengine/cmd/fpe/version"
	"github.com/fieldgate/permengine/internal/logging"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("fpe")

func seedFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "seed",
		Aliases: []string{"s"},
		Usage:   "Load a permission seed from `FILE`.  Can be specified multiple times.",
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "fpe",
		Usage:   "A CLI application for working with the Fieldgate Permission Engine",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "Emit decision records to stderr for commands that normally suppress them",
				Value:   logger.IsTraceEnabled(),
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print decision records",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "test",
				Usage: "Invokes various aspects of the decision flow, simplifying seed authoring and verification",
				Commands: []*cli.Command{
					{
						Name:  "decision",
						Usage: "Invokes a permission decision based on a request expression using one or more seed files",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "input",
								Aliases: []string{"i"},
								Usage:   "Load request expression from 'FILE', or use '-' for stdin",
							},
							seedFlag(),
						},
						Action: test.ExecuteDecision,
					},
					{
						Name:  "suite",
						Usage: "Runs a suite of decision tests from a YAML file",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{
								Name:  "test",
								Usage: "Run only tests whose name matches the glob pattern.  Can be specified multiple times.",
							},
							&cli.StringFlag{
								Name:    "input",
								Aliases: []string{"i"},
								Usage:   "Load the test suite from `FILE`",
							},
							seedFlag(),
						},
						Action: test.ExecuteDecisions,
					},
				},
			},
			{
				Name:  "serve",
				Usage: "Creates a decision-point service",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "The TCP port to serve on.",
						Value:   9000,
					},
					seedFlag(),
				},
				Action: serve.Execute,
			},
			{
				Name:  "lint",
				Usage: "Validate permission seed YAML files for syntax and cross-reference errors",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Seed YAML file to lint (.yml, .yaml). Can be specified multiple times.",
						Required: true,
					},
				},
				Action: lint.Execute,
			},
			{
				Name:  "seed",
				Usage: "Manage the seeded rule set",
				Commands: []*cli.Command{
					{
						Name:  "push",
						Usage: "Mirror the flattened rule set of one or more seed files into the Postgres rule cache",
						Flags: []cli.Flag{
							seedFlag(),
							&cli.StringFlag{
								Name:  "dsn",
								Usage: "Postgres connection string.  Defaults to the pgcache.dsn configuration key.",
							},
							&cli.StringFlag{
								Name:  "table",
								Usage: "Rule cache table name.  Defaults to the pgcache.table configuration key.",
							},
						},
						Action: seed.ExecutePush,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
