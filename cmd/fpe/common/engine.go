package common

import (
	"fmt"
	"io"

	"github.com/fieldgate/permengine/pkg/core"
	"github.com/fieldgate/permengine/pkg/core/decisionlog"
	"github.com/fieldgate/permengine/pkg/core/options"
	"github.com/urfave/cli/v3"
)

// NewCliEngine creates a new permission engine configured from CLI
// command flags. The engine is seeded from every --seed file and writes
// decision records to the given writer.
func NewCliEngine(cmd *cli.Command, stdout io.Writer) (core.Engine, error) {
	seedPaths := cmd.StringSlice("seed")
	if len(seedPaths) == 0 {
		return nil, fmt.Errorf("at least one seed file must be specified")
	}

	pretty := cmd.Root().Bool("pretty")
	return core.NewSeededEngine(seedPaths,
		options.WithDecisionLog(decisionlog.NewIoWriterFactoryWithOptions(stdout,
			decisionlog.Options{PrettyPrint: pretty})))
}
