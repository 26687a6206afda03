//
//  Copyright © Fieldgate Inc. All rights reserved.
//

package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/fieldgate/permengine/cmd/fpe/common"
	"github.com/fieldgate/permengine/internal/logging"
	"github.com/fieldgate/permengine/pkg/decisionpoint/generic"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("fpe")

const agent string = "serve"

// Execute runs the serve command, starting a decision point server over
// the seeded engine. It gracefully shuts down on interrupt signals.
func Execute(ctx context.Context, cmd *cli.Command) error {
	port := cmd.Int("port")

	pe, err := common.NewCliEngine(cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer pe.Close()

	server, err := generic.CreateServer(pe, int(port))
	if err != nil {
		return err
	}

	logger.Infof(agent, "serve", "decision point listening on :%d", port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info(agent, "shutdown", "Shutting down server...")

	err = server.Stop(ctx)
	if err != nil {
		return err
	}

	logger.Info(agent, "shutdown", "Server exited gracefully.")
	return nil
}
