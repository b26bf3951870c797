package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/internal/cli"
	"github.com/matzehuels/deeptime/pkg/config"
	"github.com/matzehuels/deeptime/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config.LoadDotenv()

	err := run(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "deeptime:", errors.UserMessage(err))
	}
	os.Exit(exitCode(err))
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level must be set before the command's own pre-run loads config.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig != nil {
			return loadConfig(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps an error to a sysexits(3) status so scripts can tell a bad
// view from a missing dataset or an unreachable store. 130 is the shell
// convention for SIGINT.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if stderrors.Is(err, context.Canceled) {
		return 130
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidViewport, errors.ErrCodeInvalidTransform,
		errors.ErrCodeInvalidRange, errors.ErrCodeInvalidFormat:
		return 64 // EX_USAGE
	case errors.ErrCodeInvalidDataset:
		return 65 // EX_DATAERR
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return 66 // EX_NOINPUT
	case errors.ErrCodeStorage, errors.ErrCodeUnsupported:
		return 69 // EX_UNAVAILABLE
	case errors.ErrCodeTimeout:
		return 75 // EX_TEMPFAIL
	case errors.ErrCodeInvalidConfig:
		return 78 // EX_CONFIG
	}
	return 1
}
