// Command lifeline drives the Lifeline services from a terminal. State lives
// in the configured storage backend, so the memory backend only lasts for a
// single invocation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/lifeline-agent/internal/bootstrap"
	"github.com/PabloGalante/lifeline-agent/internal/config"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

type appFactory func(ctx context.Context) (*bootstrap.App, error)

// cli carries the state shared by every subcommand.
type cli struct {
	newApp  appFactory
	app     *bootstrap.App
	verbose bool
}

func main() {
	if err := newRootCmd(defaultFactory).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultFactory(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg)
}

func newRootCmd(newApp appFactory) *cobra.Command {
	c := &cli{newApp: newApp}

	root := &cobra.Command{
		Use:           "lifeline",
		Short:         "Emergency first-aid assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.verbose {
				observability.Setup(cmd.ErrOrStderr(), "text", "debug")
			} else {
				observability.Discard()
			}
			app, err := c.newApp(cmd.Context())
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		c.profileCmd(),
		c.contactsCmd(),
		c.conditionsCmd(),
		c.adviseCmd(),
		c.alertCmd(),
	)

	return root
}

// printError shows classified errors with their fixed user-facing message.
func printError(w io.Writer, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", kind, domain.UserMessage(kind))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
