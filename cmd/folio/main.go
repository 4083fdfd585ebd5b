// Command folio runs the portfolio server and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	folio "github.com/goliatone/go-folio"
)

type app struct {
	out      io.Writer
	envFiles []string
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Bilingual portfolio CMS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env", []string{".env"}, "dotenv files loaded before FOLIO_* variables")

	root.AddCommand(
		a.serveCommand(),
		a.migrateCommand(),
		a.seedCommand(),
		a.userCommand(),
		a.importCommand(),
	)
	return root
}

// open loads the configuration and wires the module. Callers own Close.
func (a *app) open() (*folio.Module, folio.Config, error) {
	cfg, err := folio.LoadConfig(a.envFiles...)
	if err != nil {
		return nil, cfg, err
	}
	module, err := folio.New(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return module, cfg, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "folio:", err)
		stop()
		os.Exit(1)
	}
}
