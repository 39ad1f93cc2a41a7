package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/quickcollect/internal/tui"
	"github.com/idilsaglam/quickcollect/internal/ui"
)

// usageError marks errors that should exit with code 2.
type usageError struct{ error }

func usage(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{fmt.Errorf("%s: %w (usage: %s)", cmd.Name(), err, cmd.UseLine())}
		}
		return nil
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, newApp(), args)
}

func run(ctx context.Context, a *App, args []string) int {
	root := NewRootCmd(a)
	root.SetArgs(args)
	root.SetIn(a.In)
	root.SetOut(a.Out)
	root.SetErr(a.Err)

	err := root.ExecuteContext(ctx)
	if cerr := a.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil {
		return 0
	}
	ui.SetOutput(a.Out, a.Err)
	ui.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "quickcollect",
		Short: "Collect product records and paste them into a spreadsheet",
		Long: `quickcollect captures product records (title, image, price, stock,
description, remarks), can rewrite descriptions with Gemini, and copies the
collection as tab-separated rows for spreadsheet paste.

Run without arguments to open the interactive collector.`,
		Example: strings.TrimSpace(`
  quickcollect
  quickcollect add "Ceramic mug" --price 12.50 --stock 40 --desc "350ml, dishwasher safe" --optimize
  quickcollect ls
  quickcollect export
  quickcollect rm 3f1c...`),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          wrapArgs(cobra.NoArgs),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.applyTheme()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.Controller(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), ctrl, a.Logger)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.ConfigPath, "config", "", "config file (default: user config dir/quickcollect/config.yaml)")
	pf.StringVar(&a.DataDir, "data-dir", "", "directory holding items, logs and credentials")
	pf.StringVar(&a.Backend, "storage", "", "storage backend: json or sqlite")
	pf.StringVar(&a.Theme, "theme", "", "output theme: classic, neon or mono")
	pf.BoolVarP(&a.Verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newRemoveCmd(a),
		newExportCmd(a),
		newCopyCmd(a),
		newOptimizeCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newConfigCmd(a),
	)
	return root
}
