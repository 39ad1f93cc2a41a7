package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/quickcollect/internal/app"
	"github.com/idilsaglam/quickcollect/internal/export"
	"github.com/idilsaglam/quickcollect/internal/ui"
)

func exporterFor(a *App) (export.Exporter, error) {
	cfg, err := a.Config()
	if err != nil {
		return export.Exporter{}, err
	}
	return export.Exporter{
		Header:        export.HeaderFor(cfg.Export.Locale),
		FlattenSingle: cfg.Export.FlattenSingleRow,
	}, nil
}

func newExportCmd(a *App) *cobra.Command {
	var stdout bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy all items as a tab-separated table",
		Args:  wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if stdout {
				items, err := a.Items(ctx)
				if err != nil {
					return err
				}
				e, err := exporterFor(a)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.Out, e.All(items.List()))
				return nil
			}
			ctrl, err := a.Controller(ctx)
			if err != nil {
				return err
			}
			n, err := ctrl.ExportAll()
			if errors.Is(err, app.ErrNothingToExport) {
				ui.Warn("no items to export")
				return nil
			}
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("copied %d rows; paste into your spreadsheet", n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of copying to the clipboard")
	return cmd
}

func newCopyCmd(a *App) *cobra.Command {
	var stdout bool
	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy one item as a single tab-separated row",
		Args:  wrapArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			items, err := a.Items(ctx)
			if err != nil {
				return err
			}
			id, err := resolveID(items, args[0])
			if err != nil {
				return err
			}
			if stdout {
				e, err := exporterFor(a)
				if err != nil {
					return err
				}
				it, _ := items.Get(id)
				fmt.Fprintln(a.Out, e.One(it))
				return nil
			}
			ctrl, err := a.Controller(ctx)
			if err != nil {
				return err
			}
			if err := ctrl.ExportOne(id); err != nil {
				return err
			}
			ui.OK("copied 1 row")
			return nil
		},
	}
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print instead of copying to the clipboard")
	return cmd
}
