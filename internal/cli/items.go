package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/quickcollect/internal/enhance"
	"github.com/idilsaglam/quickcollect/internal/model"
	"github.com/idilsaglam/quickcollect/internal/store"
	"github.com/idilsaglam/quickcollect/internal/ui"
)

func newAddCmd(a *App) *cobra.Command {
	var (
		d         model.Draft
		imagePath string
		optimize  bool
	)
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Collect a new item (title can be multiple words)",
		Args:  wrapArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d.Title = strings.TrimSpace(strings.Join(args, " "))
			if d.Title == "" {
				return usage("add: empty title")
			}
			if imagePath != "" {
				uri, err := model.ImageDataURI(imagePath)
				if err != nil {
					return err
				}
				d.Image = uri
			}
			ctrl, err := a.Controller(ctx)
			if err != nil {
				return err
			}
			if optimize && enhance.CanOptimize(d.Title, d.Description) {
				d.Description = ctrl.Optimize(ctx, d.Title, d.Description)
			}
			n, err := ctrl.Save(ctx, d)
			switch {
			case errors.Is(err, model.ErrEmptyTitle), errors.Is(err, model.ErrNotNumeric):
				return usageError{fmt.Errorf("add: %w", err)}
			case errors.Is(err, store.ErrNotPersisted):
				return fmt.Errorf("add: %w", err)
			case err != nil:
				return err
			}
			ui.OK(n.Text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Price, "price", "", "price as entered, e.g. 9.99")
	f.StringVar(&d.Stock, "stock", "", "stock count")
	f.StringVarP(&d.Description, "desc", "d", "", "description")
	f.StringVar(&d.Remarks, "remarks", "", "free-form remarks")
	f.StringVar(&imagePath, "image", "", "image file to embed")
	f.BoolVar(&optimize, "optimize", false, "rewrite the description with AI before saving")
	return cmd
}

func newListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List collected items, newest first",
		Args:    wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.Items(cmd.Context())
			if err != nil {
				return err
			}
			ui.Panel(listLines(items.List()))
			return nil
		},
	}
}

func newRemoveCmd(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item after confirmation",
		Args:    wrapArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctrl, err := a.Controller(ctx)
			if err != nil {
				return err
			}
			items, err := a.Items(ctx)
			if err != nil {
				return err
			}
			id, err := resolveID(items, args[0])
			if err != nil {
				return err
			}
			it, err := ctrl.RequestDelete(id)
			if err != nil {
				return err
			}
			if !yes && !confirm(a, fmt.Sprintf("Delete %q? [y/N] ", it.Title)) {
				ctrl.CancelDelete()
				ui.Warn("not deleted")
				return nil
			}
			if _, err := ctrl.ConfirmDelete(ctx); err != nil {
				return err
			}
			ui.OK("removed")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// resolveID accepts a full id, a unique id prefix, or a 1-based list index.
func resolveID(items *store.Items, arg string) (string, error) {
	if _, ok := items.Get(arg); ok {
		return arg, nil
	}
	list := items.List()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(list) {
			return "", usage("index out of range: have %d, got %d", len(list), n)
		}
		return list[n-1].ID, nil
	}
	var match []string
	for _, it := range list {
		if strings.HasPrefix(it.ID, arg) {
			match = append(match, it.ID)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return "", usage("no item matches %q (run `quickcollect ls`)", arg)
	}
	return "", usage("%q matches %d items; use more characters", arg, len(match))
}

func confirm(a *App, prompt string) bool {
	fmt.Fprint(a.Out, prompt)
	line, err := bufio.NewReader(a.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// -------------- rendering helpers --------------

// complete counts items with every optional field filled in.
func complete(items []model.Item) (full, partial int) {
	for _, it := range items {
		if it.Image != "" && it.Description != "" && it.Price != "" && it.Stock != "" {
			full++
		} else {
			partial++
		}
	}
	return
}

func listLines(items []model.Item) []string {
	t := ui.Current()
	full, partial := complete(items)
	lines := []string{
		fmt.Sprintf("%s  %s %d  %s %d",
			ui.C(t.Title, "Collected"),
			ui.C(t.Success, "complete"), full,
			ui.C(t.Pending, "partial"), partial,
		),
		ui.C(t.Muted, ui.ProgressBar(full, full+partial, 28)),
		"",
	}
	if len(items) == 0 {
		lines = append(lines, ui.C(t.Muted, "no items yet"))
	}
	for i, it := range items {
		mark := ui.C(t.Muted, t.NoImageMark)
		if it.Image != "" {
			mark = ui.C(t.Success, t.ImageMark)
		}
		price := string(it.Price)
		if price == "" {
			price = "0.00"
		}
		stock := string(it.Stock)
		if stock == "" {
			stock = "0"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s  %s  %s",
			ui.Dim(fmt.Sprintf("%2d.", i+1)),
			mark,
			ui.Truncate(it.Title, 48),
			ui.C(t.Accent, "¥"+price),
			ui.C(t.Muted, "stock "+stock),
		))
		detail := ui.C(t.Muted, "   "+shortID(it.ID)+"  "+it.Created().Format("2006-01-02 15:04"))
		if desc := strings.Join(strings.Fields(it.Description), " "); desc != "" {
			detail += "  " + ui.Truncate(desc, 60)
		}
		lines = append(lines, detail)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: `quickcollect export` copies everything for spreadsheet paste"))
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
