package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/quickcollect/internal/enhance"
	"github.com/idilsaglam/quickcollect/internal/ui"
)

func newOptimizeCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <title> [description...]",
		Short: "Print an AI-rewritten description (the original on failure)",
		Args:  wrapArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := args[0]
			desc := strings.Join(args[1:], " ")
			if !enhance.CanOptimize(title, desc) {
				return usage("optimize: empty title and description")
			}
			e, err := a.Enhancer(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Out, e.Optimize(cmd.Context(), title, desc))
			return nil
		},
	}
}

func newLoginCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <api-key>",
		Short: "Store the Gemini API key used for description rewriting",
		Args:  wrapArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			if err := cfg.SaveCredential(args[0]); err != nil {
				return err
			}
			ui.OK("api key saved")
			return nil
		},
	}
}

func newLogoutCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			if err := cfg.DeleteCredential(); err != nil {
				return err
			}
			ui.OK("api key removed")
			return nil
		},
	}
}

func newConfigCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (api key redacted)",
		Args:  wrapArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.Config()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = a.Out.Write(out)
			return err
		},
	}
}
