package cli

import (
	"fmt"

	"github.com/alexanderramin/disburse/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(newConfigShowCmd(app), newConfigInitCmd(app))
	return cmd
}

func (a *App) configPath() string {
	if a.ConfigPath != "" {
		return a.ConfigPath
	}
	return config.Path()
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg := app.Config
			path := app.configPath()

			fmt.Fprintf(out, "  Config file: %s\n", path)
			if config.Exists(path) {
				fmt.Fprintln(out, "  Status: loaded")
			} else {
				fmt.Fprintln(out, "  Status: using defaults (no config file)")
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  [General]")
			dbPath, err := cfg.ResolveDBPath()
			if err != nil {
				dbPath = "unresolved: " + err.Error()
			}
			fmt.Fprintf(out, "    Database: %s\n", dbPath)
			fmt.Fprintf(out, "    Language: %s\n", app.Lang)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  [Currency]")
			fmt.Fprintf(out, "    Code:         %s\n", cfg.Currency.Code)
			fmt.Fprintf(out, "    Minor digits: %d\n", cfg.Currency.MinorDigits)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  [Log]")
			fmt.Fprintf(out, "    Enabled: %v\n", cfg.Log.Enabled)
			fmt.Fprintf(out, "    Level:   %s\n", cfg.Log.Level)
			fmt.Fprintf(out, "    Format:  %s\n", cfg.Log.Format)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  [Backend]")
			if cfg.Backend.BaseURL != "" {
				fmt.Fprintf(out, "    Base URL:    %s\n", cfg.Backend.BaseURL)
			} else {
				fmt.Fprintln(out, "    Base URL:    not configured (submit disabled)")
			}
			if cfg.Backend.Token != "" {
				fmt.Fprintf(out, "    Token:       %s\n", maskToken(cfg.Backend.Token))
			} else {
				fmt.Fprintln(out, "    Token:       not configured")
			}
			fmt.Fprintf(out, "    Timeout:     %dms\n", cfg.Backend.TimeoutMs)
			fmt.Fprintf(out, "    Max retries: %d\n", cfg.Backend.MaxRetries)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  Run `disburse config init` to write a starter file.")
			return nil
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.configPath()
			if config.Exists(path) && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// maskToken keeps only the last four characters visible.
func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
