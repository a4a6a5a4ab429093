package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/richxcame/currencies/internal/currency"
	"github.com/richxcame/currencies/pkg/config"
	"github.com/richxcame/currencies/pkg/database"
	"github.com/richxcame/currencies/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const serviceName = "currency"

// appFactory builds the registry stack; replaced in tests
type appFactory func(ctx context.Context, cfg *config.Config) (*app, error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(newApp)
}

func newRootCmdWith(factory appFactory) *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:          serviceName,
		Short:        "Manage the currency registry",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(serviceName)
			if err != nil {
				return err
			}
			cfg = loaded
			return logger.Init(cfg.Server.Environment, cfg.Server.LogLevel, serviceName)
		},
	}

	withApp := func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := factory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(cmd, a, args)
		}
	}

	cmd.AddCommand(
		updateValuesCmd(withApp),
		listCmd(withApp),
		refreshCmd(withApp),
		migrateCmd(func() *config.Config { return cfg }),
	)
	return cmd
}

type appRunner func(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error

func updateValuesCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "update-values",
		Short: "Refresh every currency rate from the quote service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			result, err := currency.UpdateValues(cmd.Context(), a.updater, a.autoUpdate())
			if err != nil {
				return err
			}
			if !result.Updated {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Message)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		}),
	}
}

func listCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the enabled currencies",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tTITLE\tVALUE\tSAMPLE")
			sample := decimal.NewFromInt(1234567)
			for _, c := range a.registry.GetAll() {
				marker := ""
				if c.Code == a.registry.DefaultCode() {
					marker = " (default)"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", c.Code, marker, c.Title, c.Value.String(), c.Format(sample))
			}
			return w.Flush()
		}),
	}
}

func refreshCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <code>",
		Short: "Refresh the rate of one currency",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.updater.RefreshOne(cmd.Context(), args[0], true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], a.registry.GetValue(args[0]).String())
			return nil
		}),
	}
}

func migrateCmd(cfg func() *config.Config) *cobra.Command {
	var path string

	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCfg := cfg().Database
			if path == "" {
				path = dbCfg.MigrationsPath
			}

			db, err := database.OpenSQL(&dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.RunMigrations(db, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}

	c.Flags().StringVarP(&path, "path", "p", "", "Migrations source URL (defaults to MIGRATIONS_PATH)")
	return c
}
