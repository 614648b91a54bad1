package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitanomongolomon/gmm-site/internal/config"
	"github.com/gitanomongolomon/gmm-site/internal/observability"
	"github.com/gitanomongolomon/gmm-site/internal/og"
	"github.com/gitanomongolomon/gmm-site/internal/persistence"
	"github.com/gitanomongolomon/gmm-site/internal/repository"
)

var ogOutDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every migration file (each one is re-runnable)",
	RunE:  runMigrateUp,
}

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Run ad hoc SQL against the record store",
}

var sqlRunCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a SQL file as one batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runSQLFile,
}

var ogCmd = &cobra.Command{
	Use:   "og",
	Short: "Social preview pages",
}

var ogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a static preview page for every update post",
	RunE:  runOGGenerate,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	sqlCmd.AddCommand(sqlRunCmd)
	ogGenerateCmd.Flags().StringVar(&ogOutDir, "out", "dist", "site output directory")
	ogCmd.AddCommand(ogGenerateCmd)
}

// withDatabase loads configuration, connects to Postgres and runs fn.
func withDatabase(ctx context.Context, fn func(*config.Config, *persistence.Postgres, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pg.Close()
	if !pg.Configured() {
		return errors.New("POSTGRES_DSN is not set")
	}
	return fn(cfg, pg, logger)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
		if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrate up: ok")
		return nil
	})
}

func runSQLFile(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(_ *config.Config, pg *persistence.Postgres, _ *zap.Logger) error {
		if err := persistence.RunSQLFile(cmd.Context(), pg.PoolHandle(), args[0]); err != nil {
			return fmt.Errorf("sql run %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sql run %s: ok\n", args[0])
		return nil
	})
}

func runOGGenerate(cmd *cobra.Command, args []string) error {
	return withDatabase(cmd.Context(), func(cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) error {
		posts := repository.NewUpdateRepository(pg.PoolHandle())
		count, err := og.NewGenerator(posts, cfg.Site.Origin, logger).Generate(cmd.Context(), ogOutDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d preview pages under %s\n", count, ogOutDir)
		return nil
	})
}
