package cli

import (
	"fmt"
	"os"

	"coach_backend/internal/app"
	"coach_backend/internal/config"
	"coach_backend/pkg/database"
	"coach_backend/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coach",
		Short:         "Personal development coaching backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(false)
		},
	}
	root.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return serve(migrate)
		},
	}
	serveCmd.Flags().Bool("migrate", false, "run migrations on start even in release mode")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the schema, seed templates and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	return root
}

func serve(forceMigrate bool) error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ForceMigrate = forceMigrate

	application, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer logger.Log.Sync()
	return application.Run()
}

func migrate() error {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.MigrateOnly = true
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	logger.Log.Info("Database migration finished", zap.String("driver", cfg.Database.Driver))
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
