package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"remindbot/internal/config"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var migrationFile string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply a SQL migration file to the configured Postgres database.

Connection settings are read from the same config file as the bot
(CONFIG_PATH, default config.yaml). Statements use IF NOT EXISTS, so
running the migration twice is harmless.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Database.Driver != config.DriverPostgres {
			return fmt.Errorf("database driver %q has no schema to migrate", cfg.Database.Driver)
		}

		// Connect to database
		conn, err := sql.Open("postgres", cfg.Database.URL())
		if err != nil {
			return fmt.Errorf("unable to open database: %w", err)
		}
		defer conn.Close()

		if err := conn.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("unable to connect to database: %w", err)
		}

		// Read and execute migration file
		migration, err := os.ReadFile(migrationFile)
		if err != nil {
			return fmt.Errorf("error reading migration file: %w", err)
		}

		if _, err := conn.ExecContext(cmd.Context(), string(migration)); err != nil {
			return fmt.Errorf("error executing migration: %w", err)
		}

		log.Printf("Migration %s completed successfully", migrationFile)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&migrationFile, "file", "f", "migrations/001_initial_schema.sql", "migration file to apply")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
