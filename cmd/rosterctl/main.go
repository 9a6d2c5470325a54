// rosterctl is the operational companion to the roster engine: database
// migrations and admin account bootstrap without going through the HTTP API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/gracechapel/roster-engine/pkg/config"
	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/logging"
	"github.com/gracechapel/roster-engine/pkg/repositories"
	"github.com/gracechapel/roster-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

// App holds the CLI dependencies built once per invocation.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:   "rosterctl",
		Short: "Roster engine operations CLI",
		Long:  "Manage the roster engine database and bootstrap admin accounts.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync() //nolint:errcheck
			}
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initApp() error {
	cfg, err := config.Load(Version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	app = &App{cfg: cfg, logger: logger}
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := sql.Open("pgx", app.cfg.Database.URL())
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer sqlDB.Close()

			if err := database.RunMigrations(sqlDB, app.cfg.MigrationsPath, app.logger); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin member, prompting for the PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pin, err := promptPIN()
			if err != nil {
				return err
			}

			db, err := database.NewConnection(ctx, &database.Config{
				URL:            app.cfg.Database.URL(),
				MaxConnections: 2,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			userService := services.NewUserService(repositories.NewUserRepository(db), app.logger)
			user, err := userService.Create(ctx, firstName, lastName, pin, true)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Created admin %s %s with initials %s\n", user.FirstName, user.LastName, user.Initials)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "Admin first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Admin last name")
	cmd.MarkFlagRequired("first-name") //nolint:errcheck

	return cmd
}

func promptPIN() (string, error) {
	fmt.Print("PIN (min 4 digits): ")
	pin, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}

	fmt.Print("Confirm PIN: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read PIN confirmation: %w", err)
	}

	if string(pin) != string(confirm) {
		return "", fmt.Errorf("PINs do not match")
	}
	return string(pin), nil
}
