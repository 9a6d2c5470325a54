package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/config"
	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/export"
	"github.com/gracechapel/roster-engine/pkg/handlers"
	"github.com/gracechapel/roster-engine/pkg/logging"
	"github.com/gracechapel/roster-engine/pkg/mailer"
	"github.com/gracechapel/roster-engine/pkg/middleware"
	"github.com/gracechapel/roster-engine/pkg/repositories"
	"github.com/gracechapel/roster-engine/pkg/services"
	"github.com/gracechapel/roster-engine/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.Bool("mail_enabled", cfg.Mail.Enabled()))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// golang-migrate needs a database/sql handle.
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		sqlDB.Close()
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	sqlDB.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	availabilityRepo := repositories.NewAvailabilityRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	specialDayRepo := repositories.NewSpecialDayRepository(db)
	finalizedRepo := repositories.NewFinalizedRosterRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Outbound mail is optional; the export endpoint reports it as a
	// validation error when unconfigured.
	var rosterMailer services.Mailer
	if cfg.Mail.Enabled() {
		gmailClient, err := mailer.NewGmailClient(ctx, &cfg.Mail, logger)
		if err != nil {
			logger.Fatal("Failed to create mail client", zap.Error(err))
		}
		rosterMailer = gmailClient
	}

	// Services
	userService := services.NewUserService(userRepo, logger)
	availabilityService := services.NewAvailabilityService(availabilityRepo, userRepo, settingsRepo, logger)
	roleService := services.NewRoleService(roleRepo, logger)
	rosterService := services.NewRosterService(assignmentRepo, availabilityRepo, roleRepo, userRepo, specialDayRepo, settingsRepo, logger)
	specialDayService := services.NewSpecialDayService(specialDayRepo, logger)
	finalizeService := services.NewFinalizeService(finalizedRepo, logger)
	settingsService := services.NewSettingsService(settingsRepo, logger)
	exportService := services.NewExportService(
		assignmentRepo, roleRepo, userRepo, specialDayRepo, settingsRepo,
		finalizeService, export.NewPDFRenderer(), rosterMailer, logger)

	// Auth
	issuer, err := auth.NewTokenIssuer(cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("Failed to create token issuer", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(issuer, logger)

	mux := http.NewServeMux()

	// Handlers
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(userService, issuer, cfg.Env != "local", logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewUserHandler(userService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAvailabilityHandler(availabilityService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRoleHandler(roleService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewRosterHandler(rosterService, exportService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSpecialDayHandler(specialDayService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewFinalizeHandler(finalizeService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSettingsHandler(settingsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewExportHandler(exportService, logger).RegisterRoutes(mux, authMiddleware)

	// Serve the built frontend
	mux.Handle("/", http.FileServerFS(ui.DistFS()))

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting roster-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
