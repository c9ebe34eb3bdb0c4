package main

import (
	"time"

	"github.com/annaimjamhari/aircond-crm-app/internal/model"
	"github.com/annaimjamhari/aircond-crm-app/internal/server"
	"github.com/annaimjamhari/aircond-crm-app/internal/session"
	"github.com/annaimjamhari/aircond-crm-app/pkg/config"
	"github.com/annaimjamhari/aircond-crm-app/pkg/database"
	"github.com/annaimjamhari/aircond-crm-app/pkg/logger"
	"github.com/annaimjamhari/aircond-crm-app/pkg/sessiontoken"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting CRM service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(db,
		&model.User{},
		&model.Customer{},
		&model.Contact{},
		&model.Opportunity{},
		&model.Activity{},
		&model.Setting{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	if err := database.Seed(db); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}
	log.Info("Database schema ready")

	// Initialize session token signing
	sessiontoken.Initialize(&cfg.Session)

	sessions := session.NewStore()

	// Sessions whose cookie never returns would otherwise sit in the
	// store until shutdown
	go func() {
		for range time.Tick(time.Hour) {
			if n := sessions.SweepExpired(); n > 0 {
				log.Info("Swept expired sessions", zap.Int("count", n))
			}
		}
	}()

	e := server.New(cfg, db, sessions)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
