package main

import (
	"log"

	"github.com/sirupsen/logrus"

	"github.com/TusharJoshi-11/crease/config"
	_ "github.com/TusharJoshi-11/crease/docs"
	"github.com/TusharJoshi-11/crease/internal/broadcast"
	"github.com/TusharJoshi-11/crease/internal/match"
	"github.com/TusharJoshi-11/crease/internal/scoring"
	"github.com/TusharJoshi-11/crease/internal/team"
	"github.com/TusharJoshi-11/crease/routes"
)

// @title Crease REST API
// @version 1.0
// @description Ball-by-ball cricket scoring server 🏏 with live score streaming.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	logger := logrus.New()
	if cfg.App.Env == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	err := config.DB.AutoMigrate(
		&team.Team{}, &team.Player{},
		&match.Match{},
		&scoring.Innings{}, &scoring.BallDelivery{}, &scoring.PlayerInningsStat{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	hub := broadcast.NewHub(logger)

	r := routes.SetupRoutes(config.DB, cfg, hub, logger)

	// Use port from loaded configuration
	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
