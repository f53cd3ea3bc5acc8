package main

import (
	"github.com/SeakMengs/EventHub/internal/config"
	"github.com/SeakMengs/EventHub/internal/database"
	"github.com/SeakMengs/EventHub/internal/env"
	"github.com/SeakMengs/EventHub/internal/model"
	"github.com/SeakMengs/EventHub/internal/util"
)

func init() {
	env.LoadEnv()
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)
	defer logger.Sync()

	logger.Infof("Migrating database %s on %s:%s", cfg.DB.DB_DATABASE, cfg.DB.DB_HOST, cfg.DB.DB_PORT)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	// order matters for foreign keys
	migrateErr := db.AutoMigrate(
		&model.File{},
		&model.CertificateTemplate{},
		&model.Event{},
		&model.Participant{},
		&model.Certificate{},
		&model.EventLog{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}

	logger.Info("Migration finished")
}
