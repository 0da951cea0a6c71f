package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"druginv/m/internal/api"
	"druginv/m/internal/config"
	"druginv/m/internal/database"
	"druginv/m/internal/migrations"
	"druginv/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	seed.LoadDrugs(db, cfg.CatalogPath, logger)

	handler := api.New(db, cfg.Secret, logger)

	logger.Info("drug inventory server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
