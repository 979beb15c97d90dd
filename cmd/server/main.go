package main

import (
	"log"

	"go.uber.org/zap"

	"meera-system/config"
	"meera-system/internal/database"
	"meera-system/internal/logging"
	"meera-system/internal/orders"
	"meera-system/internal/server"
	"meera-system/internal/storage"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	rdb := config.NewRedisClient(cfg.Redis)

	store := storage.New(db)
	engine := orders.NewEngine(store, logger,
		orders.WithMRPTolerance(cfg.Orders.MRPTolerancePercent))

	r := server.NewRouter(server.Deps{
		Config: cfg,
		Log:    logger,
		DB:     db,
		Redis:  rdb,
		Orders: engine,
	})

	addr := ":" + cfg.Server.Port
	logger.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
