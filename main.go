package main

import (
	"context"
	"time"

	"Gin_postgres_redis_asset_tool/app"
	"Gin_postgres_redis_asset_tool/config"
	"Gin_postgres_redis_asset_tool/routes"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	application := app.MustNew(cfg)
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := app.BootstrapFirstAdmin(ctx, cfg, application.Repo, application.Log); err != nil {
		application.Log.WithError(err).Error("bootstrap admin")
	}
	cancel()

	r := application.Router
	routes.RegisterRoutes(r, application)

	application.Log.Infof("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		application.Log.WithError(err).Error("server stopped")
	}
}
