package app

import (
	"context"
	"time"

	"Gin_postgres_redis_asset_tool/cache"
	"Gin_postgres_redis_asset_tool/config"
	"Gin_postgres_redis_asset_tool/db"
	"Gin_postgres_redis_asset_tool/metrics"
	"Gin_postgres_redis_asset_tool/services"
	"Gin_postgres_redis_asset_tool/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	RDB      *redis.Client
	Config   config.Config
	Log      *logrus.Logger
	Repo     *db.Repo
	Services *services.Services
	Tokens   *session.TokenManager

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

// MustNew connects Postgres and Redis from cfg and exits on failure.
func MustNew(cfg config.Config) *App {
	log := NewLogger(cfg)

	// --- DB: Postgres ---
	dbConn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: cfg.RedisDB})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("redis")
	}

	return New(cfg, dbConn, rdb, log)
}

// New wires an App around already-open connections.
func New(cfg config.Config, dbConn *gorm.DB, rdb *redis.Client, log *logrus.Logger) *App {
	repo := db.NewRepo(dbConn)
	gw := cache.NewRedisStore(rdb)
	tokens := session.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, gw)
	appSess := session.NewAppSessionStore(rdb, cfg.RefreshTokenTTL)

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log), metrics.Middleware())
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router:   r,
		DB:       dbConn,
		RDB:      rdb,
		Config:   cfg,
		Log:      log,
		Repo:     repo,
		Services: services.New(repo, gw, tokens, appSess, log),
		Tokens:   tokens,
		appSess:  appSess,
	}
}

func (a *App) Close() {
	_ = a.RDB.Close()
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
