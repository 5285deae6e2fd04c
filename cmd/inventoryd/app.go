package main

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/rl1809/inventory-tracker/internal/adapter/auth"
	"github.com/rl1809/inventory-tracker/internal/adapter/notify"
	"github.com/rl1809/inventory-tracker/internal/adapter/storage"
	"github.com/rl1809/inventory-tracker/internal/config"
	"github.com/rl1809/inventory-tracker/internal/core/domain"
	"github.com/rl1809/inventory-tracker/internal/core/service"
	"github.com/rl1809/inventory-tracker/internal/port"
)

// runtime holds the wired adapters and services shared by all commands.
type runtime struct {
	cfg       config.Config
	sqlDB     *sqlx.DB
	rdb       *redis.Client
	db        *storage.MySQLAdapter
	cache     port.CacheRepository
	notifier  *notify.LogNotifier
	auth      *auth.StaticAuthenticator
	stock     *service.StockService
	inventory *service.InventoryService
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	level, _ := log.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	return cfg, nil
}

func openMySQL(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	log.Info("connected to mysql")
	return db, nil
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	sqlDB, err := openMySQL(ctx, cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		sqlDB:    sqlDB,
		db:       storage.NewMySQLAdapter(sqlDB),
		notifier: notify.NewLogNotifier(log.StandardLogger(), notify.DefaultCapacity),
	}

	switch cfg.CacheBackend {
	case config.CacheRedis:
		rt.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 20})
		if err := rt.rdb.Ping(ctx).Err(); err != nil {
			rt.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("connected to redis")
		rt.cache = storage.NewRedisAdapter(rt.rdb, cfg.IdempotencyTTL)
	default:
		rt.cache = storage.NewMemoryCache(cfg.IdempotencyTTL)
	}

	rt.auth, err = auth.NewStaticAuthenticator(auth.DefaultCredentials(cfg.AdminPassword, cfg.ProductionPassword)...)
	if err != nil {
		rt.close()
		return nil, err
	}

	rt.stock = service.NewStockService(rt.db, rt.cache, rt.notifier, cfg.StoreTimeout)
	rt.inventory = service.NewInventoryService(rt.db, rt.cache, rt.notifier, cfg.StoreTimeout)
	return rt, nil
}

// login opens a session from the --username/--password flags.
func (rt *runtime) login(c *cli.Context) (domain.Session, error) {
	return rt.auth.Authenticate(c.Context, c.String("username"), c.String("password"))
}

func (rt *runtime) close() {
	if rt.rdb != nil {
		rt.rdb.Close()
	}
	if rt.sqlDB != nil {
		rt.sqlDB.Close()
	}
	log.Debug("connections closed")
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Value: "admin", EnvVars: []string{"INVENTORY_USER"}},
		&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"INVENTORY_PASSWORD", "ADMIN_PASSWORD"}},
	}
}
