package app

import (
	"context"
	"log"
	"os"
	"time"

	"musicschool_backend/db"
	"musicschool_backend/inventory"
	"musicschool_backend/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Handler-side aliases.
type Ctx = gin.Context
type H = gin.H

// App aggregates the service dependencies: router, registry core, optional
// durability layer and the redis session store.
type App struct {
	Router   *gin.Engine
	Registry *inventory.Registry
	DB       *gorm.DB // nil in memory-only mode
	Repo     *db.Repo // nil in memory-only mode
	RDB      *redis.Client
	Config   Config

	appSess *session.AppSessionStore
}

// Config comes from environment variables. An empty database host keeps the
// service in the memory-only reference mode: registry state is lost on
// restart.
type Config struct {
	DatabaseDSN  string
	RedisAddr    string
	RedisPwd     string
	WebOrigin    string
	SessionTTL   time.Duration
	HomeLocation string
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := loadConfig()

	// --- Redis (sessions) ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- Postgres (optional durability) + registry core ---
	var (
		dbConn *gorm.DB
		repo   *db.Repo
		reg    *inventory.Registry
	)
	if cfg.DatabaseDSN != "" {
		dbConn = db.ConnectDB(cfg.DatabaseDSN)
		repo = db.NewRepo(dbConn)
		if err := repo.SeedDemoData(context.Background()); err != nil {
			log.Fatalf("seed: %v", err)
		}
		reg = inventory.NewRegistry(repo, inventory.WithHomeLocation(cfg.HomeLocation))
		insts, err := repo.LoadInstruments(context.Background())
		if err != nil {
			log.Fatalf("load instruments: %v", err)
		}
		reg.Restore(insts)
		log.Printf("registry restored with %d instruments", reg.Len())
	} else {
		log.Println("no database configured, registry is memory-only")
		reg = inventory.NewRegistry(nil, inventory.WithHomeLocation(cfg.HomeLocation))
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	return &App{
		Router:   r,
		Registry: reg,
		DB:       dbConn,
		Repo:     repo,
		RDB:      rdb,
		Config:   cfg,
		appSess:  session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}
	ttl := 24 * time.Hour
	if d, err := time.ParseDuration(get("SESSION_TTL_SECONDS", "86400") + "s"); err == nil {
		ttl = d
	}
	dsn := ""
	if host := os.Getenv("DB_HOST"); host != "" {
		dsn = "host=" + host +
			" user=" + get("DB_USER", "postgres") +
			" password=" + os.Getenv("DB_PASSWORD") +
			" dbname=" + get("DB_NAME", "musicschool") +
			" port=" + get("DB_PORT", "5432") +
			" sslmode=disable"
	}
	return Config{
		DatabaseDSN:  dsn,
		RedisAddr:    get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:     os.Getenv("REDIS_PASSWORD"),
		WebOrigin:    get("WEB_ORIGIN", "http://localhost:5173"),
		SessionTTL:   ttl,
		HomeLocation: get("HOME_LOCATION", inventory.DefaultHomeLocation),
	}
}
