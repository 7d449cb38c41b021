// Package app wires configuration, storage and the HTTP router shared by the
// api server and crmctl.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"propertycrm/internal/config"
	"propertycrm/internal/database"
	"propertycrm/internal/middleware"
	"propertycrm/internal/modules/agent"
	"propertycrm/internal/modules/analytics"
	"propertycrm/internal/modules/assignment"
	"propertycrm/internal/modules/chatbot"
	"propertycrm/internal/modules/enrichment"
	"propertycrm/internal/modules/lead"
	"propertycrm/internal/modules/matching"
	"propertycrm/internal/modules/property"
	"propertycrm/internal/pkg/response"
	"propertycrm/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Store  *repository.Store
	// Redis is nil when REDIS_ADDR is unset; the chatbot is then disabled.
	Redis *redis.Client

	Assignment *assignment.Service
	Leads      *lead.Service
	Agents     *agent.Service
	Properties *property.Service
	Enrichment *enrichment.Service
	Analytics  *analytics.Service
	Chatbot    *chatbot.Service
	Hub        *chatbot.Hub
}

// Open connects to the database (and Redis when configured), migrates when
// AUTO_MIGRATE is set and builds every service.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := OpenDB(ctx, cfg, log, cfg.AutoMigrate)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = database.ConnectRedis(ctx, database.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			closeDB(db)
			return nil, err
		}
		log.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Warn("REDIS_ADDR not set, chatbot disabled")
	}

	var gen enrichment.Generator
	if cfg.GenAIAPIKey != "" {
		g, err := enrichment.NewGenAIGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
		if err != nil {
			log.Warn("genai client unavailable, using template content", zap.Error(err))
		} else {
			gen = g
		}
	} else {
		log.Info("GENAI_API_KEY not set, using template content")
	}

	return Build(cfg, log, db, rdb, gen), nil
}

// OpenDB connects to DATABASE_URL and optionally migrates the schema.
func OpenDB(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (*gorm.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL, log, database.Options{Silent: cfg.IsProdLike()})
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			closeDB(db)
			return nil, err
		}
		log.Info("database migrated")
	}
	return db, nil
}

// Build assembles the services over already opened connections. rdb and gen
// may be nil.
func Build(cfg *config.Config, log *zap.Logger, db *gorm.DB, rdb *redis.Client, gen enrichment.Generator) *App {
	if log == nil {
		log = zap.NewNop()
	}
	store := repository.NewStore(db)
	assign := assignment.NewService(store, matching.New(log), log)

	a := &App{
		Config:     cfg,
		Log:        log,
		DB:         db,
		Store:      store,
		Redis:      rdb,
		Assignment: assign,
		Leads:      lead.NewService(store, assign, log),
		Agents:     agent.NewService(store, log),
		Properties: property.NewService(store, log),
		Enrichment: enrichment.NewService(store, gen, log),
		Analytics:  analytics.NewService(store, log),
		Hub:        chatbot.NewHub(),
	}
	if rdb != nil {
		a.Chatbot = chatbot.NewService(chatbot.NewRedisSessionStore(rdb, cfg.ChatbotSessionTTL), log)
	}
	return a
}

// Router returns the gin engine with every module mounted under /api/v1.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(a.Log),
		middleware.CORS(a.Config.CORSAllowedOrigins),
		middleware.Metrics(),
	)

	r.GET("/health", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	lead.NewHandler(a.Leads).RegisterRoutes(v1.Group("/leads"))

	agents := v1.Group("/agents")
	assignment.NewHandler(a.Assignment).RegisterRoutes(agents)
	agent.NewHandler(a.Agents).RegisterRoutes(agents)

	properties := v1.Group("/properties")
	property.NewHandler(a.Properties).RegisterRoutes(properties)
	enrichment.NewHandler(a.Enrichment).RegisterRoutes(properties)

	analytics.NewHandler(a.Analytics).RegisterRoutes(v1.Group("/analytics"))

	if a.Chatbot != nil {
		chatbot.NewHandler(a.Chatbot, a.Hub, a.Log).RegisterRoutes(v1.Group("/chatbot"))
	}
	return r
}

func (a *App) health(c *gin.Context) {
	status := gin.H{"database": "ok", "redis": "disabled"}
	healthy := true

	if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status["database"] = "unreachable"
		healthy = false
	}
	if a.Redis != nil {
		status["redis"] = "ok"
		if err := a.Redis.Ping(c.Request.Context()).Err(); err != nil {
			status["redis"] = "unreachable"
			healthy = false
		}
	}

	if !healthy {
		response.ErrorWithDetails(c, http.StatusServiceUnavailable, "UNHEALTHY", "A dependency is unreachable", status)
		return
	}
	response.Success(c, http.StatusOK, status)
}

// Close stops websocket connections and releases Redis and the database.
func (a *App) Close() error {
	a.Hub.Close()
	var errs []error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
