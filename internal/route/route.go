package route

import (
	"context"
	"time"

	"terminal-terrace/edustream/config"
	"terminal-terrace/edustream/internal/database"
	"terminal-terrace/edustream/internal/dto"
	"terminal-terrace/edustream/internal/metrics"
	"terminal-terrace/edustream/internal/middleware"
	"terminal-terrace/edustream/internal/moderation"
	"terminal-terrace/edustream/internal/policy"
	"terminal-terrace/edustream/internal/rbac"
	"terminal-terrace/edustream/internal/submission"
	"terminal-terrace/edustream/packages/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const defaultFrontendURL = "http://localhost:5173"

// Dependencies 路由需要的外部依赖
type Dependencies struct {
	// DB 为 nil 时 /healthz 不检查数据库
	DB         *gorm.DB
	Store      rbac.RoleStore
	Cache      rbac.SnapshotCache
	Repository submission.Repository
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// NewModerator 按配置创建审核器，policy_file 优先于配置中的词表
func NewModerator(conf config.ModerationConfig) (*moderation.Moderator, error) {
	if conf.PolicyFile != "" {
		keywordPolicy, err := moderation.LoadPolicyFile(conf.PolicyFile)
		if err != nil {
			return nil, err
		}
		return moderation.NewModerator(keywordPolicy), nil
	}
	return moderation.NewModerator(moderation.PolicyFromLists(conf.SensitiveTerms, conf.CulturalExceptions)), nil
}

// NewSnapshotCache 启用 Redis 时多实例共享缓存，否则使用进程内缓存
func NewSnapshotCache(client redis.Cmdable) rbac.SnapshotCache {
	if client == nil {
		return rbac.NewMemorySnapshotCache()
	}
	return rbac.NewRedisSnapshotCache(client)
}

// SetupRouter 使用全局配置和数据库连接创建路由
func SetupRouter() (*gin.Engine, error) {
	db := database.GetDB()
	return NewRouter(config.Conf, Dependencies{
		DB:         db,
		Store:      rbac.NewGormStore(db),
		Cache:      NewSnapshotCache(database.GetRedis()),
		Repository: submission.NewGormRepository(db),
		Metrics:    metrics.New(),
		Logger:     log.Logger,
	})
}

func NewRouter(conf *config.AppConfig, deps Dependencies) (*gin.Engine, error) {
	moderator, err := NewModerator(conf.Moderation)
	if err != nil {
		return nil, err
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Cache == nil {
		deps.Cache = rbac.NewMemorySnapshotCache()
	}

	resolver := rbac.NewResolver(deps.Store,
		rbac.WithSnapshotCache(deps.Cache),
		rbac.WithCacheTTL(conf.RBAC.CacheTTL),
		rbac.WithIndexRefresh(conf.RBAC.IndexRefresh),
		rbac.WithObserver(deps.Metrics),
		rbac.WithLogger(deps.Logger.With().Str("component", "rbac").Logger()),
	)
	submissionService := submission.NewService(deps.Repository, resolver, moderator,
		submission.WithObserver(deps.Metrics),
		submission.WithLogger(deps.Logger.With().Str("component", "submission").Logger()),
	)
	policyHandler := policy.NewHandler(moderator, resolver, deps.Metrics)

	if conf.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger.With().Str("component", "http").Logger()))
	r.Use(deps.Metrics.Middleware())

	origin := conf.Server.FrontendURL
	if origin == "" {
		origin = defaultFrontendURL // 默认值
	}

	// 设置跨域请求
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", healthz(deps.DB))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	api := r.Group("/api/v1")
	policy.RegisterRoutes(api, policyHandler, conf.JWT.Secret)
	submission.RegisterRoutes(api, submissionService, conf.JWT.Secret)

	return r, nil
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				dto.ErrorResponse(c, response.NewBusinessError(
					response.WithErrorCode(response.Fail),
					response.WithErrorMessage("database unavailable"),
					response.WithError(err),
				))
				return
			}
		}
		dto.SuccessResponse(c, gin.H{"status": "ok"})
	}
}
