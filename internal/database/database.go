package database

import (
	"time"

	"terminal-terrace/edustream/config"
	"terminal-terrace/edustream/internal/model"
	"terminal-terrace/edustream/packages/database"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const serviceName = "edustream"

var (
	PostgresDB *gorm.DB
	// RedisClient 未启用 Redis 时为 nil
	RedisClient *database.RedisClient
)

func InitDatabase() error {
	if err := initPostgres(); err != nil {
		return err
	}
	return initRedis()
}

func initPostgres() error {
	db, err := database.InitPostgres(postgresConfig(false))
	if err != nil {
		return err
	}

	// 初始化数据库表
	if err := model.InitTable(db); err != nil {
		return err
	}
	PostgresDB = db
	return nil
}

// OpenReadOnly 只读连接，不建表也不迁移，只读账号即可使用
// 调用方负责关闭返回的连接
func OpenReadOnly() (*gorm.DB, error) {
	return database.InitPostgres(postgresConfig(true))
}

func postgresConfig(readOnly bool) *database.PostgresConfig {
	databaseConf := config.Conf.Database

	// 设置默认日志级别
	logLevel := databaseConf.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	return &database.PostgresConfig{
		ServiceName:     serviceName,
		Username:        databaseConf.Username,
		Password:        databaseConf.Password,
		Host:            databaseConf.Host,
		Port:            databaseConf.Port,
		Database:        databaseConf.Database,
		SSLMode:         databaseConf.SSLMode,
		ReadOnly:        readOnly,
		LogLevel:        logLevel,
		MaxIdleConns:    databaseConf.MaxIdleConns,
		MaxOpenConns:    databaseConf.MaxOpenConns,
		ConnMaxLifetime: time.Duration(databaseConf.MaxLifetime) * time.Second,
	}
}

func initRedis() error {
	redisConf := config.Conf.Redis
	if !redisConf.Enabled {
		log.Info().Msg("Redis 未启用，权限快照使用进程内缓存")
		return nil
	}

	client, err := database.InitRedis(&database.RedisConfig{
		ServiceName: serviceName,
		Host:        redisConf.Host,
		Port:        redisConf.Port,
		Password:    redisConf.Password,
		DB:          redisConf.DB,
		PoolSize:    redisConf.PoolSize,
	})
	if err != nil {
		return err
	}
	RedisClient = client
	return nil
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return PostgresDB
}

// GetRedis 获取 Redis 客户端，未启用时返回 nil
func GetRedis() redis.Cmdable {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Client
}

// Close 关闭连接
func Close() {
	if PostgresDB != nil {
		if sqlDB, err := PostgresDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if RedisClient != nil {
		_ = RedisClient.Close()
	}
}
