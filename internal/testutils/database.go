package testutils

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"terminal-terrace/edustream/internal/model"
	dbPkg "terminal-terrace/edustream/packages/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupTestDB 连接测试库，迁移后每个测试在事务里运行，结束时回滚
// 连不上数据库时跳过测试；TEST_DATABASE_DSN 优先于 POSTGRES_* 变量
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = dbPkg.BuildDSN(&dbPkg.PostgresConfig{
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     envInt("POSTGRES_PORT", 5433),
			Username: getEnvOrDefault("POSTGRES_USER", "test"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "test"),
			Database: getEnvOrDefault("POSTGRES_DB", "edustream_test"),
		})
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: dbPkg.GormLogger("silent")})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		t.Skipf("test database unavailable: %v", err)
	}

	require.NoError(t, model.InitTable(db), "migrate test database")

	tx := db.Begin()
	t.Cleanup(func() {
		tx.Rollback()
		_ = sqlDB.Close()
	})
	return tx
}

// SetupTestRedis creates a test Redis connection.
// Returns nil if Redis is not available (tests can skip Redis-dependent features).
func SetupTestRedis(t *testing.T) *dbPkg.RedisClient {
	t.Helper()

	redisClient, err := dbPkg.InitRedis(&dbPkg.RedisConfig{
		ServiceName: "edustream-test",
		Host:        getEnvOrDefault("REDIS_HOST", "localhost"),
		Port:        envInt("REDIS_PORT", 6380),
		DB:          15,
		PingTimeout: time.Second,
	})
	if err != nil || redisClient == nil {
		return nil
	}

	t.Cleanup(func() {
		redisClient.FlushDB(context.Background())
		_ = redisClient.Close()
	})
	return redisClient
}

func envInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
