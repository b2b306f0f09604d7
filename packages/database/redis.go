package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisConfig Redis 配置
type RedisConfig struct {
	ServiceName string        // 服务名称，用于日志标识
	Host        string        // Redis 地址
	Port        int           // Redis 端口
	Password    string        // Redis 密码，为空表示无认证
	DB          int           // Redis 数据库编号
	PoolSize    int           // 连接池大小
	PingTimeout time.Duration // 启动时连通性检查的超时
}

// RedisClient Redis 客户端封装
type RedisClient struct {
	*redis.Client
}

// InitRedis 初始化 Redis 连接
func InitRedis(config *RedisConfig) (*RedisClient, error) {
	if config == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	setRedisDefaults(config)

	options := &redis.Options{
		Addr:     RedisAddr(config),
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), config.PingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	log.Info().
		Str("service", serviceName(config.ServiceName)).
		Str("addr", options.Addr).
		Bool("auth", options.Password != "").
		Msg("Redis连接成功")

	return &RedisClient{Client: client}, nil
}

// RedisAddr host:port 形式的地址
func RedisAddr(c *RedisConfig) string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setRedisDefaults(c *RedisConfig) {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 5 * time.Second
	}
}
