// Package config 配置管理
// 先读 yaml 文件，再用 EDUSTREAM_ 前缀的环境变量覆盖
package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// EnvPrefix 环境变量前缀，EDUSTREAM_JWT_SECRET 对应 jwt.secret
const EnvPrefix = "EDUSTREAM_"

var (
	Conf *AppConfig
	once sync.Once
	k    *koanf.Koanf
)

// Load 加载配置文件，只会执行一次
func Load(configPath string) error {
	var err error
	once.Do(func() {
		// 首先加载 .env 文件到环境变量
		if envErr := godotenv.Load(".env"); envErr != nil {
			log.Debug().Err(envErr).Msg("未加载 .env 文件")
		}
		err = load(configPath)
	})
	return err
}

func load(configPath string) error {
	kk := koanf.New(".")

	if err := kk.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return fmt.Errorf("加载配置文件失败: %w", err)
	}

	// 加载环境变量（会覆盖配置文件）
	if err := kk.Load(env.ProviderWithValue(EnvPrefix, ".", envValue(kk)), nil); err != nil {
		log.Warn().Err(err).Msg("加载环境变量失败")
	}

	conf := &AppConfig{}
	if err := kk.Unmarshal("", conf); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	normalize(conf)

	k = kk
	Conf = conf
	return nil
}

// envKey 只把第一个下划线当作分段，EDUSTREAM_RBAC_CACHE_TTL 对应 rbac.cache_ttl
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// envValue 按配置文件中已有值的类型转换环境变量
// 列表用逗号分隔，秒数等整数转成 int，否则 time.Duration 无法解析 "120"
func envValue(kk *koanf.Koanf) func(string, string) (string, interface{}) {
	return func(name, value string) (string, interface{}) {
		key := envKey(name)
		switch kk.Get(key).(type) {
		case []interface{}:
			return key, splitList(value)
		case int, int64, float64:
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				return key, n
			}
		case nil:
			if n, err := strconv.Atoi(value); err == nil {
				return key, n
			}
		}
		return key, value
	}
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalize 转换时间单位并填充默认值
func normalize(c *AppConfig) {
	c.Server.ReadTimeout = c.Server.ReadTimeout * time.Second
	c.Server.WriteTimeout = c.Server.WriteTimeout * time.Second
	c.RBAC.CacheTTL = c.RBAC.CacheTTL * time.Second
	c.RBAC.IndexRefresh = c.RBAC.IndexRefresh * time.Second

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// MustLoad 加载配置，失败则退出
func MustLoad(configPath string) {
	if err := Load(configPath); err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("配置加载失败")
	}
}

// GetString 获取字符串配置
func GetString(key string) string {
	mustInit()
	return k.String(key)
}

// GetInt 获取整数配置
func GetInt(key string) int {
	mustInit()
	return k.Int(key)
}

// GetBool 获取布尔配置
func GetBool(key string) bool {
	mustInit()
	return k.Bool(key)
}

func mustInit() {
	if k == nil {
		log.Fatal().Msg("配置未初始化")
	}
}

// Reload 重新加载配置
func Reload(configPath string) error {
	if k == nil {
		return fmt.Errorf("配置未初始化")
	}
	return load(configPath)
}

// Addr 服务监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
