package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	ORS      ORSConfig
	Redis    RedisConfig
	Log      LogConfig
	// 距离模式缓冲圆的分段数
	BufferSegments int
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Addr string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	AutoMigrate bool
}

// ORSConfig openrouteservice 等时圈 API 配置
type ORSConfig struct {
	Key     string
	BaseURL string
	Timeout time.Duration
	// 每分钟允许的外部调用次数，<=0 表示不限流
	RatePerMinute int
}

// RedisConfig 可选的 Redis 缓存层，Addr 为空时禁用
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string
	Format string
}

// DSN 返回数据库连接字符串
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Enabled Redis 是否启用
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// Load 加载配置（.env 文件 + 环境变量）
func Load() (*Config, error) {
	// .env 不存在时忽略；已存在的环境变量不会被覆盖
	_ = godotenv.Load(".env")

	return &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":3000"),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "webgis"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:    int32(getEnvInt("DB_MIN_CONNS", 2)),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),
		},
		ORS: ORSConfig{
			Key:           getEnv("ORS_KEY", ""),
			BaseURL:       strings.TrimRight(getEnv("ORS_BASE_URL", "https://api.openrouteservice.org"), "/"),
			Timeout:       getEnvDuration("ORS_TIMEOUT", 30*time.Second),
			RatePerMinute: getEnvInt("ORS_RATE_PER_MIN", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		BufferSegments: getEnvInt("BUFFER_SEGMENTS", 32),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 解析失败时回退默认值
func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration 接受 time.ParseDuration 格式（如 "30s"）
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
