package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"MusicRoom/model"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Config stores the client configuration.
type Config struct {
	ServerURL string // REST目录服务基础地址
	SocketURL string // WebSocket基础地址，默认由ServerURL推导

	AccessToken  string // Bearer访问令牌
	RefreshToken string
	DeviceID     string // 客户端实例标识

	Quality model.Quality // 播放音质偏好

	// Redis配置，用于实体快照缓存
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 日志配置
	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// socketURLFrom 将HTTP基础地址转换为WebSocket地址
func socketURLFrom(serverURL string) string {
	switch {
	case strings.HasPrefix(serverURL, "https://"):
		return "wss://" + strings.TrimPrefix(serverURL, "https://")
	case strings.HasPrefix(serverURL, "http://"):
		return "ws://" + strings.TrimPrefix(serverURL, "http://")
	}
	return serverURL
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return fromEnv()
}

// Reload 重新读取.env文件，已有环境变量会被文件内容覆盖。
// 用于配置文件热更新。
func Reload(path string) *Config {
	if err := godotenv.Overload(path); err != nil {
		log.Println("Reload .env failed, keeping current environment:", err)
	}

	return fromEnv()
}

func fromEnv() *Config {
	serverURL := getEnv("SERVER_URL", "http://127.0.0.1:8000")

	return &Config{
		ServerURL:     serverURL,
		SocketURL:     getEnv("WS_URL", socketURLFrom(serverURL)),
		AccessToken:   os.Getenv("ACCESS_TOKEN"), // 令牌不设默认值
		RefreshToken:  os.Getenv("REFRESH_TOKEN"),
		DeviceID:      getEnv("DEVICE_ID", uuid.New().String()),
		Quality:       model.ParseQuality(getEnv("PLAYER_QUALITY", string(model.QualityHighFidelity))),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
	}
}
