package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration (conversation scratchpad cache).
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisStateDB  int    `mapstructure:"REDIS_STATE_DB"`

	// Completion service (xAI, OpenAI-compatible wire format).
	XAIAPIKey  string `mapstructure:"XAI_API_KEY"`
	XAIBaseURL string `mapstructure:"XAI_BASE_URL"`
	XAIModel   string `mapstructure:"XAI_MODEL"`

	// WhatsApp Cloud API.
	WhatsAppAccessToken string `mapstructure:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppVerifyToken string `mapstructure:"WHATSAPP_VERIFY_TOKEN"`

	// Shared secret for the queue-processing trigger.
	CronSecret string `mapstructure:"CRON_SECRET"`

	// Cloudinary credentials for inbound media storage.
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Debounce window for per-chat message accumulation, in milliseconds.
	DebounceMs int `mapstructure:"DEBOUNCE_MS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "enrolla")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_STATE_DB", 0)
	viper.SetDefault("XAI_BASE_URL", "https://api.x.ai/v1")
	viper.SetDefault("XAI_MODEL", "grok-4")
	viper.SetDefault("WHATSAPP_VERIFY_TOKEN", "my_secure_token")
	viper.SetDefault("DEBOUNCE_MS", 5000)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
