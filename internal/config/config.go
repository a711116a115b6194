package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	PostgresURL       string `mapstructure:"POSTGRES_URL"` // optional; empty disables archiving
	RedisAddr         string `mapstructure:"REDIS_ADDR"`   // optional; empty disables the latest-audit index
	CrawlWorkers      int    `mapstructure:"CRAWL_WORKERS"`
	CrawlTimeout      int    `mapstructure:"CRAWL_TIMEOUT"` // per-page, in seconds
	CrawlMaxPages     int    `mapstructure:"CRAWL_MAX_PAGES"`
	CrawlMaxRetries   int    `mapstructure:"CRAWL_MAX_RETRIES"`
	AuditTimeout      int    `mapstructure:"AUDIT_TIMEOUT"` // whole job, in seconds
	JobTTL            int    `mapstructure:"JOB_TTL"`       // retention after a job ends, in seconds
	TemplateThreshold int    `mapstructure:"TEMPLATE_THRESHOLD"` // 0 = derive from page count
	EnableDeepCrawl   bool   `mapstructure:"ENABLE_DEEP_CRAWL"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	// Set default values. The storage keys default to empty so
	// AutomaticEnv can still bind them during Unmarshal.
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("CRAWL_WORKERS", 10)
	viper.SetDefault("CRAWL_TIMEOUT", 30)
	viper.SetDefault("CRAWL_MAX_PAGES", 50)
	viper.SetDefault("CRAWL_MAX_RETRIES", 2)
	viper.SetDefault("AUDIT_TIMEOUT", 300)
	viper.SetDefault("JOB_TTL", 3600)
	viper.SetDefault("TEMPLATE_THRESHOLD", 0)
	viper.SetDefault("ENABLE_DEEP_CRAWL", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
