package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agrisight/agrisight/internal/finance"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig        `yaml:"store" mapstructure:"store"`
	Server    ServerConfig       `yaml:"server" mapstructure:"server"`
	Weather   WeatherConfig      `yaml:"weather" mapstructure:"weather"`
	Sentinel  SentinelConfig     `yaml:"sentinel" mapstructure:"sentinel"`
	Anthropic AnthropicConfig    `yaml:"anthropic" mapstructure:"anthropic"`
	Analysis  AnalysisConfig     `yaml:"analysis" mapstructure:"analysis"`
	Pricing   finance.PriceTable `yaml:"pricing" mapstructure:"pricing"`
	Log       LogConfig          `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port       int    `yaml:"port" mapstructure:"port"`
	CORSOrigin string `yaml:"cors_origin" mapstructure:"cors_origin"`
}

// WeatherConfig configures the Open-Meteo archive client and the farm
// location the weather history is fetched for.
type WeatherConfig struct {
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	Latitude     float64 `yaml:"latitude" mapstructure:"latitude"`
	Longitude    float64 `yaml:"longitude" mapstructure:"longitude"`
	Timezone     string  `yaml:"timezone" mapstructure:"timezone"`
	StartYear    int     `yaml:"start_year" mapstructure:"start_year"`
	EndYear      int     `yaml:"end_year" mapstructure:"end_year"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// SentinelConfig holds Sentinel Hub credentials.
type SentinelConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	InstanceID   string `yaml:"instance_id" mapstructure:"instance_id"`
	AccountID    string `yaml:"account_id" mapstructure:"account_id"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// AnalysisConfig configures the analysis pipeline.
type AnalysisConfig struct {
	DefaultFarmSizeHa float64 `yaml:"default_farm_size_ha" mapstructure:"default_farm_size_ha"`
	UploadDir         string  `yaml:"upload_dir" mapstructure:"upload_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AGRISIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "agrisight.db")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("weather.base_url", "https://archive-api.open-meteo.com")
	v.SetDefault("weather.latitude", -6.369028)
	v.SetDefault("weather.longitude", 34.888822)
	v.SetDefault("weather.timezone", "Africa/Dar_es_Salaam")
	v.SetDefault("weather.start_year", 2019)
	v.SetDefault("weather.end_year", 2023)
	v.SetDefault("weather.rate_limit_rps", 5.0)
	v.SetDefault("sentinel.base_url", "https://services.sentinel-hub.com")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 2000)
	v.SetDefault("analysis.default_farm_size_ha", 100.0)
	v.SetDefault("analysis.upload_dir", "uploads")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	prices := finance.DefaultPriceTable()
	v.SetDefault("pricing.npk", prices.NPK)
	v.SetDefault("pricing.urea", prices.Urea)
	v.SetDefault("pricing.dap", prices.DAP)
	v.SetDefault("pricing.potassium", prices.Potassium)
	v.SetDefault("pricing.micronutrient", prices.Micronutrient)
	v.SetDefault("pricing.soybeans", prices.Soybeans)
	v.SetDefault("pricing.irrigation_per_ha", prices.IrrigationPerHa)
	v.SetDefault("pricing.labor_per_ha", prices.LaborPerHa)
	v.SetDefault("pricing.seeds_per_ha", prices.SeedsPerHa)
	v.SetDefault("pricing.last_updated", prices.LastUpdated)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
