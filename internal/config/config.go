package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Security    SecurityConfig
	Analytics   AnalyticsConfig
	Marketplace MarketplaceConfig
	Scanner     ScannerConfig
	Discovery   DiscoveryConfig
	Scheduler   SchedulerConfig
	Webhooks    WebhookConfig
	Logging     LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	APIKey         string
	SessionTimeout int
}

// AnalyticsConfig - доступ к аналитическому провайдеру (Keepa-совместимый API).
type AnalyticsConfig struct {
	APIKey  string
	BaseURL string
}

// MarketplaceConfig - доступ к SP-API маркетплейса.
type MarketplaceConfig struct {
	SellerID     string
	RefreshToken string
	ClientID     string
	ClientSecret string
	BaseURL      string
	MarketplaceID string
}

// ScannerConfig управляет циклом сканера сделок (§4.F).
type ScannerConfig struct {
	ScanInterval                 time.Duration
	ScanMaxPages                 int
	MinPriceForAnalyticsSearch   int
	MaxAnalyticsSearchesPerKeyword int
	MinGrossMarginPct            float64
	MaxGrossMarginPct            float64
	MinGrossProfit               int
	DeepValidationMarginThreshold float64
	DeepValidationEnabled        bool
	SeriesExpansionMinProfit     int
	SystemFeeYen                 int
	DefaultForwardingCostYen     int
	GoodRankThreshold            int
	DefaultReferralFeePct        float64
	MinCheckIntervalSeconds      int
}

// DiscoveryConfig управляет циклом обнаружения ключевых слов (§4.G/4.H).
type DiscoveryConfig struct {
	Interval               time.Duration
	MinDealsForGeneration  int
	TokenBudget            int
	AutoAddThreshold       float64
	MaxAIKeywords          int
	DeactivationScans      int
	DeactivationThreshold  float64
	DemandFinderMaxResults int
	LLMEnabled             bool
	LLMEndpoint            string
	LLMAPIKey              string
	LLMModel               string
	SuggestEnabled         bool
}

// SchedulerConfig управляет интервалами фоновых задач (§4.J). DealScanInterval
// и DiscoveryInterval не дублируются здесь — Scheduler читает их прямо из
// Scanner.ScanInterval/Discovery.Interval при регистрации задач.
type SchedulerConfig struct {
	MinCheckInterval     time.Duration
	AlertCleanupInterval time.Duration
	ListingSyncInterval  time.Duration
	OrderMonitorInterval time.Duration
}

// WebhookConfig - настройки каналов уведомлений (§6). Type селектирует
// форму payload'а (discord/slack/line); URL - общий endpoint для
// discord/slack, для line используется Bearer-токен вместо URL.
type WebhookConfig struct {
	Type       string
	URL        string
	DiscordURL string
	SlackURL   string
	LineToken  string
	LineTo     string
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "arbitrage"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			APIKey:         getEnv("API_KEY", ""),
			SessionTimeout: getEnvAsInt("SESSION_TIMEOUT", 3600),
		},
		Analytics: AnalyticsConfig{
			APIKey:  getEnv("ANALYTICS_API_KEY", ""),
			BaseURL: getEnv("ANALYTICS_BASE_URL", "https://api.keepa.com"),
		},
		Marketplace: MarketplaceConfig{
			SellerID:      getEnv("SPAPI_SELLER_ID", ""),
			RefreshToken:  getEnv("SPAPI_REFRESH_TOKEN", ""),
			ClientID:      getEnv("SPAPI_CLIENT_ID", ""),
			ClientSecret:  getEnv("SPAPI_CLIENT_SECRET", ""),
			BaseURL:       getEnv("SPAPI_BASE_URL", "https://sellingpartnerapi-fe.amazon.com"),
			MarketplaceID: getEnv("SPAPI_MARKETPLACE_ID", "A1VC38T7YXB528"),
		},
		Scanner: ScannerConfig{
			ScanInterval:                    getEnvAsDuration("DEAL_SCAN_INTERVAL", 5*time.Minute),
			ScanMaxPages:                    getEnvAsInt("DEAL_SCAN_MAX_PAGES", 3),
			MinPriceForAnalyticsSearch:      getEnvAsInt("DEAL_MIN_PRICE_FOR_KEEPA_SEARCH", 3000),
			MaxAnalyticsSearchesPerKeyword:  getEnvAsInt("DEAL_MAX_KEEPA_SEARCHES_PER_KEYWORD", 3),
			MinGrossMarginPct:               getEnvAsFloat("DEAL_MIN_GROSS_MARGIN_PCT", 15.0),
			MaxGrossMarginPct:               getEnvAsFloat("DEAL_MAX_GROSS_MARGIN_PCT", 80.0),
			MinGrossProfit:                  getEnvAsInt("DEAL_MIN_GROSS_PROFIT", 1500),
			DeepValidationMarginThreshold:   getEnvAsFloat("DEAL_DEEP_VALIDATION_MARGIN_THRESHOLD", 50.0),
			DeepValidationEnabled:           getEnvAsBool("DEAL_DEEP_VALIDATION_ENABLED", false),
			SeriesExpansionMinProfit:        getEnvAsInt("SERIES_EXPANSION_MIN_PROFIT", 5000),
			SystemFeeYen:                    getEnvAsInt("SYSTEM_FEE_YEN", 100),
			DefaultForwardingCostYen:        getEnvAsInt("DEFAULT_FORWARDING_COST_YEN", 960),
			GoodRankThreshold:               getEnvAsInt("GOOD_RANK_THRESHOLD", 100_000),
			DefaultReferralFeePct:           getEnvAsFloat("DEFAULT_REFERRAL_FEE_PCT", 15.0),
			MinCheckIntervalSeconds:         getEnvAsInt("MIN_CHECK_INTERVAL_SECONDS", 60),
		},
		Discovery: DiscoveryConfig{
			Interval:               getEnvAsDuration("DISCOVERY_INTERVAL", 1*time.Hour),
			MinDealsForGeneration:  getEnvAsInt("DISCOVERY_MIN_DEALS", 5),
			TokenBudget:            getEnvAsInt("DISCOVERY_TOKEN_BUDGET", 20),
			AutoAddThreshold:       getEnvAsFloat("DISCOVERY_AUTO_ADD_THRESHOLD", 0.70),
			MaxAIKeywords:          getEnvAsInt("DISCOVERY_MAX_AI_KEYWORDS", 200),
			DeactivationScans:      getEnvAsInt("DISCOVERY_DEACTIVATION_SCANS", 30),
			DeactivationThreshold:  getEnvAsFloat("DISCOVERY_DEACTIVATION_THRESHOLD", 0.20),
			DemandFinderMaxResults: getEnvAsInt("DEMAND_FINDER_MAX_RESULTS", 50),
			LLMEnabled:             getEnvAsBool("LLM_ENABLED", false),
			LLMEndpoint:            getEnv("LLM_ENDPOINT", ""),
			LLMAPIKey:              getEnv("LLM_API_KEY", ""),
			LLMModel:               getEnv("LLM_MODEL", "gpt-4o-mini"),
			SuggestEnabled:         getEnvAsBool("SUGGEST_ENABLED", false),
		},
		Scheduler: SchedulerConfig{
			MinCheckInterval:     time.Duration(getEnvAsInt("MIN_CHECK_INTERVAL_SECONDS", 60)) * time.Second,
			AlertCleanupInterval: time.Duration(getEnvAsInt("ALERT_CLEANUP_INTERVAL_SECONDS", 1800)) * time.Second,
			ListingSyncInterval:  time.Duration(getEnvAsInt("LISTING_SYNC_INTERVAL_SECONDS", 3600)) * time.Second,
			OrderMonitorInterval: time.Duration(getEnvAsInt("ORDER_MONITOR_INTERVAL_SECONDS", 300)) * time.Second,
		},
		Webhooks: WebhookConfig{
			Type:       getEnv("WEBHOOK_TYPE", "discord"),
			URL:        getEnv("WEBHOOK_URL", ""),
			DiscordURL: getEnv("DISCORD_WEBHOOK_URL", ""),
			SlackURL:   getEnv("SLACK_WEBHOOK_URL", ""),
			LineToken:  getEnv("LINE_NOTIFY_TOKEN", ""),
			LineTo:     getEnv("LINE_TO", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if cfg.Security.APIKey == "" {
		return nil, fmt.Errorf("API_KEY is required to authenticate operator requests")
	}
	if cfg.Scanner.MinGrossMarginPct >= cfg.Scanner.MaxGrossMarginPct {
		return nil, fmt.Errorf("DEAL_MIN_GROSS_MARGIN_PCT must be less than DEAL_MAX_GROSS_MARGIN_PCT")
	}

	return cfg, nil
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
