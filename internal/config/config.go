package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       App       `mapstructure:",squash"`
	Server    Server    `mapstructure:",squash"`
	Database  Database  `mapstructure:",squash"`
	Meta      Meta      `mapstructure:",squash"`
	Warehouse Warehouse `mapstructure:",squash"`
	Sync      Sync      `mapstructure:",squash"`
	Auth      Auth      `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	URL         string `mapstructure:"meta_url"`
	Version     string `mapstructure:"meta_version"`
	AccessToken string `mapstructure:"meta_access_token"`
}

type Warehouse struct {
	FactTable string `mapstructure:"warehouse_fact_table"`
}

// Sync concentra os parâmetros do pipeline de sincronização de insights
type Sync struct {
	Level                 string  `mapstructure:"sync_level"`
	FallbackEnabled       bool    `mapstructure:"sync_fallback_enabled"`
	PageSize              int     `mapstructure:"sync_page_size"`
	RateLimitRPS          float64 `mapstructure:"sync_rate_limit_rps"`
	Retries               int     `mapstructure:"sync_retries"`
	RetryBackoffSeconds   float64 `mapstructure:"sync_retry_backoff_seconds"`
	ChunkDays             int     `mapstructure:"sync_chunk_days"`
	FragmentThresholdDays int     `mapstructure:"sync_fragment_threshold_days"`
	SkipMalformedRecords  bool    `mapstructure:"sync_skip_malformed_records"`
	CronSchedule          string  `mapstructure:"sync_cron"`
	LookbackDays          int     `mapstructure:"sync_lookback_days"`
	Enabled               bool    `mapstructure:"sync_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/paid_social")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL

	viper.SetDefault("WAREHOUSE_FACT_TABLE", "fact_ad_insights")

	// Defaults do pipeline de sincronização
	viper.SetDefault("SYNC_LEVEL", "ad")
	viper.SetDefault("SYNC_FALLBACK_ENABLED", true)
	viper.SetDefault("SYNC_PAGE_SIZE", 500)
	viper.SetDefault("SYNC_RATE_LIMIT_RPS", 0.0) // 0 desabilita o rate limiter
	viper.SetDefault("SYNC_RETRIES", 3)
	viper.SetDefault("SYNC_RETRY_BACKOFF_SECONDS", 2.0)
	viper.SetDefault("SYNC_CHUNK_DAYS", 30)
	viper.SetDefault("SYNC_FRAGMENT_THRESHOLD_DAYS", 60)
	viper.SetDefault("SYNC_SKIP_MALFORMED_RECORDS", false)
	viper.SetDefault("SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("SYNC_LOOKBACK_DAYS", 7)
	viper.SetDefault("SYNC_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Info("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
