package config

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"   yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis"    yaml:"redis"`
	Storage  StorageConfig  `mapstructure:"storage"  yaml:"storage"`
	S3       S3Config       `mapstructure:"s3"       yaml:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"      yaml:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"    yaml:"admin"`
	TTL      TTL            `mapstructure:"ttl"      yaml:"ttl"`
	Google   GoogleConfig   `mapstructure:"google"   yaml:"google"`
	Import   ImportConfig   `mapstructure:"import"   yaml:"import"`
	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
	CORS     CORSConfig     `mapstructure:"cors"     yaml:"cors"`
}

// LoadConfig : читает config.yaml (если есть), .env и переменные окружения DATAROOM_*
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
		if path != "" {
			_ = godotenv.Load(filepath.Join(filepath.Dir(path), envFile))
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("DATAROOM")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.Storage.Backend {
	case BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("неизвестный storage.backend: %q", c.Storage.Backend)
	}

	switch c.Storage.Files {
	case FilesS3, FilesLocal:
	default:
		return fmt.Errorf("неизвестный storage.files: %q", c.Storage.Files)
	}

	for name, value := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"server.request_timeout":  c.Server.RequestTimeout,
		"storage.timeout":         c.Storage.Timeout,
		"storage.lock_ttl":        c.Storage.LockTTL,
		"google.request_timeout":  c.Google.RequestTimeout,
		"jwt.access_token_ttl":    c.JWT.AccessTokenTTL,
		"jwt.refresh_token_ttl":   c.JWT.RefreshTokenTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("неверная длительность %s: %w", name, err)
		}
	}

	if c.JWT.SecretKey == "" {
		return fmt.Errorf("jwt.secret_key не задан")
	}

	return nil
}

// Duration : разбирает уже провалидированную длительность
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
