package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type ServerConfig struct {
	Addr            string `mapstructure:"addr"             yaml:"addr"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RequestTimeout  string `mapstructure:"request_timeout"  yaml:"request_timeout"`
}

type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"            yaml:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"     yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db"       yaml:"db"`
}

// StorageConfig : выбор бэкенда метаданных (postgres | redis) и хранилища файлов (s3 | local)
type StorageConfig struct {
	Backend        string `mapstructure:"backend"          yaml:"backend"`
	Files          string `mapstructure:"files"            yaml:"files"`
	LocalDir       string `mapstructure:"local_dir"        yaml:"local_dir"`
	Timeout        string `mapstructure:"timeout"          yaml:"timeout"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	LockTTL        string `mapstructure:"lock_ttl"         yaml:"lock_ttl"`
}

type S3Config struct {
	Bucket   string     `mapstructure:"bucket"   yaml:"bucket"`
	Client   *s3.Client `mapstructure:"-"        yaml:"-"`
	Region   string     `mapstructure:"region"   yaml:"region"`
	Endpoint string     `mapstructure:"endpoint" yaml:"endpoint"`
	Local    bool       `mapstructure:"local"    yaml:"local"`
}

type JWTConfig struct {
	SecretKey       string `mapstructure:"secret_key"        yaml:"secret_key"`
	AccessTokenTTL  string `mapstructure:"access_token_ttl"  yaml:"access_token_ttl"`
	RefreshTokenTTL string `mapstructure:"refresh_token_ttl" yaml:"refresh_token_ttl"`
}

type AdminConfig struct {
	AdminToken string `mapstructure:"admin_token" yaml:"admin_token"`
}

// TTL : время жизни кэша документов и pre-signed ссылок (в секундах)
type TTL struct {
	S3AndRedis int `mapstructure:"s3_and_redis" yaml:"s3_and_redis"`
}

type GoogleConfig struct {
	ClientID       string   `mapstructure:"client_id"       yaml:"client_id"`
	ClientSecret   string   `mapstructure:"client_secret"   yaml:"client_secret"`
	RedirectURL    string   `mapstructure:"redirect_url"    yaml:"redirect_url"`
	Scopes         []string `mapstructure:"scopes"          yaml:"scopes"`
	RequestTimeout string   `mapstructure:"request_timeout" yaml:"request_timeout"`
	PageSize       int64    `mapstructure:"page_size"       yaml:"page_size"`
}

type ImportConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
}

type LogConfig struct {
	File     string            `mapstructure:"file"     yaml:"file"`
	Rotation LogRotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"    yaml:"max_size"`
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"     yaml:"max_age"`
	Compress   bool `mapstructure:"compress"    yaml:"compress"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}
