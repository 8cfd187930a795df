package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	S3            S3Config            `mapstructure:"s3"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Media         MediaConfig         `mapstructure:"media"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT verification configuration. Tokens are issued by
// the identity collaborator; this service only validates them.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// MediaConfig bounds playback URL resolution so a slow storage backend
// degrades a session view instead of hanging it.
type MediaConfig struct {
	PlaybackURLTTL    time.Duration `mapstructure:"playback_url_ttl"`
	ResolveTimeout    time.Duration `mapstructure:"resolve_timeout"`
	ResolveRetryDelay time.Duration `mapstructure:"resolve_retry_delay"`
}

// NotificationsConfig controls the asynchronous retry sweep for
// notification records that failed to persist.
type NotificationsConfig struct {
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RetryBuffer   int           `mapstructure:"retry_buffer"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env override, e.g. database.uri -> DATABASE_URI
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "analysis_app")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("media.playback_url_ttl", "15m")
	viper.SetDefault("media.resolve_timeout", "3s")
	viper.SetDefault("media.resolve_retry_delay", "200ms")
	viper.SetDefault("notifications.retry_interval", "1m")
	viper.SetDefault("notifications.retry_buffer", 256)

	err = viper.ReadInConfig()
	// Missing config file is fine; env vars and defaults carry the rest.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
