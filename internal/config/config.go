package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates every section of the application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	MySQL         MySQLConfig         `mapstructure:"mysql"`
	Redis         RedisConfig         `mapstructure:"redis"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	AliyunOSS     AliyunOSSConfig     `mapstructure:"aliyun_oss"`
	RabbitMQ      RabbitMQConfig      `mapstructure:"rabbitmq"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Log           LogConfig           `mapstructure:"log"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

type AliyunOSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	SecretKey        string        `mapstructure:"secret_key"`
	ExpiresIn        time.Duration `mapstructure:"expires_in"`
	RefreshExpiresIn time.Duration `mapstructure:"refresh_expires_in"`
	Issuer           string        `mapstructure:"issuer"`
}

// StorageConfig holds the blob backend selection and the quota policy knobs.
type StorageConfig struct {
	Type               string        `mapstructure:"type"`                 // "minio" or "aliyun_oss"
	PresignedURLExpiry time.Duration `mapstructure:"presigned_url_expiry"` // TTL for presigned PUT/GET URLs
	DefaultQuotaBytes  uint64        `mapstructure:"default_quota_bytes"`  // ceiling for owners without a policy row
	ReservationGrace   time.Duration `mapstructure:"reservation_grace"`    // extra time past the presign TTL before a reservation expires
	SweepInterval      time.Duration `mapstructure:"sweep_interval"`       // how often the reconcile scheduler scans
}

type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	ErrorPath  string `mapstructure:"error_path"`
	Level      string `mapstructure:"level"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	FilesIndex string   `mapstructure:"files_index"`
}

var AppConfig *Config

// LoadConfig reads config.yaml (working dir, ./configs, /etc/cloudy) and
// CLOUDY_-prefixed environment variables, env taking precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/cloudy/")

	viper.SetEnvPrefix("CLOUDY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.env", "debug")
	viper.SetDefault("storage.type", "minio")
	viper.SetDefault("storage.presigned_url_expiry", 10*time.Minute)
	viper.SetDefault("storage.default_quota_bytes", uint64(1)<<30) // 1 GiB
	viper.SetDefault("storage.reservation_grace", 5*time.Minute)
	viper.SetDefault("storage.sweep_interval", time.Minute)
	viper.SetDefault("elasticsearch.files_index", "cloudy-files")
	viper.SetDefault("log.output_path", "logs/app.log")
	viper.SetDefault("log.error_path", "logs/error.log")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: env vars and defaults still apply.
			log.Println("Warning: config file not found, using environment variables and defaults.")
		} else {
			return nil, err
		}
	}

	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		return nil, err
	}

	return AppConfig, nil
}
