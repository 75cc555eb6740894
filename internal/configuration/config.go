package configuration

import (
	"fmt"
	"os"
)

type Config struct {
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Server    ServerConfig
	Storage   StorageConfig
	NATSURL   string
	CLAMAVURL string
	OIDCURL   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Enabled    bool
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
}

type ServerConfig struct {
	Port string
}

type StorageConfig struct {
	// Root is the local blob directory, keyed by hash+extension.
	Root string
	// Namespace is the default record partition.
	Namespace string
	// URLPrefix is prepended to locators for locally stored blobs.
	URLPrefix string
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "fileuser"),
			Password: getEnv("DB_PASSWORD", "filepassword"),
			DBName:   getEnv("DB_NAME", "filemanager"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Enabled:    getEnv("MINIO_ENABLED", "false") == "true",
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "files"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			Root:      getEnv("STORAGE_ROOT", "./static"),
			Namespace: getEnv("STORAGE_NAMESPACE", "default"),
			URLPrefix: getEnv("URL_PREFIX", "http://localhost:8080"),
		},
		NATSURL:   os.Getenv("NATS_URL"),
		CLAMAVURL: os.Getenv("CLAMAV_URL"),
		OIDCURL:   os.Getenv("OIDC_ISSUER_URL"),
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
