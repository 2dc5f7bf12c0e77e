package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // postgres | mysql
		URL      string `yaml:"url"`    // kalau diisi, menang atas field per-bagian
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Classifier struct {
		Provider string `yaml:"provider"` // anthropic | openai
		APIKey   string `yaml:"apiKey"`
		Model    string `yaml:"model"`
	} `yaml:"classifier"`

	Privacy struct {
		IPHashSalt string `yaml:"ipHashSalt"`
	} `yaml:"privacy"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml lalu timpa dengan env var. File boleh tidak ada
// (deployment env-only), env tetap dibaca.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// lanjut, env-only
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("CLASSIFIER_PROVIDER"); v != "" {
		c.Classifier.Provider = v
	}
	if v := os.Getenv("CLASSIFIER_API_KEY"); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv("CLASSIFIER_MODEL"); v != "" {
		c.Classifier.Model = v
	}
	if v := os.Getenv("IP_HASH_SALT"); v != "" {
		c.Privacy.IPHashSalt = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		c.Minio.Enabled = true
		c.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		c.Minio.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		c.Minio.BucketName = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Classifier.Provider == "" {
		c.Classifier.Provider = "anthropic"
	}
	if c.Privacy.IPHashSalt == "" {
		c.Privacy.IPHashSalt = "mdlabs"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "atlas-archive"
	}
}

// Production true kalau APP_ENV=production; detail error 500 disembunyikan.
func (c *Config) Production() bool {
	return c.Server.Env == "production"
}

// DSN build connection string sesuai driver. Database.URL menang kalau diisi.
func (c *Config) DSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	switch c.Database.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
		)
	default:
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
}
