package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SecurityConfig struct {
	BcryptCost       int    `mapstructure:"bcrypt_cost"`
	MasterPassword   string `mapstructure:"master_password"`
	EncryptionKey    string `mapstructure:"encryption_key"`
	DeletionLockDays int    `mapstructure:"deletion_lock_days"`
}

// OCRConfig configures the external name-extraction oracle (Gemini REST API).
type OCRConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ReportConfig struct {
	Timezone string `mapstructure:"timezone"`
	Sender   string `mapstructure:"sender"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir"`
}

type AppSubConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Report   ReportConfig   `mapstructure:"report"`
	Backup   BackupConfig   `mapstructure:"backup"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. ADY_OCR_API_KEY=...
		v.SetEnvPrefix("ADY")
		v.AutomaticEnv()

		if err = v.ReadInConfig(); err != nil {
			err = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		applyDefaults(&c)
		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	if appConfig == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return appConfig, nil
}

func applyDefaults(c *Config) {
	if c.Security.DeletionLockDays <= 0 {
		c.Security.DeletionLockDays = 60
	}
	if c.OCR.Model == "" {
		c.OCR.Model = "gemini-2.0-flash"
	}
	if c.OCR.Endpoint == "" {
		c.OCR.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = 60
	}
	if c.Report.Timezone == "" {
		c.Report.Timezone = "Asia/Kolkata"
	}
	if c.Report.Sender == "" {
		c.Report.Sender = "ADY ADMIN"
	}
	if c.App.PageSize <= 0 {
		c.App.PageSize = 20
	}
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
