// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	OwnerKey     string `mapstructure:"owner_key"`
	SignerKey    string `mapstructure:"signer_key"`
	WebhookURL   string `mapstructure:"webhook_url"`
	LogFile      string `mapstructure:"log_file"`
	Development  bool   `mapstructure:"development"`
	LogMaxSizeMB int    `mapstructure:"log_max_size_mb"`
	LogMaxAge    int    `mapstructure:"log_max_age"`
	LogBackups   int    `mapstructure:"log_backups"`
}

const (
	DefaultListenAddr = ":8080"
	DefaultLogFile    = "engine.log"
	DefaultLogMaxSize = 100
	DefaultLogMaxAge  = 7
	DefaultLogBackups = 3
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":     DefaultListenAddr,
		"log_file":        DefaultLogFile,
		"log_max_size_mb": DefaultLogMaxSize,
		"log_max_age":     DefaultLogMaxAge,
		"log_backups":     DefaultLogBackups,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// Owner returns the platform owner identity.
func (cfg *Config) Owner() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(cfg.OwnerKey)
}

// Signer returns the attestation signer address.
func (cfg *Config) Signer() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(cfg.SignerKey)
}

func validateConfig(cfg *Config) error {
	if cfg.OwnerKey == "" {
		return errors.New("missing owner_key in configuration")
	}
	if _, err := cfg.Owner(); err != nil {
		return errors.New("invalid owner_key")
	}
	if cfg.SignerKey == "" {
		return errors.New("missing signer_key in configuration")
	}
	if _, err := cfg.Signer(); err != nil {
		return errors.New("invalid signer_key")
	}
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if cfg.WebhookURL != "" {
		if err := validateURLWithCache(cfg.WebhookURL, "http"); err != nil {
			return errors.New("invalid webhook URL")
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.LogMaxSizeMB <= 0 {
		return errors.New("invalid log_max_size_mb")
	}
	if cfg.LogMaxAge <= 0 {
		return errors.New("invalid log_max_age")
	}
	if cfg.LogBackups < 0 {
		return errors.New("invalid log_backups")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("THRUST_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if envOwner := v.GetString("OWNER_KEY"); envOwner != "" {
		cfg.OwnerKey = envOwner
	}
	if envSigner := v.GetString("SIGNER_KEY"); envSigner != "" {
		cfg.SignerKey = envSigner
	}
	if envWebhook := v.GetString("WEBHOOK_URL"); envWebhook != "" {
		cfg.WebhookURL = envWebhook
	}
	return nil
}
