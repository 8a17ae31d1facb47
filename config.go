package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-aadhaar-verifier/logging"
	"go-aadhaar-verifier/metrics"
	redis "go-aadhaar-verifier/redis"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "AADHAAR_VERIFIER"

type Config struct {
	ServerConfig ServerConfig `json:"server_config" mapstructure:"server_config"`

	LogLevel  string `json:"log_level" mapstructure:"log_level"`
	LogFormat string `json:"log_format" mapstructure:"log_format"`

	StorageType         string                    `json:"storage_type" mapstructure:"storage_type"`
	CacheTTL            time.Duration             `json:"cache_ttl" mapstructure:"cache_ttl"`
	RedisConfig         redis.RedisConfig         `json:"redis_config,omitempty" mapstructure:"redis_config"`
	RedisSentinelConfig redis.RedisSentinelConfig `json:"redis_sentinel_config,omitempty" mapstructure:"redis_sentinel_config"`

	RateLimit RateLimitConfig `json:"rate_limit" mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_config.host", "localhost")
	v.SetDefault("server_config.port", 8080)
	v.SetDefault("server_config.use_tls", false)
	v.SetDefault("server_config.tls_priv_key_path", "")
	v.SetDefault("server_config.tls_cert_path", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("storage_type", "memory")
	v.SetDefault("cache_ttl", DefaultCacheTTL.String())

	v.SetDefault("redis_config.host", "localhost")
	v.SetDefault("redis_config.port", 6379)
	v.SetDefault("redis_config.password", "")
	v.SetDefault("redis_config.namespace", "aadhaar-verifier")

	v.SetDefault("redis_sentinel_config.sentinel_host", "localhost")
	v.SetDefault("redis_sentinel_config.sentinel_port", 26379)
	v.SetDefault("redis_sentinel_config.password", "")
	v.SetDefault("redis_sentinel_config.master_name", "")
	v.SetDefault("redis_sentinel_config.sentinel_username", "")
	v.SetDefault("redis_sentinel_config.namespace", "aadhaar-verifier")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 60)
}

// loadConfig reads defaults, then the config file when one is named, then
// AADHAAR_VERIFIER_* environment variables (SERVER_CONFIG_PORT for
// server_config.port).
func loadConfig(path string) (*viper.Viper, Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return v, config, nil
}

// watchLogLevel applies log_level changes in the config file without a
// restart. Other keys need a restart.
func watchLogLevel(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		lvl := v.GetString("log_level")
		logging.SetLevel(lvl)
		slog.Info("Config file changed, log level reloaded", "file", e.Name, "log_level", lvl)
	})
	v.WatchConfig()
}

// createResultCache returns nil when caching is switched off.
func createResultCache(config *Config) (ResultCache, error) {
	switch config.StorageType {
	case "", "none":
		slog.Info("Result caching disabled")
		return nil, nil
	case "memory":
		slog.Info("Using in memory result cache", "ttl", config.CacheTTL)
		return NewInMemoryResultCache(config.CacheTTL), nil
	case "redis":
		slog.Info("Using redis result cache", "ttl", config.CacheTTL)
		client, err := redis.NewRedisClient(&config.RedisConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisResultCache(client, config.RedisConfig.Namespace, config.CacheTTL), nil
	case "redis_sentinel":
		slog.Info("Using redis sentinel result cache", "ttl", config.CacheTTL)
		client, err := redis.NewRedisSentinelClient(&config.RedisSentinelConfig)
		if err != nil {
			return nil, err
		}
		return NewRedisResultCache(client, config.RedisSentinelConfig.Namespace, config.CacheTTL), nil
	}
	return nil, fmt.Errorf("%v is not a valid storage type", config.StorageType)
}

func createVerifier(config *Config, m *metrics.Metrics) (DocumentVerifier, error) {
	cache, err := createResultCache(config)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate result cache: %w", err)
	}

	verifier := NewDocumentVerifier(m)
	if cache == nil {
		return verifier, nil
	}
	return NewCachingDocumentVerifier(verifier, cache, m), nil
}
