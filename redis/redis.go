package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
	dialTimeout     = 2 * time.Second
	maxPort         = 65535
)

var (
	errHostPortRequired   = errors.New("host and port are required")
	errMasterNameRequired = errors.New("master name is required")
)

type RedisConfig struct {
	Host      string `json:"host" mapstructure:"host"`
	Port      int    `json:"port" mapstructure:"port"`
	Password  string `json:"password" mapstructure:"password"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

type RedisSentinelConfig struct {
	SentinelHost     string `json:"sentinel_host" mapstructure:"sentinel_host"`
	SentinelPort     int    `json:"sentinel_port" mapstructure:"sentinel_port"`
	Password         string `json:"password" mapstructure:"password"`
	MasterName       string `json:"master_name" mapstructure:"master_name"`
	SentinelUsername string `json:"sentinel_username" mapstructure:"sentinel_username"`
	Namespace        string `json:"namespace" mapstructure:"namespace"`
}

// NewRedisClient connects to a single redis node and pings it before
// returning, so a misconfigured cache fails at start-up.
func NewRedisClient(config *RedisConfig) (*redis.Client, error) {
	if !validAddr(config.Host, config.Port) {
		return nil, fmt.Errorf("failed to connect to Redis: %w", errHostPortRequired)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr(config.Host, config.Port),
		Password:    config.Password,
		DialTimeout: dialTimeout,
	})

	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "host", config.Host, "port", config.Port)
	return client, nil
}

// NewRedisSentinelClient resolves the master through a single sentinel.
func NewRedisSentinelClient(config *RedisSentinelConfig) (*redis.Client, error) {
	if config.MasterName == "" {
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: %w", errMasterNameRequired)
	}
	if !validAddr(config.SentinelHost, config.SentinelPort) {
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: %w", errHostPortRequired)
	}

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       config.MasterName,
		SentinelAddrs:    []string{addr(config.SentinelHost, config.SentinelPort)},
		SentinelUsername: config.SentinelUsername,
		Password:         config.Password,
		DialTimeout:      dialTimeout,
	})

	if err := ping(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis through Sentinel: %w", err)
	}

	slog.Info("Connected to Redis through Sentinel", "sentinel_host", config.SentinelHost, "master", config.MasterName)
	return client, nil
}

// ping retries a failing PING and returns only the last error. Options
// given by the caller override the defaults.
func ping(client *redis.Client, opts ...retry.Option) error {
	options := []retry.Option{
		retry.Attempts(connectAttempts),
		retry.Delay(connectDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("Redis ping failed, retrying", "attempt", n+1, "error", err)
		}),
	}
	return retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			defer cancel()
			return client.Ping(ctx).Err()
		},
		append(options, opts...)...,
	)
}

func validAddr(host string, port int) bool {
	return host != "" && port > 0 && port <= maxPort
}

func addr(host string, port int) string {
	return host + ":" + strconv.Itoa(port)
}
