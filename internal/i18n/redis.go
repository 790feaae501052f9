package i18n

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis translator configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to the locale to form the hash name
	Prefix string
	Locale string
	// Timeout bounds each lookup
	Timeout time.Duration
}

// DefaultRedisConfig returns a default Redis translator configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:    "localhost:6379",
		Prefix:  "i18n:",
		Locale:  "en",
		Timeout: 2 * time.Second,
	}
}

// RedisTranslator reads texts from one Redis hash per locale. Each hash
// field is a dotted key.
type RedisTranslator struct {
	client *redis.Client
	config RedisConfig
}

// NewRedisTranslator connects to Redis and verifies the connection
func NewRedisTranslator(config RedisConfig) (*RedisTranslator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisTranslatorWithClient(client, config), nil
}

// NewRedisTranslatorWithClient creates a translator over an existing client
func NewRedisTranslatorWithClient(client *redis.Client, config RedisConfig) *RedisTranslator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultRedisConfig().Timeout
	}
	return &RedisTranslator{client: client, config: config}
}

func (r *RedisTranslator) hash() string {
	return r.config.Prefix + r.config.Locale
}

// Translate implements Translator
func (r *RedisTranslator) Translate(key string, scope []string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	field := Key(key, scope)
	text, err := r.client.HGet(ctx, r.hash(), field).Result()
	if errors.Is(err, redis.Nil) {
		return "", missing(r.config.Locale, field)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read translation %s: %w", field, err)
	}
	return text, nil
}

// Store writes texts keyed by dotted key into the locale's hash
func (r *RedisTranslator) Store(ctx context.Context, texts map[string]string) error {
	if len(texts) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(texts)*2)
	for k, v := range texts {
		values = append(values, k, v)
	}
	if err := r.client.HSet(ctx, r.hash(), values...).Err(); err != nil {
		return fmt.Errorf("failed to store translations: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (r *RedisTranslator) Close() error {
	return r.client.Close()
}
