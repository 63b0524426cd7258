package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Vishnuvardhanvemula/FinanceYatra/internal/core/domain"
)

const (
	defaultPrefix = "financeyatra:translation:"
	defaultTTL    = 24 * time.Hour
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// TranslationCache stores backend translations keyed by language pair and
// a digest of the source text.
type TranslationCache struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewTranslationCache(cfg Config) *TranslationCache {
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TranslationCache{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (c *TranslationCache) Get(ctx context.Context, source, target domain.LanguageCode, text string) (string, bool, error) {
	value, err := c.client.Get(ctx, c.key(source, target, text)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get translation: %w", err)
	}
	return value, true, nil
}

func (c *TranslationCache) Set(ctx context.Context, source, target domain.LanguageCode, text, translated string) error {
	if err := c.client.Set(ctx, c.key(source, target, text), translated, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set translation: %w", err)
	}
	return nil
}

func (c *TranslationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *TranslationCache) Close() error {
	return c.client.Close()
}

func (c *TranslationCache) key(source, target domain.LanguageCode, text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + string(source) + ":" + string(target) + ":" + hex.EncodeToString(sum[:])
}
