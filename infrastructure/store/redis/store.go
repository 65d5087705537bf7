// ABOUTME: Redis-backed ArticleStore using go-redis with RedisJSON documents
// ABOUTME: Stores each processed article as a JSON document with a native TTL

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nitishm/go-rejson/v4"
	goredis "github.com/redis/go-redis/v9"

	"business-digest-api/core/domain"
	"business-digest-api/pkg/config"
)

const keyPrefix = "article:"

// Store implements the ArticleStore interface using Redis.
type Store struct {
	client *goredis.Client
	json   *rejson.Handler
	ttl    time.Duration
}

// New creates a Redis store and verifies connectivity.
func New(cfg config.RedisConfig, ttl time.Duration) (*Store, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	handler := rejson.NewReJSONHandler()
	handler.SetGoRedisClientWithContext(ctx, client)

	return &Store{client: client, json: handler, ttl: ttl}, nil
}

// Lookup returns cached processed articles for items, in input order.
// Redis expires entries natively, so every hit is live.
func (s *Store) Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error) {
	found := []domain.ProcessedArticle{}

	for _, item := range items {
		article, ok, err := s.get(ctx, item.Link)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, article)
		}
	}

	return found, nil
}

// FilterUncached returns the items with no stored document.
func (s *Store) FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error) {
	uncached := []domain.RawArticle{}

	for _, item := range items {
		exists, err := s.client.Exists(ctx, keyPrefix+item.Link).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check redis for article: %w", err)
		}
		if exists == 0 {
			uncached = append(uncached, item)
		}
	}

	return uncached, nil
}

// Update stores processed articles as JSON documents with the store TTL.
func (s *Store) Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error {
	rawLinks := make(map[string]struct{}, len(rawItems))
	for _, item := range rawItems {
		rawLinks[item.Link] = struct{}{}
	}

	for _, article := range processed {
		if article.Link == "" {
			continue
		}
		if _, ok := rawLinks[article.Link]; !ok {
			continue
		}

		key := keyPrefix + article.Link
		if _, err := s.json.JSONSet(key, ".", article); err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set article TTL: %w", err)
		}
	}

	return nil
}

// CleanExpired is a no-op: Redis evicts expired documents itself.
func (s *Store) CleanExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// get fetches and decodes one document. Missing keys are not errors.
func (s *Store) get(ctx context.Context, link string) (domain.ProcessedArticle, bool, error) {
	var article domain.ProcessedArticle

	res, err := s.json.JSONGet(keyPrefix+link, ".")
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return article, false, nil
		}
		return article, false, fmt.Errorf("failed to fetch article: %w", err)
	}
	if res == nil {
		return article, false, nil
	}

	payload, ok := res.([]byte)
	if !ok {
		return article, false, fmt.Errorf("unexpected redis payload type %T", res)
	}

	if err := json.Unmarshal(payload, &article); err != nil {
		return article, false, fmt.Errorf("failed to decode article: %w", err)
	}

	return article, true, nil
}
