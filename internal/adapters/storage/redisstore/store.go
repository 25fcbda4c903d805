package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/redis/go-redis/v9"
)

var _ kv.Store = (*Store)(nil)

const (
	maxUpdateAttempts = 50
	scanBatch         = 200
	mgetBatch         = 500
)

// Store implementa kv.Store sobre Redis. Update usa WATCH/MULTI (CAS optimista).
type Store struct {
	client *redis.Client
}

// Open parsea una URL redis://[:password@]host:port/db y verifica la conexión.
func Open(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return New(client), nil
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Client expone el cliente para construir un Locker sobre la misma conexión.
func (s *Store) Client() *redis.Client {
	return s.client
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *Store) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += mgetBatch {
		end := min(start+mgetBatch, len(keys))

		vals, err := s.client.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			out = append(out, toBytes(v))
		}
	}
	return out, nil
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	seen := map[string]struct{}{}
	keys := make([]string, 0)

	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		// SCAN puede repetir keys entre iteraciones.
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	vals, err := s.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, 0, len(vals))
	for _, v := range vals {
		// borrada entre SCAN y MGET
		if v == nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if errors.Is(err, redis.Nil) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if next == nil {
				p.Del(ctx, key)
				return nil
			}
			p.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return kv.ErrContention
}

func (s *Store) Close() error {
	return s.client.Close()
}

func toBytes(v any) []byte {
	switch t := v.(type) {
	case string:
		return []byte(t)
	case []byte:
		return t
	default:
		return nil
	}
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
