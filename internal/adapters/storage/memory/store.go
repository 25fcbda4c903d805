package memory

import (
	"context"
	"strings"
	"sync"

	"pet-clinic-scheduling/internal/ports/kv"
)

var _ kv.Store = (*Store)(nil)

// Store es un kv.Store in-memory. Sirve para dev y tests; no persiste nada.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return clone(v), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = clone(value)
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *Store) MultiGet(ctx context.Context, keys []string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.data[k]; ok {
			out[i] = clone(v)
		}
	}
	return out, nil
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, 0)
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, clone(v))
		}
	}
	return out, nil
}

// Update corre fn con el lock de escritura tomado: nadie ve estados intermedios.
func (s *Store) Update(ctx context.Context, key string, fn kv.UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current []byte
	if v, ok := s.data[key]; ok {
		current = clone(v)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		delete(s.data, key)
		return nil
	}
	s.data[key] = clone(next)
	return nil
}

func (s *Store) Close() error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
