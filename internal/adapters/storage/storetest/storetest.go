// Package storetest tiene la batería de contrato que debe pasar todo kv.Store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run corre el contrato contra un store vacío nuevo por subtest.
func Run(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("SetGetDelete", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "pet:1", []byte(`{"a":1}`)))
		require.NoError(t, s.Set(ctx, "pet:1", []byte(`{"a":2}`)))

		v, err := s.Get(ctx, "pet:1")
		require.NoError(t, err)
		assert.Equal(t, `{"a":2}`, string(v))

		require.NoError(t, s.Delete(ctx, "pet:1"))
		require.NoError(t, s.Delete(ctx, "pet:1"), "delete must be idempotent")

		_, err = s.Get(ctx, "pet:1")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("MultiGetPreservesOrder", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k:a", []byte("A")))
		require.NoError(t, s.Set(ctx, "k:c", []byte("C")))

		got, err := s.MultiGet(ctx, []string{"k:c", "k:b", "k:a"})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "C", string(got[0]))
		assert.Nil(t, got[1])
		assert.Equal(t, "A", string(got[2]))

		empty, err := s.MultiGet(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("ScanPrefix", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "pet:1", []byte("p1")))
		require.NoError(t, s.Set(ctx, "pet:2", []byte("p2")))
		require.NoError(t, s.Set(ctx, "petshop:1", []byte("x")))
		require.NoError(t, s.Set(ctx, "user:1", []byte("u1")))
		// Comodines de LIKE/glob en la key no deben ampliar el match.
		require.NoError(t, s.Set(ctx, "a%_*:1", []byte("w1")))
		require.NoError(t, s.Set(ctx, "abcd:1", []byte("w2")))

		got, err := s.ScanPrefix(ctx, "pet:")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"p1", "p2"}, toStrings(got))

		got, err = s.ScanPrefix(ctx, "a%_*:")
		require.NoError(t, err)
		assert.Equal(t, []string{"w1"}, toStrings(got))

		got, err = s.ScanPrefix(ctx, "nothing:")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UpdateCreatesModifiesDeletes", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Update(ctx, "n", func(cur []byte) ([]byte, error) {
			assert.Nil(t, cur)
			return []byte("1"), nil
		}))
		require.NoError(t, s.Update(ctx, "n", func(cur []byte) ([]byte, error) {
			return append(cur, '2'), nil
		}))
		v, err := s.Get(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, "12", string(v))

		require.NoError(t, s.Update(ctx, "n", func(cur []byte) ([]byte, error) {
			return nil, nil
		}))
		_, err = s.Get(ctx, "n")
		assert.ErrorIs(t, err, kv.ErrNotFound)

		// Borrar algo que no existe tampoco es error.
		require.NoError(t, s.Update(ctx, "n", func(cur []byte) ([]byte, error) {
			return nil, nil
		}))
	})

	t.Run("UpdateAbortKeepsValue", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "k", []byte("v")))

		boom := errors.New("boom")
		err := s.Update(ctx, "k", func(cur []byte) ([]byte, error) {
			return []byte("other"), boom
		})
		assert.ErrorIs(t, err, boom)

		v, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(v))
	})

	t.Run("ConcurrentUpdatesAreNotLost", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Update(ctx, "list", func(cur []byte) ([]byte, error) {
					next := string(cur)
					if next != "" {
						next += ","
					}
					return []byte(next + fmt.Sprintf("%02d", i)), nil
				})
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		v, err := s.Get(ctx, "list")
		require.NoError(t, err)
		assert.Len(t, splitComma(string(v)), workers)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := s.Update(ctx, "k", func(cur []byte) ([]byte, error) { return []byte("v"), nil })
		assert.Error(t, err)
	})
}

func toStrings(values [][]byte) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	sort.Strings(out)
	return out
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
