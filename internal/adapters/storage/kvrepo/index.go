package kvrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pet-clinic-scheduling/internal/ports/kv"
)

// indexList es el valor de una key idx:*. Owner repite el sufijo de la key
// para poder auditar con ScanPrefix (que devuelve solo valores).
type indexList struct {
	Owner string   `json:"owner"`
	IDs   []string `json:"ids"`
}

func decodeIndex(b []byte) (indexList, error) {
	var l indexList
	if len(b) == 0 {
		return l, nil
	}
	if err := json.Unmarshal(b, &l); err != nil {
		return indexList{}, fmt.Errorf("decode index: %w", err)
	}
	return l, nil
}

func readIndex(ctx context.Context, store kv.Store, key string) ([]string, error) {
	b, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l, err := decodeIndex(b)
	if err != nil {
		return nil, err
	}
	return l.IDs, nil
}

// appendID agrega id a la lista de forma atómica; si ya está no hace nada.
func appendID(ctx context.Context, store kv.Store, key, owner, id string) error {
	return store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		l, err := decodeIndex(cur)
		if err != nil {
			return nil, err
		}
		for _, existing := range l.IDs {
			if existing == id {
				return cur, nil
			}
		}
		l.Owner = owner
		l.IDs = append(l.IDs, id)
		return json.Marshal(l)
	})
}

// removeID saca id de la lista de forma atómica. Una lista vacía se borra.
func removeID(ctx context.Context, store kv.Store, key, id string) error {
	return store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, nil
		}
		l, err := decodeIndex(cur)
		if err != nil {
			return nil, err
		}

		kept := l.IDs[:0:0]
		for _, existing := range l.IDs {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			return nil, nil
		}
		l.IDs = kept
		return json.Marshal(l)
	})
}

// putIfAbsent crea la key solo si no existe; si existe devuelve existsErr.
func putIfAbsent(ctx context.Context, store kv.Store, key string, value []byte, existsErr error) error {
	return store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		if cur != nil {
			return nil, existsErr
		}
		return value, nil
	})
}

// replaceExisting sobrescribe la key solo si existe; si no, devuelve notFound.
func replaceExisting(ctx context.Context, store kv.Store, key string, value []byte, notFound error) error {
	return store.Update(ctx, key, func(cur []byte) ([]byte, error) {
		if cur == nil {
			return nil, notFound
		}
		return value, nil
	})
}

// loadByIDs lee los registros de un índice. Ids colgados (registro ausente) se saltean.
func loadByIDs[T any](ctx context.Context, store kv.Store, keyOf func(string) string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}

	values, err := store.MultiGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](values)
}

func getOne[T any](ctx context.Context, store kv.Store, key string, notFound error) (T, error) {
	var v T
	b, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return v, notFound
	}
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

func scanAll[T any](ctx context.Context, store kv.Store, prefix string) ([]T, error) {
	values, err := store.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](values)
}

func decodeAll[T any](values [][]byte) ([]T, error) {
	out := make([]T, 0, len(values))
	for _, b := range values {
		if b == nil {
			continue
		}
		var v T
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
