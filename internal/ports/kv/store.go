package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kv: not found")

	// ErrContention se devuelve cuando Update agota los reintentos de CAS.
	ErrContention = errors.New("kv: too much contention")
)

// UpdateFunc recibe el valor actual (nil si no existe) y devuelve el nuevo valor.
// Devolver next == nil elimina la key. Un error aborta sin escribir.
// Los backends con CAS pueden llamar fn más de una vez: no debe tener efectos laterales.
type UpdateFunc func(current []byte) (next []byte, err error)

// Store es el contrato mínimo de persistencia key-value.
// No hay transacciones multi-key: la única operación atómica es Update sobre una key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// MultiGet preserva el orden de keys; las ausentes vienen como nil.
	MultiGet(ctx context.Context, keys []string) ([][]byte, error)

	// ScanPrefix devuelve los valores cuyo key empieza con prefix, sin orden definido.
	ScanPrefix(ctx context.Context, prefix string) ([][]byte, error)

	// Update hace read-modify-write atómico sobre una sola key.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	Close() error
}

// Locker serializa secciones críticas por key (single-writer).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
