package redisstore

import (
	"context"
	"time"

	"pet-clinic-scheduling/internal/ports/kv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ kv.Locker = (*Locker)(nil)

const (
	defaultLockTTL = 10 * time.Second
	lockPollEvery  = 25 * time.Millisecond
	lockKeyPrefix  = "lock:"
)

// releaseScript borra el lock solo si el token sigue siendo el nuestro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker es un lease lock (SET NX PX) compartido entre instancias del servicio.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{client: client, ttl: ttl}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockPollEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// contexto propio: el del request puede estar cancelado al liberar
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(rctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
