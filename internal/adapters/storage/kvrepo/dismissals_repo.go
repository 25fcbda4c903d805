package kvrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pet-clinic-scheduling/internal/domain/reminders"
	"pet-clinic-scheduling/internal/ports/kv"
)

var _ reminders.DismissalRepository = (*DismissalRepo)(nil)

type DismissalRepo struct {
	store kv.Store
}

func NewDismissalRepo(store kv.Store) *DismissalRepo {
	return &DismissalRepo{store: store}
}

func decodeDismissals(b []byte) (dismissalRecord, error) {
	var rec dismissalRecord
	if len(b) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return dismissalRecord{}, fmt.Errorf("decode dismissals: %w", err)
	}
	return rec, nil
}

func (r *DismissalRepo) Get(ctx context.Context, userID string) ([]string, error) {
	b, err := r.store.Get(ctx, dismissedKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := decodeDismissals(b)
	if err != nil {
		return nil, err
	}
	return rec.IDs, nil
}

func (r *DismissalRepo) Add(ctx context.Context, userID, reminderID string) error {
	return r.store.Update(ctx, dismissedKey(userID), func(cur []byte) ([]byte, error) {
		rec, err := decodeDismissals(cur)
		if err != nil {
			return nil, err
		}
		for _, id := range rec.IDs {
			if id == reminderID {
				return cur, nil
			}
		}
		rec.UserID = userID
		rec.IDs = append(rec.IDs, reminderID)
		return json.Marshal(rec)
	})
}

// Retain deja solo los ids para los que keep devuelve true. Un set vacío se borra.
func (r *DismissalRepo) Retain(ctx context.Context, userID string, keep func(reminderID string) bool) (int, error) {
	removed := 0
	err := r.store.Update(ctx, dismissedKey(userID), func(cur []byte) ([]byte, error) {
		// fn puede reintentarse: el contador se recalcula en cada intento.
		removed = 0
		if cur == nil {
			return nil, nil
		}
		rec, err := decodeDismissals(cur)
		if err != nil {
			return nil, err
		}

		kept := make([]string, 0, len(rec.IDs))
		for _, id := range rec.IDs {
			if keep(id) {
				kept = append(kept, id)
			} else {
				removed++
			}
		}
		if len(kept) == 0 {
			return nil, nil
		}
		if removed == 0 {
			return cur, nil
		}
		rec.IDs = kept
		return json.Marshal(rec)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *DismissalRepo) ListUsers(ctx context.Context) ([]string, error) {
	recs, err := scanAll[dismissalRecord](ctx, r.store, prefixDismissed)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec.UserID != "" {
			out = append(out, rec.UserID)
		}
	}
	return out, nil
}
