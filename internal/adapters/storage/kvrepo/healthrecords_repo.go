package kvrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pet-clinic-scheduling/internal/domain/healthrecords"
	"pet-clinic-scheduling/internal/ports/kv"

	"go.uber.org/multierr"
)

var _ healthrecords.Repository = (*HealthRecordRepo)(nil)

type HealthRecordRepo struct {
	store kv.Store
}

func NewHealthRecordRepo(store kv.Store) *HealthRecordRepo {
	return &HealthRecordRepo{store: store}
}

func (r *HealthRecordRepo) Create(ctx context.Context, h healthrecords.HealthRecord) error {
	if strings.TrimSpace(h.ID) == "" || strings.TrimSpace(h.PetID) == "" {
		return fmt.Errorf("%w: record id and pet required", healthrecords.ErrInvalidInput)
	}
	b, err := json.Marshal(toHealthRecord(h))
	if err != nil {
		return err
	}

	if err := putIfAbsent(ctx, r.store, healthKey(h.ID), b, fmt.Errorf("health record %s already exists", h.ID)); err != nil {
		return err
	}
	if err := appendID(ctx, r.store, petHealthKey(h.PetID), h.PetID, h.ID); err != nil {
		return multierr.Append(
			fmt.Errorf("index pet health: %w", err),
			r.store.Delete(ctx, healthKey(h.ID)),
		)
	}
	return nil
}

func (r *HealthRecordRepo) GetByID(ctx context.Context, id string) (healthrecords.HealthRecord, error) {
	rec, err := getOne[healthRecord](ctx, r.store, healthKey(id), healthrecords.ErrNotFound)
	if err != nil {
		return healthrecords.HealthRecord{}, err
	}
	return rec.toDomain(), nil
}

func (r *HealthRecordRepo) ListByPet(ctx context.Context, petID string) ([]healthrecords.HealthRecord, error) {
	ids, err := readIndex(ctx, r.store, petHealthKey(petID))
	if err != nil {
		return nil, err
	}
	recs, err := loadByIDs[healthRecord](ctx, r.store, healthKey, ids)
	if err != nil {
		return nil, err
	}
	out := make([]healthrecords.HealthRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Delete saca el id del índice de la mascota antes de borrar el registro.
func (r *HealthRecordRepo) Delete(ctx context.Context, id string) error {
	h, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := removeID(ctx, r.store, petHealthKey(h.PetID), h.ID); err != nil {
		return fmt.Errorf("index pet health: %w", err)
	}
	return r.store.Delete(ctx, healthKey(h.ID))
}
