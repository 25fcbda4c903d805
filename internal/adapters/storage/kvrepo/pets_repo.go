package kvrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/ports/kv"

	"go.uber.org/multierr"
)

var _ pets.Repository = (*PetRepo)(nil)

type PetRepo struct {
	store kv.Store
}

func NewPetRepo(store kv.Store) *PetRepo {
	return &PetRepo{store: store}
}

// Create escribe el registro y después lo agrega al índice del owner.
// Si el índice falla se borra el registro para no dejarlo huérfano.
func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.OwnerID) == "" {
		return fmt.Errorf("%w: pet id and owner required", pets.ErrInvalidInput)
	}
	b, err := json.Marshal(toPetRecord(p))
	if err != nil {
		return err
	}

	if err := putIfAbsent(ctx, r.store, petKey(p.ID), b, fmt.Errorf("pet %s already exists", p.ID)); err != nil {
		return err
	}
	if err := appendID(ctx, r.store, ownerPetsKey(p.OwnerID), p.OwnerID, p.ID); err != nil {
		return multierr.Append(
			fmt.Errorf("index owner pets: %w", err),
			r.store.Delete(ctx, petKey(p.ID)),
		)
	}
	return nil
}

// Update no mueve la mascota de owner; el índice no cambia.
func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	b, err := json.Marshal(toPetRecord(p))
	if err != nil {
		return err
	}
	return replaceExisting(ctx, r.store, petKey(p.ID), b, pets.ErrNotFound)
}

// Delete borra el historial clínico de la mascota, la saca del índice del owner
// y por último borra el registro. Los turnos quedan (guardan PetName).
func (r *PetRepo) Delete(ctx context.Context, id string) error {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	healthIDs, err := readIndex(ctx, r.store, petHealthKey(p.ID))
	if err != nil {
		return err
	}
	var errs error
	for _, hid := range healthIDs {
		errs = multierr.Append(errs, r.store.Delete(ctx, healthKey(hid)))
	}
	if errs != nil {
		return fmt.Errorf("delete health records of pet %s: %w", p.ID, errs)
	}
	if err := r.store.Delete(ctx, petHealthKey(p.ID)); err != nil {
		return err
	}

	if err := removeID(ctx, r.store, ownerPetsKey(p.OwnerID), p.ID); err != nil {
		return fmt.Errorf("index owner pets: %w", err)
	}
	return r.store.Delete(ctx, petKey(p.ID))
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	rec, err := getOne[petRecord](ctx, r.store, petKey(id), pets.ErrNotFound)
	if err != nil {
		return pets.Pet{}, err
	}
	return rec.toDomain(), nil
}

func (r *PetRepo) ListByOwner(ctx context.Context, ownerID string) ([]pets.Pet, error) {
	ids, err := readIndex(ctx, r.store, ownerPetsKey(ownerID))
	if err != nil {
		return nil, err
	}
	recs, err := loadByIDs[petRecord](ctx, r.store, petKey, ids)
	if err != nil {
		return nil, err
	}
	return petsFrom(recs), nil
}

func (r *PetRepo) ListAll(ctx context.Context) ([]pets.Pet, error) {
	recs, err := scanAll[petRecord](ctx, r.store, prefixPet)
	if err != nil {
		return nil, err
	}
	return petsFrom(recs), nil
}

// petsFrom ordena por created_at asc para que los listados sean estables.
func petsFrom(recs []petRecord) []pets.Pet {
	out := make([]pets.Pet, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
