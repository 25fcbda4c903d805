package kvrepo

import (
	"context"
	"encoding/json"

	"pet-clinic-scheduling/internal/domain/blocks"
	"pet-clinic-scheduling/internal/ports/kv"
)

var _ blocks.Repository = (*BlockRepo)(nil)

// BlockRepo guarda un registro por fecha (block:<YYYY-MM-DD>); la key es la unicidad.
type BlockRepo struct {
	store kv.Store
}

func NewBlockRepo(store kv.Store) *BlockRepo {
	return &BlockRepo{store: store}
}

func (r *BlockRepo) Create(ctx context.Context, b blocks.Block) error {
	v, err := json.Marshal(toBlockRecord(b))
	if err != nil {
		return err
	}
	return putIfAbsent(ctx, r.store, blockKey(b.Date), v, blocks.ErrAlreadyExists)
}

func (r *BlockRepo) GetByDate(ctx context.Context, date string) (blocks.Block, error) {
	rec, err := getOne[blockRecord](ctx, r.store, blockKey(date), blocks.ErrNotFound)
	if err != nil {
		return blocks.Block{}, err
	}
	return rec.toDomain(), nil
}

func (r *BlockRepo) List(ctx context.Context) ([]blocks.Block, error) {
	recs, err := scanAll[blockRecord](ctx, r.store, prefixBlock)
	if err != nil {
		return nil, err
	}
	out := make([]blocks.Block, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (r *BlockRepo) Delete(ctx context.Context, date string) error {
	return r.store.Delete(ctx, blockKey(date))
}
