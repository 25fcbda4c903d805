package kvrepo

import (
	"context"
	"encoding/json"
	"strings"

	"pet-clinic-scheduling/internal/domain/users"
	"pet-clinic-scheduling/internal/ports/kv"
)

var _ users.Repository = (*UserRepo)(nil)

type UserRepo struct {
	store kv.Store
}

func NewUserRepo(store kv.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(ctx context.Context, u users.User) error {
	if strings.TrimSpace(u.ID) == "" {
		return users.ErrInvalidInput
	}
	b, err := json.Marshal(toUserRecord(u))
	if err != nil {
		return err
	}
	return putIfAbsent(ctx, r.store, userKey(u.ID), b, users.ErrAlreadyExists)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	rec, err := getOne[userRecord](ctx, r.store, userKey(id), users.ErrNotFound)
	if err != nil {
		return users.User{}, err
	}
	return rec.toDomain(), nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]users.User, error) {
	recs, err := scanAll[userRecord](ctx, r.store, prefixUser)
	if err != nil {
		return nil, err
	}
	out := make([]users.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}
