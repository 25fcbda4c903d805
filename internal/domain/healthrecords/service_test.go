package healthrecords_test

import (
	"context"
	"testing"
	"time"

	"pet-clinic-scheduling/internal/adapters/storage/kvrepo"
	"pet-clinic-scheduling/internal/adapters/storage/memory"
	"pet-clinic-scheduling/internal/domain/healthrecords"
	"pet-clinic-scheduling/internal/domain/pets"
	"pet-clinic-scheduling/internal/ports/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner1 = auth.Claims{UserID: "owner-1", Role: auth.RoleOwner}
	owner2 = auth.Claims{UserID: "owner-2", Role: auth.RoleOwner}
	staff  = auth.Claims{UserID: "staff-1", Role: auth.RoleStaff}
)

type fixture struct {
	store   *memory.Store
	locker  *memory.KeyLocker
	pets    *pets.Service
	records *healthrecords.Service
	pet     pets.Pet
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	locker := memory.NewKeyLocker()
	petSvc := pets.NewService(kvrepo.NewPetRepo(store), locker)
	recSvc := healthrecords.NewService(kvrepo.NewHealthRecordRepo(store), petSvc, locker)

	p, err := petSvc.Create(context.Background(), owner1, pets.CreateInput{Name: "Rex", Species: "dog"})
	require.NoError(t, err)
	return fixture{store: store, locker: locker, pets: petSvc, records: recSvc, pet: p}
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec, err := f.records.Create(ctx, staff, f.pet.ID, healthrecords.CreateInput{
		RecordType: healthrecords.RecordTypeVaccination,
		Title:      " Rabies ",
		Date:       day(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Rabies", rec.Title)
	assert.Equal(t, "staff-1", rec.AddedBy)
	assert.Equal(t, f.pet.ID, rec.PetID)

	_, err = f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{RecordType: "grooming", Title: "x", Date: day(1)})
	assert.ErrorIs(t, err, healthrecords.ErrInvalidInput)

	_, err = f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{RecordType: healthrecords.RecordTypeCheckup, Title: "x"})
	assert.ErrorIs(t, err, healthrecords.ErrInvalidInput)
}

func TestService_Permissions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.records.ListByPet(ctx, owner2, f.pet.ID)
	assert.ErrorIs(t, err, healthrecords.ErrForbidden)

	_, err = f.records.ListByPet(ctx, owner1, "missing")
	assert.ErrorIs(t, err, healthrecords.ErrNotFound)

	_, err = f.records.ListByPet(ctx, staff, f.pet.ID)
	assert.NoError(t, err)
}

func TestService_ListByPet_NewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, d := range []int{3, 10, 1} {
		_, err := f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{
			RecordType: healthrecords.RecordTypeCheckup, Title: "checkup", Date: day(d),
		})
		require.NoError(t, err)
	}

	items, err := f.records.ListByPet(ctx, owner1, f.pet.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].Date.Equal(day(10)))
	assert.True(t, items[2].Date.Equal(day(1)))
}

func TestService_Delete_ChecksPet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := f.pets.Create(ctx, owner1, pets.CreateInput{Name: "Michi", Species: "cat"})
	require.NoError(t, err)

	rec, err := f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{
		RecordType: healthrecords.RecordTypeSurgery, Title: "spay", Date: day(2),
	})
	require.NoError(t, err)

	_, err = f.records.Delete(ctx, owner1, other.ID, rec.ID)
	assert.ErrorIs(t, err, healthrecords.ErrNotFound)

	deleted, err := f.records.Delete(ctx, owner1, f.pet.ID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, deleted.ID)

	items, err := f.records.ListByPet(ctx, owner1, f.pet.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_PetDeleteCascades(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{
		RecordType: healthrecords.RecordTypeMedication, Title: "antibiotic", Date: day(4),
	})
	require.NoError(t, err)

	_, err = f.pets.Delete(ctx, owner1, f.pet.ID)
	require.NoError(t, err)

	_, err = f.records.ListByPet(ctx, owner1, f.pet.ID)
	assert.ErrorIs(t, err, healthrecords.ErrNotFound)
}

// deletingResolver borra la mascota justo después de la primera resolución,
// antes de que el servicio tome el lock del owner.
type deletingResolver struct {
	pets  *pets.Service
	actor auth.Claims
	done  bool
}

func (r *deletingResolver) OwnerOf(ctx context.Context, petID string) (string, error) {
	owner, err := r.pets.OwnerOf(ctx, petID)
	if err != nil || r.done {
		return owner, err
	}
	r.done = true
	if _, err := r.pets.Delete(ctx, r.actor, petID); err != nil {
		return "", err
	}
	return owner, nil
}

func TestService_Create_PetDeletedConcurrently(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	recSvc := healthrecords.NewService(
		kvrepo.NewHealthRecordRepo(f.store),
		&deletingResolver{pets: f.pets, actor: owner1},
		f.locker,
	)

	_, err := recSvc.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{
		RecordType: healthrecords.RecordTypeCheckup, Title: "checkup", Date: day(5),
	})
	assert.ErrorIs(t, err, healthrecords.ErrNotFound)

	report, err := kvrepo.Audit(ctx, f.store)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%+v", report)
}

func TestService_Delete_PetDeletedConcurrently(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec, err := f.records.Create(ctx, owner1, f.pet.ID, healthrecords.CreateInput{
		RecordType: healthrecords.RecordTypeVaccination, Title: "rabies", Date: day(6),
	})
	require.NoError(t, err)

	recSvc := healthrecords.NewService(
		kvrepo.NewHealthRecordRepo(f.store),
		&deletingResolver{pets: f.pets, actor: owner1},
		f.locker,
	)

	_, err = recSvc.Delete(ctx, owner1, f.pet.ID, rec.ID)
	assert.ErrorIs(t, err, healthrecords.ErrNotFound)

	report, err := kvrepo.Audit(ctx, f.store)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%+v", report)
}
