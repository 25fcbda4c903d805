package pets_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pet-clinic-scheduling/internal/adapters/storage/kvrepo"
	"pet-clinic-scheduling/internal/adapters/storage/memory"
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

func newService() *pets.Service {
	return pets.NewService(kvrepo.NewPetRepo(memory.NewStore()), memory.NewKeyLocker())
}

func TestService_Create_DefaultsOwnerToActor(t *testing.T) {
	svc := newService()

	p, err := svc.Create(context.Background(), owner1, pets.CreateInput{Name: " Firulais ", Species: "dog", Weight: 12.5})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", p.OwnerID)
	assert.Equal(t, "Firulais", p.Name)
	assert.NotEmpty(t, p.ID)

	mine, err := svc.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p.ID, mine[0].ID)
}

func TestService_Create_ForAnotherOwner(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner1, pets.CreateInput{OwnerID: "owner-2", Name: "Rex", Species: "dog"})
	assert.ErrorIs(t, err, pets.ErrForbidden)

	p, err := svc.Create(ctx, staff, pets.CreateInput{OwnerID: "owner-2", Name: "Rex", Species: "dog"})
	require.NoError(t, err)
	assert.Equal(t, "owner-2", p.OwnerID)
}

func TestService_Create_RejectsInvalid(t *testing.T) {
	svc := newService()

	_, err := svc.Create(context.Background(), owner1, pets.CreateInput{Name: "  ", Species: "dog"})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)

	_, err = svc.Create(context.Background(), owner1, pets.CreateInput{Name: "Rex", Species: "dog", Weight: -1})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)
}

func TestService_Create_DuplicateReturnsExisting(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Michi", Species: "cat", MicrochipID: "chip-1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner1, pets.CreateInput{Name: "Otro nombre", Species: "cat", MicrochipID: "chip-1"})
	require.ErrorIs(t, err, pets.ErrDuplicate)

	var dup *pets.DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first.ID, dup.Existing.ID)

	// otro owner puede tener el mismo chip cargado
	_, err = svc.Create(ctx, owner2, pets.CreateInput{Name: "Michi", Species: "cat", MicrochipID: "chip-1"})
	assert.NoError(t, err)
}

func TestService_Create_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	const n = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Rex", Species: "dog", MicrochipID: "same"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, pets.ErrDuplicate) {
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
}

func TestService_Get_Permissions(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Rex", Species: "dog"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, owner2, p.ID)
	assert.ErrorIs(t, err, pets.ErrForbidden)

	_, err = svc.Get(ctx, staff, p.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, owner1, "missing")
	assert.ErrorIs(t, err, pets.ErrNotFound)

	_, err = svc.ListAll(ctx, owner1)
	assert.ErrorIs(t, err, pets.ErrForbidden)
}

func TestService_Update_PatchesAndClearsDates(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	p, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Rex", Species: "dog", NextVaccinationDate: &due})
	require.NoError(t, err)

	breed := "Beagle"
	got, err := svc.Update(ctx, owner1, p.ID, pets.UpdateInput{
		Breed:               &breed,
		NextVaccinationDate: pets.OptionalDate{Present: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Beagle", got.Breed)
	assert.Equal(t, "Rex", got.Name)
	assert.Nil(t, got.NextVaccinationDate)

	stored, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.NextVaccinationDate)

	empty := " "
	_, err = svc.Update(ctx, owner1, p.ID, pets.UpdateInput{Name: &empty})
	assert.ErrorIs(t, err, pets.ErrInvalidInput)
}

func TestService_Update_RejectsDuplicate(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	rex, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Rex", Species: "dog", MicrochipID: "chip-9"})
	require.NoError(t, err)
	luna, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Luna", Species: "dog"})
	require.NoError(t, err)

	chip := "chip-9"
	_, err = svc.Update(ctx, owner1, luna.ID, pets.UpdateInput{MicrochipID: &chip})
	var dup *pets.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, rex.ID, dup.Existing.ID)

	name := "rex"
	_, err = svc.Update(ctx, owner1, luna.ID, pets.UpdateInput{Name: &name})
	assert.ErrorIs(t, err, pets.ErrDuplicate)

	stored, err := svc.GetByID(ctx, luna.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luna", stored.Name)
	assert.Empty(t, stored.MicrochipID)

	// Otro owner puede tener una mascota igual; y la propia no cuenta como duplicado.
	_, err = svc.Create(ctx, owner2, pets.CreateInput{Name: "Rex", Species: "dog", MicrochipID: "chip-9"})
	require.NoError(t, err)
	weight := 12.5
	_, err = svc.Update(ctx, owner1, rex.ID, pets.UpdateInput{Weight: &weight})
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, owner1, pets.CreateInput{Name: "Rex", Species: "dog"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, owner2, p.ID)
	assert.ErrorIs(t, err, pets.ErrForbidden)

	deleted, err := svc.Delete(ctx, owner1, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)

	_, err = svc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, pets.ErrNotFound)

	mine, err := svc.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}
