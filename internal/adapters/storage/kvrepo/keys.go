package kvrepo

// Layout de keys. Los registros van bajo su prefijo; los índices son listas de ids
// mantenidas a mano (no hay índices secundarios en el store).
const (
	prefixUser        = "user:"
	prefixPet         = "pet:"
	prefixAppointment = "appointment:"
	prefixBlock       = "block:"
	prefixHealth      = "health:"
	prefixDismissed   = "dismissed:"

	prefixOwnerPets        = "idx:owner_pets:"
	prefixUserAppointments = "idx:user_appointments:"
	prefixPetHealth        = "idx:pet_health:"
)

func userKey(id string) string          { return prefixUser + id }
func petKey(id string) string           { return prefixPet + id }
func appointmentKey(id string) string   { return prefixAppointment + id }
func blockKey(date string) string       { return prefixBlock + date }
func healthKey(id string) string        { return prefixHealth + id }
func dismissedKey(userID string) string { return prefixDismissed + userID }

func ownerPetsKey(ownerID string) string       { return prefixOwnerPets + ownerID }
func userAppointmentsKey(userID string) string { return prefixUserAppointments + userID }
func petHealthKey(petID string) string         { return prefixPetHealth + petID }
