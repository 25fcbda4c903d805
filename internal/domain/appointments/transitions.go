package appointments

// transitions lista los cambios de estado permitidos. Hoy todo estado es
// alcanzable desde cualquier otro (incluido completed -> pending); restringir
// un cambio es sacarlo de esta tabla.
var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusCompleted, StatusCancelled},
	StatusApproved:  {StatusPending, StatusCompleted, StatusCancelled},
	StatusCompleted: {StatusPending, StatusApproved, StatusCancelled},
	StatusCancelled: {StatusPending, StatusApproved, StatusCompleted},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition: quedarse en el mismo estado siempre es válido (no-op).
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
