package reminders

import "context"

// DismissalRepository guarda por usuario el set de ids descartados.
// Add y Retain son atómicos sobre el set del usuario.
type DismissalRepository interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, reminderID string) error
	Retain(ctx context.Context, userID string, keep func(reminderID string) bool) (removed int, err error)
	ListUsers(ctx context.Context) ([]string, error)
}
