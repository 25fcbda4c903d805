package pets

import "context"

// OwnerOf expone el ownerID de una mascota.
// Se usa para evitar ciclos de imports entre módulos (pets <-> healthrecords).
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerID, nil
}

// OwnerLockKey es el lock que serializa altas/bajas de mascotas de un owner
// y todo lo que cuelga de ellas (historial).
func OwnerLockKey(ownerID string) string {
	return "pets:" + ownerID
}
