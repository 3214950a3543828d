package medications

import "context"

// OwnerOf expone el dueño de un medicamento sin pasar por el chequeo de Get.
// Lo usa reminders para autorizar cambios en el espejo sin importar este paquete.
func (s *Service) OwnerOf(ctx context.Context, id string) (string, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return m.UserID, nil
}
