package explain

import (
	"context"
	"time"

	"github.com/Nandan222001/ask-anything/internal/domain"
	"github.com/google/uuid"
)

// Delete мягко удаляет объяснение вместе с перепиской и асинхронно чистит
// объекты в хранилище. Ошибка удаления файлов запись не откатывает: объект
// попадает в очередь отложенной очистки и будет удалён фоновой задачей.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	deleted, err := s.ExplanationRepo.SoftDelete(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.MessageRepo.DeleteByExplanation(ctx, id); err != nil {
		// Запись уже удалена, история по ней недоступна: клиенту не отказываем
		s.Log.Error("failed to delete chat history",
			"error", err,
			"explanation_id", id)
	}

	go s.removeObjects(deleted)

	s.Log.Debug("explanation deleted", "explanation_id", id, "user_id", userID)
	return nil
}

// removeObjects best-effort удаление основного файла и миниатюры.
// Пути детерминированы по владельцу и хэшу, те же, что при загрузке.
func (s *Service) removeObjects(e *domain.Explanation) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	paths := []string{
		objectPath(e.UserID, e.ImageHash, false),
		objectPath(e.UserID, e.ImageHash, true),
	}
	for _, path := range paths {
		if err := s.ObjectStore.Delete(ctx, path); err != nil {
			s.Log.Warn("failed to delete storage object, enqueueing cleanup",
				"error", err,
				"object_path", path)
			task := &domain.CleanupTask{
				ID:         uuid.New(),
				ObjectPath: path,
				CreatedAt:  time.Now(),
			}
			if err := s.CleanupRepo.Enqueue(ctx, task); err != nil {
				s.Log.Error("failed to enqueue cleanup task",
					"error", err,
					"object_path", path)
			}
		}
	}
}
