package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/threads-service/internal/models"
)

var (
	// ErrConflict: дубликат идентификатора в засеваемом дереве.
	ErrConflict = errors.New("conflict")
	// ErrClosed: хранилище закрыто.
	ErrClosed = errors.New("storage closed")
)

// Storage описывает операции над деревьями комментариев, по одному на предмет.
// Каждая мутация выполняется атомарно: «прочитать лес -> построить новый -> опубликовать».
type Storage interface {
	// Thread возвращает глубокую копию леса предмета.
	// Неизвестный предмет: пустой лес без ошибки.
	Thread(ctx context.Context, subjectID string) ([]models.Comment, error)

	// Insert добавляет comment корнем (parentID == "") или ответом на parentID.
	// Промах по parentID: (false, nil), дерево не меняется.
	Insert(ctx context.Context, subjectID, parentID string, comment models.Comment) (bool, error)

	// Vote увеличивает счётчик комментария на 1 и возвращает его обновлённую копию.
	// Промах по commentID: (nil, false, nil).
	Vote(ctx context.Context, subjectID, commentID string, dir models.Direction) (*models.Comment, bool, error)

	// Seed заменяет лес предмета начальными данными.
	// Дубликаты идентификаторов: ErrConflict.
	Seed(ctx context.Context, subjectID string, forest []models.Comment) error

	// Subjects возвращает идентификаторы предметов, у которых есть дерево.
	Subjects(ctx context.Context) ([]string, error)

	// Close освобождает ресурсы хранилища.
	Close()
}
