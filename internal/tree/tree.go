// Package tree реализует операции над деревом комментариев одного предмета.
//
// Все функции чистые: входной лес не изменяется, применённая мутация возвращает
// новый срез корней. Копируется только путь от корня до изменённого узла,
// несвязанные поддеревья разделяются между старой и новой версией (они неизменяемы).
package tree

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/threads-service/internal/models"
)

// NewComment собирает свежий узел: случайный UUID, обрезанный текст,
// пустые ответы и нулевые счётчики. parentID == "": корневой комментарий.
func NewComment(author models.Author, body, parentID string, now time.Time) models.Comment {
	return models.Comment{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		Author:    author,
		Body:      strings.TrimSpace(body),
		CreatedAt: now.UTC(),
	}
}

// CountAll возвращает число всех узлов леса, включая ответы любой глубины.
func CountAll(forest []models.Comment) int {
	n := 0
	for i := range forest {
		n += 1 + CountAll(forest[i].Replies)
	}

	return n
}

// ApplyVote увеличивает на 1 счётчик up/down узла targetID.
// Если узла нет или направление неизвестно, возвращает исходный лес и false.
func ApplyVote(forest []models.Comment, targetID string, dir models.Direction) ([]models.Comment, bool) {
	var bump func(*models.Comment)

	switch dir {
	case models.VoteUp:
		bump = func(c *models.Comment) { c.Upvotes++ }
	case models.VoteDown:
		bump = func(c *models.Comment) { c.Downvotes++ }
	default:
		return forest, false
	}

	return mutate(forest, targetID, func(c models.Comment) models.Comment {
		bump(&c)
		return c
	})
}

// Insert добавляет node последним корнем (parentID == "") или последним ответом
// узла parentID на любой глубине. Если родителя нет, возвращает исходный лес и false.
func Insert(forest []models.Comment, parentID string, node models.Comment) ([]models.Comment, bool) {
	if parentID == "" {
		return append(slices.Clip(forest), node), true
	}

	return mutate(forest, parentID, func(c models.Comment) models.Comment {
		c.Replies = append(slices.Clip(c.Replies), node)
		return c
	})
}

// mutate находит узел id и заменяет его результатом fn, копируя срезы по пути.
// Идентификаторы уникальны, поэтому обход останавливается на первом совпадении.
func mutate(list []models.Comment, id string, fn func(models.Comment) models.Comment) ([]models.Comment, bool) {
	for i := range list {
		if list[i].ID == id {
			out := slices.Clone(list)
			out[i] = fn(list[i])
			return out, true
		}

		if len(list[i].Replies) == 0 {
			continue
		}

		replies, ok := mutate(list[i].Replies, id, fn)
		if !ok {
			continue
		}

		out := slices.Clone(list)
		out[i].Replies = replies
		return out, true
	}

	return list, false
}

// Find возвращает узел id и его глубину (корень = 0).
func Find(forest []models.Comment, id string) (models.Comment, int, bool) {
	var (
		found models.Comment
		depth int
		ok    bool
	)

	Walk(forest, func(c models.Comment, level int) bool {
		if c.ID == id {
			found, depth, ok = c, level, true
			return false
		}

		return true
	})

	return found, depth, ok
}

// Walk обходит лес в глубину (pre-order) и передаёт каждый узел с уровнем вложенности.
// Если fn вернула false, обход прекращается.
func Walk(forest []models.Comment, fn func(c models.Comment, level int) bool) {
	walk(forest, 0, fn)
}

func walk(list []models.Comment, level int, fn func(models.Comment, int) bool) bool {
	for i := range list {
		if !fn(list[i], level) {
			return false
		}

		if !walk(list[i].Replies, level+1, fn) {
			return false
		}
	}

	return true
}

// Clone возвращает глубокую копию леса, не разделяющую срезы с оригиналом.
func Clone(forest []models.Comment) []models.Comment {
	if forest == nil {
		return nil
	}

	out := make([]models.Comment, len(forest))
	for i := range forest {
		out[i] = forest[i]
		out[i].Replies = Clone(forest[i].Replies)
	}

	return out
}

// IDs собирает идентификаторы всех узлов в порядке обхода.
func IDs(forest []models.Comment) []string {
	ids := make([]string, 0, CountAll(forest))
	Walk(forest, func(c models.Comment, _ int) bool {
		ids = append(ids, c.ID)
		return true
	})

	return ids
}

// Duplicate возвращает первый повторяющийся идентификатор, если он есть.
func Duplicate(forest []models.Comment) (string, bool) {
	seen := make(map[string]struct{}, CountAll(forest))
	for _, id := range IDs(forest) {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}

	return "", false
}
