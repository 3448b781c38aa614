// Package models содержит доменные сущности threads-сервиса.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Author: автор комментария (value object).
// Копируется в комментарий при создании и больше не перечитывается.
type Author struct {
	ID        string
	Name      string
	AvatarURL string
}

// Comment: узел дерева комментариев.
// Важно:
//   - ID уникален в пределах одного дерева, неизменяем;
//   - Body, Author, CreatedAt неизменяемы (редактирования нет);
//   - Replies: прямые ответы в порядке добавления;
//   - ParentID: справочное поле, проставляется при вставке и не перепроверяется.
//     Вложенность определяется только Replies родителя;
//   - Upvotes/Downvotes: неотрицательные счётчики, растут только на +1.
type Comment struct {
	ID        string
	ParentID  string
	Author    Author
	Body      string
	CreatedAt time.Time
	Upvotes   int64
	Downvotes int64
	Replies   []Comment
}

// Direction: направление голоса.
type Direction string

const (
	VoteUp   Direction = "up"
	VoteDown Direction = "down"
)

// ParseDirection разбирает направление голоса без учёта регистра.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case VoteUp:
		return VoteUp, nil
	case VoteDown:
		return VoteDown, nil
	default:
		return "", fmt.Errorf("unknown vote direction %q", s)
	}
}

// Thread: снимок дерева комментариев одного предмета (статьи или задачи).
type Thread struct {
	SubjectID string
	Comments  []Comment
	Total     int
}

// Mutation: результат операции над деревом.
// Applied=false означает мягкий промах: цель не найдена, дерево не изменилось.
type Mutation struct {
	Comment *Comment
	Applied bool
}
