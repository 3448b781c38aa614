package handlers

import (
	"time"

	"github.com/pribylovaa/threads-service/internal/models"
)

// AuthorDTO: автор в JSON-ответах.
type AuthorDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// CommentDTO: узел дерева в JSON. parent_id == null у корней.
type CommentDTO struct {
	ID        string       `json:"id"`
	ParentID  *string      `json:"parent_id"`
	Author    AuthorDTO    `json:"author"`
	Body      string       `json:"body"`
	CreatedAt time.Time    `json:"created_at"`
	Upvotes   int64        `json:"upvotes"`
	Downvotes int64        `json:"downvotes"`
	Replies   []CommentDTO `json:"replies"`
}

// FlatCommentDTO: узел плоского представления (обход в глубину с уровнем вложенности).
type FlatCommentDTO struct {
	ID         string    `json:"id"`
	ParentID   *string   `json:"parent_id"`
	Author     AuthorDTO `json:"author"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	Upvotes    int64     `json:"upvotes"`
	Downvotes  int64     `json:"downvotes"`
	Level      int       `json:"level"`
	ReplyCount int       `json:"reply_count"`
}

type ThreadResponse struct {
	ItemID   string       `json:"item_id"`
	Total    int          `json:"total"`
	Comments []CommentDTO `json:"comments"`
}

type FlatThreadResponse struct {
	ItemID   string           `json:"item_id"`
	Total    int              `json:"total"`
	Comments []FlatCommentDTO `json:"comments"`
}

type CountResponse struct {
	ItemID string `json:"item_id"`
	Total  int    `json:"total"`
}

// CreateCommentRequest: parent_id пуст для корневого комментария.
// Длина body дополнительно ограничивается limits.max_body в сервисе.
type CreateCommentRequest struct {
	Body     string `json:"body" validate:"required,max=100000"`
	ParentID string `json:"parent_id,omitempty" validate:"omitempty,max=128"`
}

type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type ReportRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// MutationResponse: applied=false означает, что цель не найдена и ничего не изменилось.
type MutationResponse struct {
	Applied bool        `json:"applied"`
	Comment *CommentDTO `json:"comment,omitempty"`
}

type ReportResponse struct {
	Reported bool `json:"reported"`
}

func authorFromModel(a models.Author) AuthorDTO {
	return AuthorDTO{ID: a.ID, Name: a.Name, AvatarURL: a.AvatarURL}
}

func parentRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func commentFromModel(c models.Comment) CommentDTO {
	out := CommentDTO{
		ID:        c.ID,
		ParentID:  parentRef(c.ParentID),
		Author:    authorFromModel(c.Author),
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
		Replies:   commentsFromModel(c.Replies),
	}

	return out
}

// commentsFromModel всегда возвращает не-nil срез: в JSON пустой список, а не null.
func commentsFromModel(list []models.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(list))
	for _, c := range list {
		out = append(out, commentFromModel(c))
	}
	return out
}

func flatFromModel(c models.Comment, level int) FlatCommentDTO {
	return FlatCommentDTO{
		ID:         c.ID,
		ParentID:   parentRef(c.ParentID),
		Author:     authorFromModel(c.Author),
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
		Upvotes:    c.Upvotes,
		Downvotes:  c.Downvotes,
		Level:      level,
		ReplyCount: len(c.Replies),
	}
}

func mutationFromModel(m *models.Mutation) MutationResponse {
	out := MutationResponse{Applied: m.Applied}
	if m.Comment != nil {
		c := commentFromModel(*m.Comment)
		out.Comment = &c
	}
	return out
}
