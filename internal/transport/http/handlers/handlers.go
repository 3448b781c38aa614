package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/service"
)

// CommentService: то, что хендлерам нужно от сервисного слоя.
type CommentService interface {
	Thread(ctx context.Context, subjectID string) (*models.Thread, error)
	Count(ctx context.Context, subjectID string) (int, error)
	CreateComment(ctx context.Context, in service.CreateCommentInput) (*models.Mutation, error)
	Vote(ctx context.Context, in service.VoteInput) (*models.Mutation, error)
	Report(ctx context.Context, in service.ReportInput) error
}

// Handlers агрегирует зависимости REST-слоя.
type Handlers struct {
	svc      CommentService
	validate *validator.Validate
}

func New(svc CommentService) *Handlers {
	return &Handlers{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// writeJSON: единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict: строгий JSON-декодер, неизвестные поля запрещены.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// decodeValid: decodeStrict + проверка тегов validate.
// Пустое тело допустимо, если allowEmpty (все поля опциональны).
func (h *Handlers) decodeValid(r *http.Request, value any, allowEmpty bool) error {
	if err := decodeStrict(r, value); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return invalidArgument(err)
		}
	}

	if err := h.validate.Struct(value); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return invalidArgument(ve)
		}
		return fmt.Errorf("validate: %w", err)
	}

	return nil
}

// invalidArgument: локальная ошибка разбора запроса -> service.ErrInvalidArgument.
func invalidArgument(cause error) error {
	return fmt.Errorf("%w: %v", service.ErrInvalidArgument, cause)
}
