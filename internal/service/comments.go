package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/storage"
	"github.com/pribylovaa/threads-service/internal/tree"
	"github.com/pribylovaa/threads-service/pkg/log"
)

// Входные структуры сервисного слоя.

// CreateCommentInput: создание корневого комментария или ответа.
// Правила:
//   - SubjectID обязателен;
//   - ParentID пуст: корень, иначе ответ на комментарий ParentID;
//   - Author.ID, Author.Name и Body (после TrimSpace) не должны быть пустыми.
type CreateCommentInput struct {
	SubjectID string
	ParentID  string
	Author    models.Author
	Body      string
}

// VoteInput: голос за комментарий.
type VoteInput struct {
	SubjectID string
	CommentID string
	Direction models.Direction
}

// ReportInput: жалоба на комментарий.
type ReportInput struct {
	SubjectID string
	CommentID string
	Reporter  models.Author
	Reason    string
}

// Thread: снимок дерева предмета с общим числом комментариев.
//
// Поведение/ошибки:
//   - ErrInvalidArgument: пустой subjectID;
//   - ErrInternal: ошибки стораджа (отмена и дедлайн контекста возвращаются как есть).
func (s *Service) Thread(ctx context.Context, subjectID string) (*models.Thread, error) {
	const op = "service/comments/Thread"

	subjectID = strings.TrimSpace(subjectID)
	lg := log.From(ctx).With("op", op, "subject_id", subjectID)

	if subjectID == "" {
		lg.Warn("invalid argument: empty subject_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	forest, err := s.storage.Thread(ctx, subjectID)
	if err != nil {
		return nil, storageError(lg, op, "Thread", err)
	}

	return &models.Thread{
		SubjectID: subjectID,
		Comments:  forest,
		Total:     tree.CountAll(forest),
	}, nil
}

// Count: общее число комментариев предмета, включая ответы любой глубины.
func (s *Service) Count(ctx context.Context, subjectID string) (int, error) {
	th, err := s.Thread(ctx, subjectID)
	if err != nil {
		return 0, err
	}

	return th.Total, nil
}

// CreateComment: бизнес-операция создания комментария.
//
// Валидация (до обращения к дереву):
//   - SubjectID, Author.ID, Author.Name не пустые;
//   - Body после TrimSpace не пустой и не длиннее limits.max_body символов.
//
// Поведение/ошибки:
//   - родитель не найден: Mutation{Applied: false} без ошибки (мягкий промах,
//     пишется Warn и метрика); в строгом режиме: ErrNotFound;
//   - ErrInternal: ошибки стораджа (отмена и дедлайн контекста возвращаются как есть).
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Mutation, error) {
	const op = "service/comments/CreateComment"

	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.ParentID = strings.TrimSpace(in.ParentID)
	in.Author.ID = strings.TrimSpace(in.Author.ID)
	in.Author.Name = strings.TrimSpace(in.Author.Name)
	in.Author.AvatarURL = strings.TrimSpace(in.Author.AvatarURL)
	in.Body = strings.TrimSpace(in.Body)

	lg := log.From(ctx).With(
		"op", op,
		"subject_id", in.SubjectID,
		"parent_id", in.ParentID,
		"author_id", in.Author.ID,
	)

	if in.SubjectID == "" {
		lg.Warn("invalid argument: empty subject_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Author.ID == "" || in.Author.Name == "" {
		lg.Warn("invalid argument: empty author")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.Body == "" {
		lg.Warn("invalid argument: empty body")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if limit := s.cfg.Limits.MaxBody; limit > 0 && utf8.RuneCountInString(in.Body) > limit {
		lg.Warn("invalid argument: body too long", "limit", limit)
		return nil, fmt.Errorf("%s: body longer than %d: %w", op, limit, ErrInvalidArgument)
	}

	comment := tree.NewComment(in.Author, in.Body, in.ParentID, s.now())

	ok, err := s.storage.Insert(ctx, in.SubjectID, in.ParentID, comment)
	if err != nil {
		return nil, storageError(lg, op, "Insert", err)
	}

	if !ok {
		s.metrics.Missed("reply")
		lg.Warn("parent not found, reply dropped")

		if s.cfg.Debug.StrictTargets {
			return nil, fmt.Errorf("%s: parent %q: %w", op, in.ParentID, ErrNotFound)
		}

		return &models.Mutation{Applied: false}, nil
	}

	s.metrics.CommentCreated(in.ParentID != "")
	lg.Info("comment created", "comment_id", comment.ID)

	return &models.Mutation{Comment: &comment, Applied: true}, nil
}

// Vote: голос up/down за комментарий. Повторные голоса накапливаются.
//
// Поведение/ошибки:
//   - ErrInvalidArgument: пустые идентификаторы или неизвестное направление;
//   - комментарий не найден: Mutation{Applied: false} (в строгом режиме ErrNotFound);
//   - ErrInternal: ошибки стораджа (отмена и дедлайн контекста возвращаются как есть).
func (s *Service) Vote(ctx context.Context, in VoteInput) (*models.Mutation, error) {
	const op = "service/comments/Vote"

	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.CommentID = strings.TrimSpace(in.CommentID)

	lg := log.From(ctx).With(
		"op", op,
		"subject_id", in.SubjectID,
		"comment_id", in.CommentID,
		"direction", string(in.Direction),
	)

	if in.SubjectID == "" || in.CommentID == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	dir, err := models.ParseDirection(string(in.Direction))
	if err != nil {
		lg.Warn("invalid argument: direction")
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrInvalidArgument)
	}

	comment, ok, err := s.storage.Vote(ctx, in.SubjectID, in.CommentID, dir)
	if err != nil {
		return nil, storageError(lg, op, "Vote", err)
	}

	if !ok {
		s.metrics.Missed("vote")
		lg.Warn("comment not found, vote dropped")

		if s.cfg.Debug.StrictTargets {
			return nil, fmt.Errorf("%s: comment %q: %w", op, in.CommentID, ErrNotFound)
		}

		return &models.Mutation{Applied: false}, nil
	}

	s.metrics.Voted(string(dir))
	lg.Debug("vote applied")

	return &models.Mutation{Comment: comment, Applied: true}, nil
}

// Report принимает жалобу на комментарий. Только уведомление (лог и метрика),
// состояние дерева не меняется и существование комментария не проверяется.
func (s *Service) Report(ctx context.Context, in ReportInput) error {
	const op = "service/comments/Report"

	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.CommentID = strings.TrimSpace(in.CommentID)

	lg := log.From(ctx).With("op", op, "subject_id", in.SubjectID, "comment_id", in.CommentID)

	if in.SubjectID == "" || in.CommentID == "" {
		lg.Warn("invalid argument: empty id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	s.metrics.Reported()
	lg.Info("comment reported",
		"reporter_id", in.Reporter.ID,
		"reason", strings.TrimSpace(in.Reason),
	)

	return nil
}

// Seed: загрузка начального дерева предмета (заменяет существующее).
//
// Поведение/ошибки:
//   - ErrInvalidArgument: пустой subjectID;
//   - ErrConflict: повторяющиеся идентификаторы;
//   - ErrInternal: прочие ошибки стораджа (отмена и дедлайн контекста возвращаются как есть).
func (s *Service) Seed(ctx context.Context, subjectID string, forest []models.Comment) error {
	const op = "service/comments/Seed"

	subjectID = strings.TrimSpace(subjectID)
	lg := log.From(ctx).With("op", op, "subject_id", subjectID)

	if subjectID == "" {
		lg.Warn("invalid argument: empty subject_id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := s.storage.Seed(ctx, subjectID, forest); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			lg.Warn("conflict", "err", err)
			return fmt.Errorf("%s: %w", op, ErrConflict)
		default:
			return storageError(lg, op, "Seed", err)
		}
	}

	lg.Info("thread seeded", "total", tree.CountAll(forest))
	return nil
}
