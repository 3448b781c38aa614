package service

// Тесты сервисного слоя threads-service (internal/service/comments.go).
//
//  Проверяем:
//  - валидацию входов (CreateComment/Vote/Report/Thread/Seed);
//  - мягкие промахи и строгий режим (debug.strict_targets);
//  - маппинг ошибок storage -> service (Conflict / Internal);
//  - нормализацию входных данных (TrimSpace) и аргументы вызова storage;
//  - счётчики prometheus.
//
// Моки интерфейса хранилища:
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/threads-service/internal/config"
	"github.com/pribylovaa/threads-service/internal/metrics"
	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/storage"
	"github.com/pribylovaa/threads-service/mocks"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Limits.MaxBody = 20
	cfg.Guest.ID = "guest"
	cfg.Guest.Name = "Guest"
	return cfg
}

// newServiceWithMocks: поднимает сервис с моками стораджа и отдельным реестром метрик.
func newServiceWithMocks(t *testing.T, cfg config.Config) (*Service, *mocks.MockStorage, *metrics.Metrics) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	s := New(ms, cfg, WithMetrics(m), WithClock(func() time.Time { return fixedNow }))
	return s, ms, m
}

var alice = models.Author{ID: "u-1", Name: "Alice"}

func TestService_CreateComment_Validation(t *testing.T) {
	s, _, _ := newServiceWithMocks(t, testConfig())
	ctx := context.Background()

	tcs := []struct {
		name string
		in   CreateCommentInput
	}{
		{"empty_subject", CreateCommentInput{SubjectID: "  ", Author: alice, Body: "hi"}},
		{"empty_author_id", CreateCommentInput{SubjectID: "s", Author: models.Author{Name: "A"}, Body: "hi"}},
		{"empty_author_name", CreateCommentInput{SubjectID: "s", Author: models.Author{ID: "u"}, Body: "hi"}},
		{"blank_body", CreateCommentInput{SubjectID: "s", Author: alice, Body: " \n\t "}},
		{"body_too_long", CreateCommentInput{SubjectID: "s", Author: alice, Body: strings.Repeat("а", 21)}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateComment(ctx, tc.in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

// Лимит считается в символах, а не в байтах.
func TestService_CreateComment_BodyLimitCountsRunes(t *testing.T) {
	s, ms, _ := newServiceWithMocks(t, testConfig())

	ms.EXPECT().Insert(gomock.Any(), "s", "", gomock.Any()).Return(true, nil)

	mut, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "s", Author: alice, Body: strings.Repeat("а", 20), // 20 рун, 40 байт
	})
	require.NoError(t, err)
	require.True(t, mut.Applied)
}

func TestService_CreateComment_Root_OK(t *testing.T) {
	s, ms, m := newServiceWithMocks(t, testConfig())

	var stored models.Comment
	ms.EXPECT().
		Insert(gomock.Any(), "item-1", "", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, c models.Comment) (bool, error) {
			stored = c
			return true, nil
		})

	mut, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "  item-1 ",
		Author:    models.Author{ID: " u-1 ", Name: " Alice ", AvatarURL: " https://a/x.png "},
		Body:      "  hello  ",
	})
	require.NoError(t, err)
	require.True(t, mut.Applied)
	require.NotNil(t, mut.Comment)

	require.NotEmpty(t, stored.ID)
	require.Equal(t, stored.ID, mut.Comment.ID)
	require.Equal(t, "hello", stored.Body)
	require.Equal(t, models.Author{ID: "u-1", Name: "Alice", AvatarURL: "https://a/x.png"}, stored.Author)
	require.Empty(t, stored.ParentID)
	require.Equal(t, fixedNow, stored.CreatedAt)
	require.Zero(t, stored.Upvotes)
	require.Zero(t, stored.Downvotes)
	require.Empty(t, stored.Replies)

	require.Equal(t, 1.0, testutil.ToFloat64(m.CommentsCreated.WithLabelValues("root")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.CommentsCreated.WithLabelValues("reply")))
}

func TestService_CreateComment_Reply_OK(t *testing.T) {
	s, ms, m := newServiceWithMocks(t, testConfig())

	ms.EXPECT().
		Insert(gomock.Any(), "item-1", "c1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, parentID string, c models.Comment) (bool, error) {
			require.Equal(t, parentID, c.ParentID)
			return true, nil
		})

	mut, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "item-1", ParentID: " c1 ", Author: alice, Body: "reply",
	})
	require.NoError(t, err)
	require.True(t, mut.Applied)
	require.Equal(t, "c1", mut.Comment.ParentID)
	require.Equal(t, 1.0, testutil.ToFloat64(m.CommentsCreated.WithLabelValues("reply")))
}

func TestService_CreateComment_ParentMissing_SoftNoop(t *testing.T) {
	s, ms, m := newServiceWithMocks(t, testConfig())

	ms.EXPECT().Insert(gomock.Any(), "item-1", "ghost", gomock.Any()).Return(false, nil)

	mut, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "item-1", ParentID: "ghost", Author: alice, Body: "lost",
	})
	require.NoError(t, err)
	require.False(t, mut.Applied)
	require.Nil(t, mut.Comment)

	require.Equal(t, 1.0, testutil.ToFloat64(m.MissedTargets.WithLabelValues("reply")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.CommentsCreated.WithLabelValues("reply")))
}

func TestService_CreateComment_ParentMissing_Strict(t *testing.T) {
	cfg := testConfig()
	cfg.Debug.StrictTargets = true
	s, ms, m := newServiceWithMocks(t, cfg)

	ms.EXPECT().Insert(gomock.Any(), "item-1", "ghost", gomock.Any()).Return(false, nil)

	_, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "item-1", ParentID: "ghost", Author: alice, Body: "lost",
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1.0, testutil.ToFloat64(m.MissedTargets.WithLabelValues("reply")))
}

func TestService_CreateComment_StorageError(t *testing.T) {
	s, ms, _ := newServiceWithMocks(t, testConfig())

	ms.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, storage.ErrClosed)

	_, err := s.CreateComment(context.Background(), CreateCommentInput{
		SubjectID: "item-1", Author: alice, Body: "x",
	})
	require.ErrorIs(t, err, ErrInternal)
}

func TestService_Vote_Validation(t *testing.T) {
	s, _, _ := newServiceWithMocks(t, testConfig())
	ctx := context.Background()

	_, err := s.Vote(ctx, VoteInput{SubjectID: "", CommentID: "c1", Direction: models.VoteUp})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Vote(ctx, VoteInput{SubjectID: "s", CommentID: " ", Direction: models.VoteUp})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Vote(ctx, VoteInput{SubjectID: "s", CommentID: "c1", Direction: "sideways"})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_Vote_OK(t *testing.T) {
	s, ms, m := newServiceWithMocks(t, testConfig())

	updated := &models.Comment{ID: "r1", ParentID: "c1", Upvotes: 6}
	ms.EXPECT().Vote(gomock.Any(), "item-1", "r1", models.VoteUp).Return(updated, true, nil)

	mut, err := s.Vote(context.Background(), VoteInput{
		SubjectID: "item-1", CommentID: " r1 ", Direction: "UP",
	})
	require.NoError(t, err)
	require.True(t, mut.Applied)
	require.Equal(t, int64(6), mut.Comment.Upvotes)

	require.Equal(t, 1.0, testutil.ToFloat64(m.Votes.WithLabelValues("up")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.Votes.WithLabelValues("down")))
}

func TestService_Vote_Missing(t *testing.T) {
	t.Run("soft", func(t *testing.T) {
		s, ms, m := newServiceWithMocks(t, testConfig())
		ms.EXPECT().Vote(gomock.Any(), "item-1", "ghost", models.VoteDown).Return(nil, false, nil)

		mut, err := s.Vote(context.Background(), VoteInput{SubjectID: "item-1", CommentID: "ghost", Direction: models.VoteDown})
		require.NoError(t, err)
		require.False(t, mut.Applied)
		require.Nil(t, mut.Comment)
		require.Equal(t, 1.0, testutil.ToFloat64(m.MissedTargets.WithLabelValues("vote")))
	})

	t.Run("strict", func(t *testing.T) {
		cfg := testConfig()
		cfg.Debug.StrictTargets = true
		s, ms, _ := newServiceWithMocks(t, cfg)
		ms.EXPECT().Vote(gomock.Any(), "item-1", "ghost", models.VoteDown).Return(nil, false, nil)

		_, err := s.Vote(context.Background(), VoteInput{SubjectID: "item-1", CommentID: "ghost", Direction: models.VoteDown})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Vote_StorageError(t *testing.T) {
	s, ms, _ := newServiceWithMocks(t, testConfig())
	ms.EXPECT().Vote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, false, errors.New("boom"))

	_, err := s.Vote(context.Background(), VoteInput{SubjectID: "s", CommentID: "c", Direction: models.VoteUp})
	require.ErrorIs(t, err, ErrInternal)
}

// Отмена и дедлайн контекста не маскируются под ErrInternal ни в одной операции.
func TestService_ContextErrorsPassThrough(t *testing.T) {
	ctx := context.Background()

	for _, ctxErr := range []error{context.Canceled, context.DeadlineExceeded} {
		t.Run(ctxErr.Error(), func(t *testing.T) {
			s, ms, _ := newServiceWithMocks(t, testConfig())
			wrapped := fmt.Errorf("storage/memory/op: %w", ctxErr)

			ms.EXPECT().Thread(gomock.Any(), "s").Return(nil, wrapped)
			_, err := s.Thread(ctx, "s")
			require.ErrorIs(t, err, ctxErr)
			require.NotErrorIs(t, err, ErrInternal)

			ms.EXPECT().Insert(gomock.Any(), "s", "", gomock.Any()).Return(false, wrapped)
			_, err = s.CreateComment(ctx, CreateCommentInput{SubjectID: "s", Author: alice, Body: "x"})
			require.ErrorIs(t, err, ctxErr)
			require.NotErrorIs(t, err, ErrInternal)

			ms.EXPECT().Vote(gomock.Any(), "s", "c", models.VoteUp).Return(nil, false, wrapped)
			_, err = s.Vote(ctx, VoteInput{SubjectID: "s", CommentID: "c", Direction: models.VoteUp})
			require.ErrorIs(t, err, ctxErr)
			require.NotErrorIs(t, err, ErrInternal)

			ms.EXPECT().Seed(gomock.Any(), "s", gomock.Any()).Return(wrapped)
			err = s.Seed(ctx, "s", []models.Comment{{ID: "c1"}})
			require.ErrorIs(t, err, ctxErr)
			require.NotErrorIs(t, err, ErrInternal)
		})
	}
}

func TestService_Thread(t *testing.T) {
	s, ms, _ := newServiceWithMocks(t, testConfig())
	ctx := context.Background()

	_, err := s.Thread(ctx, " ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	forest := []models.Comment{
		{ID: "c1", Upvotes: 15, Downvotes: 1, Replies: []models.Comment{{ID: "r1", ParentID: "c1", Upvotes: 5}}},
	}
	ms.EXPECT().Thread(gomock.Any(), "item-1").Return(forest, nil).Times(2)

	th, err := s.Thread(ctx, "item-1")
	require.NoError(t, err)
	require.Equal(t, "item-1", th.SubjectID)
	require.Equal(t, 2, th.Total)
	require.Len(t, th.Comments, 1)

	n, err := s.Count(ctx, "item-1")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	ms.EXPECT().Thread(gomock.Any(), "broken").Return(nil, errors.New("boom"))
	_, err = s.Count(ctx, "broken")
	require.ErrorIs(t, err, ErrInternal)
}

func TestService_Report(t *testing.T) {
	s, _, m := newServiceWithMocks(t, testConfig())
	ctx := context.Background()

	err := s.Report(ctx, ReportInput{SubjectID: "s", CommentID: ""})
	require.ErrorIs(t, err, ErrInvalidArgument)

	err = s.Report(ctx, ReportInput{SubjectID: "s", CommentID: "c1", Reporter: alice, Reason: " spam "})
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(m.Reports))
}

func TestService_Seed(t *testing.T) {
	s, ms, _ := newServiceWithMocks(t, testConfig())
	ctx := context.Background()
	forest := []models.Comment{{ID: "c1"}}

	require.ErrorIs(t, s.Seed(ctx, "", forest), ErrInvalidArgument)

	ms.EXPECT().Seed(gomock.Any(), "ok", forest).Return(nil)
	require.NoError(t, s.Seed(ctx, " ok ", forest))

	ms.EXPECT().Seed(gomock.Any(), "dup", forest).Return(storage.ErrConflict)
	require.ErrorIs(t, s.Seed(ctx, "dup", forest), ErrConflict)

	ms.EXPECT().Seed(gomock.Any(), "closed", forest).Return(storage.ErrClosed)
	require.ErrorIs(t, s.Seed(ctx, "closed", forest), ErrInternal)
}

// Без WithMetrics сервис работает: счётчики nil-safe.
func TestService_NoMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	s := New(ms, testConfig())

	ms.EXPECT().Insert(gomock.Any(), "s", "", gomock.Any()).Return(true, nil)
	mut, err := s.CreateComment(context.Background(), CreateCommentInput{SubjectID: "s", Author: alice, Body: "x"})
	require.NoError(t, err)
	require.True(t, mut.Applied)
	require.WithinDuration(t, time.Now(), mut.Comment.CreatedAt, time.Minute)
}
