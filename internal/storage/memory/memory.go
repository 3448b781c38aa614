// Package memory: in-memory реализация storage.Storage.
//
// Леса хранятся неизменяемыми: мутация строит новый лес через пакет tree и
// публикует его под единым мьютексом. Наружу отдаются только глубокие копии.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/storage"
	"github.com/pribylovaa/threads-service/internal/tree"
)

// Store: потокобезопасное хранилище деревьев комментариев.
type Store struct {
	mu      sync.Mutex
	threads map[string][]models.Comment
	closed  bool
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{threads: make(map[string][]models.Comment)}
}

func (s *Store) Thread(ctx context.Context, subjectID string) ([]models.Comment, error) {
	const op = "storage/memory/Thread"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrClosed)
	}

	return tree.Clone(s.threads[subjectID]), nil
}

func (s *Store) Insert(ctx context.Context, subjectID, parentID string, comment models.Comment) (bool, error) {
	const op = "storage/memory/Insert"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, fmt.Errorf("%s: %w", op, storage.ErrClosed)
	}

	// Узел копируется целиком, чтобы вызывающий не держал ссылку на наши срезы.
	next, ok := tree.Insert(s.threads[subjectID], parentID, tree.Clone([]models.Comment{comment})[0])
	if !ok {
		return false, nil
	}

	s.threads[subjectID] = next
	return true, nil
}

func (s *Store) Vote(ctx context.Context, subjectID, commentID string, dir models.Direction) (*models.Comment, bool, error) {
	const op = "storage/memory/Vote"

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, fmt.Errorf("%s: %w", op, storage.ErrClosed)
	}

	forest, exists := s.threads[subjectID]
	if !exists {
		return nil, false, nil
	}

	next, ok := tree.ApplyVote(forest, commentID, dir)
	if !ok {
		return nil, false, nil
	}
	s.threads[subjectID] = next

	c, _, _ := tree.Find(next, commentID)
	c.Replies = tree.Clone(c.Replies)

	return &c, true, nil
}

func (s *Store) Seed(ctx context.Context, subjectID string, forest []models.Comment) error {
	const op = "storage/memory/Seed"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if id, dup := tree.Duplicate(forest); dup {
		return fmt.Errorf("%s: duplicate id %q: %w", op, id, storage.ErrConflict)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%s: %w", op, storage.ErrClosed)
	}

	s.threads[subjectID] = tree.Clone(forest)
	return nil
}

func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	const op = "storage/memory/Subjects"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.threads))
	for id := range s.threads {
		out = append(out, id)
	}
	sort.Strings(out)

	return out, nil
}

// Close помечает хранилище закрытым; последующие операции вернут storage.ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
}
