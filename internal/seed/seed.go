// Package seed загружает начальные деревья комментариев из YAML.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/tree"
)

// ErrInvalid: seed-файл не прошёл валидацию.
var ErrInvalid = errors.New("invalid seed")

// File: корень YAML-документа.
type File struct {
	Threads []Thread `yaml:"threads"`
}

// Thread: дерево одного предмета.
type Thread struct {
	SubjectID string    `yaml:"subject_id"`
	Comments  []Comment `yaml:"comments"`
}

// Author: автор в seed-файле.
type Author struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	AvatarURL string `yaml:"avatar_url"`
}

// Comment: узел в seed-файле.
// Время задаётся либо абсолютно (created_at), либо относительно момента загрузки (age).
type Comment struct {
	ID        string        `yaml:"id"`
	Author    Author        `yaml:"author"`
	Body      string        `yaml:"body"`
	CreatedAt *time.Time    `yaml:"created_at"`
	Age       time.Duration `yaml:"age"`
	Upvotes   int64         `yaml:"upvotes"`
	Downvotes int64         `yaml:"downvotes"`
	Replies   []Comment     `yaml:"replies"`
}

// Loaded: провалидированное дерево, готовое к засеву.
type Loaded struct {
	SubjectID string
	Forest    []models.Comment
}

// LoadFile читает seed-файл с диска.
func LoadFile(path string, now time.Time) ([]Loaded, error) {
	const op = "seed/LoadFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	out, err := Decode(f, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", op, path, err)
	}

	return out, nil
}

// Decode разбирает YAML и строит леса. ParentID выводится из вложенности,
// идентификаторы должны быть уникальны в пределах дерева.
func Decode(r io.Reader, now time.Time) ([]Loaded, error) {
	var doc File

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	out := make([]Loaded, 0, len(doc.Threads))
	seen := make(map[string]struct{}, len(doc.Threads))

	for i, th := range doc.Threads {
		subject := strings.TrimSpace(th.SubjectID)
		if subject == "" {
			return nil, fmt.Errorf("threads[%d]: empty subject_id: %w", i, ErrInvalid)
		}
		if _, dup := seen[subject]; dup {
			return nil, fmt.Errorf("threads[%d]: duplicate subject_id %q: %w", i, subject, ErrInvalid)
		}
		seen[subject] = struct{}{}

		forest, err := build(th.Comments, "", now)
		if err != nil {
			return nil, fmt.Errorf("thread %q: %w", subject, err)
		}

		if id, dup := tree.Duplicate(forest); dup {
			return nil, fmt.Errorf("thread %q: duplicate comment id %q: %w", subject, id, ErrInvalid)
		}

		out = append(out, Loaded{SubjectID: subject, Forest: forest})
	}

	return out, nil
}

func build(in []Comment, parentID string, now time.Time) ([]models.Comment, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]models.Comment, 0, len(in))
	for _, c := range in {
		node, err := c.toModel(parentID, now)
		if err != nil {
			return nil, err
		}

		node.Replies, err = build(c.Replies, node.ID, now)
		if err != nil {
			return nil, err
		}

		out = append(out, node)
	}

	return out, nil
}

func (c Comment) toModel(parentID string, now time.Time) (models.Comment, error) {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return models.Comment{}, fmt.Errorf("comment with empty id: %w", ErrInvalid)
	}

	body := strings.TrimSpace(c.Body)
	name := strings.TrimSpace(c.Author.Name)

	switch {
	case body == "":
		return models.Comment{}, fmt.Errorf("comment %q: empty body: %w", id, ErrInvalid)
	case name == "":
		return models.Comment{}, fmt.Errorf("comment %q: empty author name: %w", id, ErrInvalid)
	case c.Upvotes < 0 || c.Downvotes < 0:
		return models.Comment{}, fmt.Errorf("comment %q: negative votes: %w", id, ErrInvalid)
	case c.CreatedAt != nil && c.Age != 0:
		return models.Comment{}, fmt.Errorf("comment %q: both created_at and age set: %w", id, ErrInvalid)
	case c.Age < 0:
		return models.Comment{}, fmt.Errorf("comment %q: negative age: %w", id, ErrInvalid)
	}

	created := now.Add(-c.Age)
	if c.CreatedAt != nil {
		created = *c.CreatedAt
	}

	return models.Comment{
		ID:       id,
		ParentID: parentID,
		Author: models.Author{
			ID:        strings.TrimSpace(c.Author.ID),
			Name:      name,
			AvatarURL: strings.TrimSpace(c.Author.AvatarURL),
		},
		Body:      body,
		CreatedAt: created.UTC(),
		Upvotes:   c.Upvotes,
		Downvotes: c.Downvotes,
	}, nil
}
