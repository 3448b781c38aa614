package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/threads-service/internal/models"
	logctx "github.com/pribylovaa/threads-service/pkg/log"
)

// Заголовки, которыми фронт (или gateway перед сервисом) передаёт текущего пользователя.
const (
	HeaderUserID     = "X-User-Id"
	HeaderUserName   = "X-User-Name"
	HeaderUserAvatar = "X-User-Avatar"
)

type authorKey struct{}

// Author определяет автора запроса по X-User-* заголовкам.
// Без X-User-Id или X-User-Name используется guest из конфигурации.
// Аутентификации нет: заголовкам доверяем как есть.
func Author(guest models.Author) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := models.Author{
				ID:        strings.TrimSpace(r.Header.Get(HeaderUserID)),
				Name:      strings.TrimSpace(r.Header.Get(HeaderUserName)),
				AvatarURL: strings.TrimSpace(r.Header.Get(HeaderUserAvatar)),
			}
			if a.ID == "" || a.Name == "" {
				a = guest
			}

			ctx := context.WithValue(r.Context(), authorKey{}, a)
			ctx = logctx.With(ctx, "author_id", a.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthorFrom возвращает автора из контекста; ok=false: мидлвар Author не подключён.
func AuthorFrom(ctx context.Context) (models.Author, bool) {
	a, ok := ctx.Value(authorKey{}).(models.Author)
	return a, ok
}
