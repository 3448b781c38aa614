package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/threads-service/internal/models"
	"github.com/pribylovaa/threads-service/internal/transport/http/handlers"
	"github.com/pribylovaa/threads-service/internal/transport/http/middleware"
)

// Options: параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	Guest    models.Author // автор по умолчанию для запросов без X-User-*
	BasePath string        // например, "/api"; если пустой: роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.CommentService, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Author(opts.Guest),   // текущий пользователь из X-User-* или гость
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes: единая точка регистрации всех REST-эндпойнтов.
// item_id: статья или задача, к которой привязано дерево.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	r.Route("/items/{item_id}/comments", func(r chi.Router) {
		r.Get("/", h.ListComments)
		r.Post("/", h.CreateComment)
		r.Get("/count", h.CountComments)
		r.Post("/{id}/votes", h.VoteComment)
		r.Post("/{id}/report", h.ReportComment)
	})
}
