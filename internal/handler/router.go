package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/ranjankr/ranjanchat/backend/internal/handler/chat"
	"github.com/ranjankr/ranjanchat/backend/internal/middleware"
	"github.com/ranjankr/ranjanchat/backend/internal/repository"
)

// NewRouter wires HTTP routes to the chat persistence service.
func NewRouter(repo *repository.ChatRepository, authSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	chats := chatHandler.New(repo)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			g.Use(middleware.Auth(authSecret))
			chats.RegisterRoutes(g)
		})
	})

	return r
}
