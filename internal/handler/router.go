package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP routes.
func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	requireAuth func(http.Handler) http.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/confirm", authHandler.Confirm)
			r.Post("/send-confirmation-email", authHandler.SendConfirmationEmail)

			r.With(requireAuth).Get("/refresh", authHandler.Refresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.Patch("/reset-password", userHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/get", userHandler.Get)
				r.Delete("/delete", userHandler.Delete)
				r.Patch("/change-password", userHandler.ChangePassword)
			})
		})
	})

	return r
}
