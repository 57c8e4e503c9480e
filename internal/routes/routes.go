package routes

import (
	"net/http"

	"github.com/echomind/echomind-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux, authHandler *handlers.AuthHandler, chatHandler *handlers.ChatHandler, requireAuth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Post("/send-otp", authHandler.SendOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.GetMe)
			r.Post("/avatar", authHandler.UploadAvatar)
		})
	})

	r.Route("/chat", func(r chi.Router) {
		r.Use(requireAuth)
		// Literal paths registered before the parameterized delete so a route
		// reordering can never shadow them.
		r.Post("/create", chatHandler.Create)
		r.Get("/chat-history", chatHandler.History)
		r.Delete("/delete-all", chatHandler.DeleteAll)
		r.Delete("/{id}", chatHandler.DeleteByID)
	})
}
