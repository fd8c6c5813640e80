package httpapi

import (
	"net/http"

	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
)

// NewRouter wires the HTTP surface: public read routes plus JWT-protected
// write routes, with request logging and metrics on everything.
func NewRouter(ratingHandler *RatingHandler, userHandler *UserHandler, professionalHandler *ProfessionalHandler, jwtSecret string, m *metrics.Manager, log *logger.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(RequestLogger(log))
	mux.Use(Metrics(m))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public routes (read operations).
	mux.Get("/api/professionals", professionalHandler.HandleList)
	mux.Get("/api/professionals/filter", ratingHandler.HandleFilterByMinimumRating)
	mux.Get("/api/professionals/{professionalId}", professionalHandler.HandleGet)
	mux.Get("/api/professionals/{professionalId}/rating", ratingHandler.HandleGetAggregate)
	mux.Get("/api/users/{userId}", userHandler.HandleGetProfile)

	// Protected routes (require JWT authentication).
	mux.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))

		r.Post("/api/users", userHandler.HandleCreateProfile)
		r.Get("/api/users/me", userHandler.HandleGetMyProfile)
		r.Patch("/api/users/me", userHandler.HandleUpdateProfile)
		r.Post("/api/users/me/photo", userHandler.HandleUploadPhoto)
		r.Delete("/api/users/me/photo", userHandler.HandleRemovePhoto)

		r.Get("/api/users/me/friends", userHandler.HandleListFriends)
		r.Put("/api/users/me/friends/{friendId}", userHandler.HandleAddFriend)
		r.Delete("/api/users/me/friends/{friendId}", userHandler.HandleRemoveFriend)
		r.Get("/api/users/suggestions", userHandler.HandleListSuggestions)

		r.Get("/api/users/me/favorites", userHandler.HandleListFavorites)
		r.Put("/api/users/me/favorites/{professionalId}", userHandler.HandleAddFavorite)
		r.Delete("/api/users/me/favorites/{professionalId}", userHandler.HandleRemoveFavorite)

		r.Post("/api/professionals", professionalHandler.HandleRegister)
		r.Delete("/api/users/me/professional", professionalHandler.HandleDeregister)
		r.Patch("/api/professionals/{professionalId}", professionalHandler.HandleUpdate)
		r.Delete("/api/professionals/{professionalId}", professionalHandler.HandleDelete)

		r.Put("/api/professionals/{professionalId}/recommend", professionalHandler.HandleRecommend)
		r.Delete("/api/professionals/{professionalId}/recommend", professionalHandler.HandleUnrecommend)
		r.Get("/api/users/me/recommendations", professionalHandler.HandleListMyRecommendations)

		r.Post("/api/professionals/{professionalId}/ratings", ratingHandler.HandleSubmitRating)
		r.Get("/api/professionals/{professionalId}/ratings/my", ratingHandler.HandleGetMyRating)
	})

	return mux
}
