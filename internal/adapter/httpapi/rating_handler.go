package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/diegoalves1988/indicaai/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RatingHandler handles HTTP requests for ratings and aggregates.
type RatingHandler struct {
	ratings *usecase.RatingUsecase
	metrics *metrics.Manager
	logger  *logger.Logger
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(ratings *usecase.RatingUsecase, m *metrics.Manager, log *logger.Logger) *RatingHandler {
	return &RatingHandler{
		ratings: ratings,
		metrics: m,
		logger:  log.Named("RatingHTTPHandler"),
	}
}

type ratingStatsResponse struct {
	TotalRatings  int32   `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
	ShowRating    bool    `json:"show_rating"`
}

func toRatingStatsResponse(stats domain.RatingStats) ratingStatsResponse {
	return ratingStatsResponse{
		TotalRatings:  stats.TotalRatings,
		AverageRating: stats.AverageRating,
		ShowRating:    stats.ShowRating,
	}
}

type ratingResponse struct {
	ProfessionalID string    `json:"professional_id"`
	UserID         string    `json:"user_id"`
	Score          int32     `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HandleSubmitRating records the authenticated user's score for a
// professional and returns the fresh aggregate.
func (h *RatingHandler) HandleSubmitRating(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("SubmitRating: User ID not found in token context")
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	var reqBody struct {
		Score int32 `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		h.logger.Error("Invalid request body for SubmitRating", zap.Error(err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := h.ratings.SubmitRating(r.Context(), professionalID, userID, reqBody.Score)
	if err != nil {
		respondWithDomainError(w, err, "Failed to submit rating", h.logger)
		return
	}

	h.metrics.RatingsSubmittedTotal.Inc()
	respondWithJSON(w, http.StatusOK, toRatingStatsResponse(stats))
}

// HandleGetMyRating returns the authenticated user's rating of the
// professional, or a null rating when the user has not rated yet.
func (h *RatingHandler) HandleGetMyRating(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("GetMyRating: User ID not found in token context")
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	rating, err := h.ratings.GetUserRating(r.Context(), professionalID, userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get rating", h.logger)
		return
	}

	var payload struct {
		Rating *ratingResponse `json:"rating"`
	}
	if rating != nil {
		payload.Rating = &ratingResponse{
			ProfessionalID: rating.ProfessionalID,
			UserID:         rating.UserID,
			Score:          rating.Score,
			CreatedAt:      rating.CreatedAt,
			UpdatedAt:      rating.UpdatedAt,
		}
	}
	respondWithJSON(w, http.StatusOK, payload)
}

// HandleGetAggregate returns the professional's rating aggregate. The average
// is zeroed below the disclosure threshold.
func (h *RatingHandler) HandleGetAggregate(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	if professionalID == "" {
		http.Error(w, "Missing professional ID", http.StatusBadRequest)
		return
	}

	stats, err := h.ratings.GetAggregate(r.Context(), professionalID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get rating aggregate", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toRatingStatsResponse(stats))
}

// HandleFilterByMinimumRating returns IDs of professionals whose disclosed
// average is at least the min_rating query parameter.
func (h *RatingHandler) HandleFilterByMinimumRating(w http.ResponseWriter, r *http.Request) {
	minStr := r.URL.Query().Get("min_rating")
	if minStr == "" {
		http.Error(w, "Missing min_rating query parameter", http.StatusBadRequest)
		return
	}
	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		http.Error(w, "Invalid min_rating query parameter", http.StatusBadRequest)
		return
	}

	ids, err := h.ratings.FilterByMinimumAggregate(r.Context(), min)
	if err != nil {
		respondWithDomainError(w, err, "Failed to filter professionals", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"professional_ids": ids})
}
