package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/diegoalves1988/indicaai/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProfessionalHandler handles HTTP requests for directory entries and
// recommendations.
type ProfessionalHandler struct {
	professionals *usecase.ProfessionalUsecase
	directory     *usecase.DirectoryUsecase
	metrics       *metrics.Manager
	logger        *logger.Logger
}

// NewProfessionalHandler creates a new ProfessionalHandler.
func NewProfessionalHandler(professionals *usecase.ProfessionalUsecase, directory *usecase.DirectoryUsecase, m *metrics.Manager, log *logger.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{
		professionals: professionals,
		directory:     directory,
		metrics:       m,
		logger:        log.Named("ProfessionalHTTPHandler"),
	}
}

type professionalResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	Specialties         []string  `json:"specialties,omitempty"`
	City                string    `json:"city"`
	Bio                 string    `json:"bio,omitempty"`
	RecommendationCount int32     `json:"recommendation_count"`
	TotalRatings        int32     `json:"total_ratings"`
	AverageRating       float64   `json:"average_rating"`
	ShowRating          bool      `json:"show_rating"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toProfessionalResponse(p *domain.Professional) professionalResponse {
	return professionalResponse{
		ID:                  p.ID,
		UserID:              p.UserID,
		Name:                p.Name,
		Category:            p.Category,
		Specialties:         p.Specialties,
		City:                p.City,
		Bio:                 p.Bio,
		RecommendationCount: p.RecommendationCount,
		TotalRatings:        p.Stats.TotalRatings,
		AverageRating:       p.Stats.AverageRating,
		ShowRating:          p.Stats.ShowRating,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toProfessionalResponses(professionals []*domain.Professional) []professionalResponse {
	out := make([]professionalResponse, 0, len(professionals))
	for _, p := range professionals {
		out = append(out, toProfessionalResponse(p))
	}
	return out
}

// HandleRegister creates a directory entry owned by the authenticated user.
func (h *ProfessionalHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("Register: User ID not found in token context")
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	var reqBody struct {
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		City        string   `json:"city"`
		Specialties []string `json:"specialties"`
		Bio         string   `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		h.logger.Error("Invalid request body for Register", zap.Error(err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	professional, err := h.professionals.Register(r.Context(), userID, reqBody.Name, reqBody.Category, reqBody.City, reqBody.Specialties, reqBody.Bio)
	if err != nil {
		respondWithDomainError(w, err, "Failed to register professional", h.logger)
		return
	}
	h.metrics.ProfessionalsCreatedTotal.Inc()
	respondWithJSON(w, http.StatusCreated, toProfessionalResponse(professional))
}

// HandleGet returns a directory entry.
func (h *ProfessionalHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	if professionalID == "" {
		http.Error(w, "Missing professional ID", http.StatusBadRequest)
		return
	}

	professional, err := h.professionals.Get(r.Context(), professionalID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get professional", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toProfessionalResponse(professional))
}

// HandleUpdate applies a merge update to the caller's own entry.
func (h *ProfessionalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	var reqBody struct {
		Name        *string   `json:"name"`
		Category    *string   `json:"category"`
		Specialties *[]string `json:"specialties"`
		City        *string   `json:"city"`
		Bio         *string   `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	update := domain.ProfessionalUpdate{
		Name:        reqBody.Name,
		Category:    reqBody.Category,
		Specialties: reqBody.Specialties,
		City:        reqBody.City,
		Bio:         reqBody.Bio,
	}
	if err := h.professionals.Update(r.Context(), professionalID, userID, update); err != nil {
		respondWithDomainError(w, err, "Failed to update professional", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes the caller's own entry.
func (h *ProfessionalHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := h.professionals.Delete(r.Context(), professionalID, userID); err != nil {
		respondWithDomainError(w, err, "Failed to delete professional", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeregister removes the authenticated user's own entry without
// requiring the entry ID.
func (h *ProfessionalHandler) HandleDeregister(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := h.professionals.DeregisterByUser(r.Context(), userID); err != nil {
		respondWithDomainError(w, err, "Failed to deregister professional", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleList returns a page of the directory in stable ID order.
func (h *ProfessionalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	pageSize := parseIntQueryParam(r, "page_size", 10)
	cursor := domain.Cursor(r.URL.Query().Get("cursor"))

	page, err := h.directory.ListProfessionals(r.Context(), pageSize, cursor)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list professionals", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":       toProfessionalResponses(page.Items),
		"next_cursor": string(page.NextCursor),
		"has_more":    page.HasMore,
	})
}

// HandleRecommend records the authenticated user's recommendation.
func (h *ProfessionalHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := h.professionals.Recommend(r.Context(), professionalID, userID); err != nil {
		respondWithDomainError(w, err, "Failed to recommend professional", h.logger)
		return
	}
	h.metrics.RecommendationsTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnrecommend withdraws the authenticated user's recommendation.
func (h *ProfessionalHandler) HandleUnrecommend(w http.ResponseWriter, r *http.Request) {
	professionalID := chi.URLParam(r, "professionalId")
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := h.professionals.Unrecommend(r.Context(), professionalID, userID); err != nil {
		respondWithDomainError(w, err, "Failed to withdraw recommendation", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListMyRecommendations returns the entries the authenticated user has
// recommended.
func (h *ProfessionalHandler) HandleListMyRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	professionals, err := h.professionals.ListRecommendedBy(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list recommendations", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"recommendations": toProfessionalResponses(professionals)})
}
