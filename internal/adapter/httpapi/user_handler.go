package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"github.com/diegoalves1988/indicaai/internal/platform/logger"
	"github.com/diegoalves1988/indicaai/internal/platform/metrics"
	"github.com/diegoalves1988/indicaai/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxPhotoUploadBytes caps profile photo uploads at 5 MiB.
const maxPhotoUploadBytes = 5 << 20

// UserHandler handles HTTP requests for user profiles, friendships,
// favorites and friend suggestions.
type UserHandler struct {
	users       *usecase.UserUsecase
	friendships *usecase.FriendshipUsecase
	directory   *usecase.DirectoryUsecase
	metrics     *metrics.Manager
	logger      *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *usecase.UserUsecase, friendships *usecase.FriendshipUsecase, directory *usecase.DirectoryUsecase, m *metrics.Manager, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:       users,
		friendships: friendships,
		directory:   directory,
		metrics:     m,
		logger:      log.Named("UserHTTPHandler"),
	}
}

type addressPayload struct {
	CEP     string `json:"cep"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type userResponse struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Phone               string         `json:"phone,omitempty"`
	PhotoURL            string         `json:"photo_url,omitempty"`
	Address             addressPayload `json:"address"`
	Friends             []string       `json:"friends"`
	Favorites           []string       `json:"favorites"`
	ProfessionalProfile bool           `json:"professional_profile"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Phone:    u.Phone,
		PhotoURL: u.PhotoURL,
		Address: addressPayload{
			CEP:     u.Address.CEP,
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			Country: u.Address.Country,
		},
		Friends:             u.Friends,
		Favorites:           u.Favorites,
		ProfessionalProfile: u.ProfessionalProfile,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// HandleCreateProfile creates the profile for the authenticated subject.
func (h *UserHandler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		h.logger.Warn("CreateProfile: User ID not found in token context")
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	var reqBody struct {
		Name    string         `json:"name"`
		Phone   string         `json:"phone"`
		Address addressPayload `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		h.logger.Error("Invalid request body for CreateProfile", zap.Error(err))
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.CreateProfile(r.Context(), userID, reqBody.Name, reqBody.Phone, domain.Address{
		CEP:     reqBody.Address.CEP,
		Street:  reqBody.Address.Street,
		City:    reqBody.Address.City,
		State:   reqBody.Address.State,
		Country: reqBody.Address.Country,
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to create profile", h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGetMyProfile returns the authenticated user's profile.
func (h *UserHandler) HandleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}
	h.getProfile(w, r, userID)
}

// HandleGetProfile returns another user's profile by ID.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		http.Error(w, "Missing user ID", http.StatusBadRequest)
		return
	}
	h.getProfile(w, r, userID)
}

func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to get profile", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateProfile applies a merge update to the authenticated user's
// profile. Absent fields are left untouched.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	var reqBody struct {
		Name    *string         `json:"name"`
		Phone   *string         `json:"phone"`
		Address *addressPayload `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	update := domain.UserProfileUpdate{
		Name:  reqBody.Name,
		Phone: reqBody.Phone,
	}
	if reqBody.Address != nil {
		update.Address = &domain.Address{
			CEP:     reqBody.Address.CEP,
			Street:  reqBody.Address.Street,
			City:    reqBody.Address.City,
			State:   reqBody.Address.State,
			Country: reqBody.Address.Country,
		}
	}

	if err := h.users.UpdateProfile(r.Context(), userID, update); err != nil {
		respondWithDomainError(w, err, "Failed to update profile", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadPhoto stores a new profile photo from a multipart form and
// returns its URL.
func (h *UserHandler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		h.logger.Warn("Failed to parse multipart form for photo upload", zap.Error(err))
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Missing photo file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoUploadBytes+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded photo", zap.Error(err))
		http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}
	if len(data) > maxPhotoUploadBytes {
		http.Error(w, "Photo exceeds the size limit", http.StatusRequestEntityTooLarge)
		return
	}

	url, err := h.users.UploadPhoto(r.Context(), userID, header.Filename, data)
	if err != nil {
		respondWithDomainError(w, err, "Failed to upload photo", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}

// HandleRemovePhoto deletes the authenticated user's profile photo.
func (h *UserHandler) HandleRemovePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	if err := h.users.RemovePhoto(r.Context(), userID); err != nil {
		respondWithDomainError(w, err, "Failed to remove photo", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddFriend creates the friendship between the authenticated user and
// the target user.
func (h *UserHandler) HandleAddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}
	friendID := chi.URLParam(r, "friendId")

	if err := h.friendships.AddFriend(r.Context(), userID, friendID); err != nil {
		respondWithDomainError(w, err, "Failed to add friend", h.logger)
		return
	}
	h.metrics.FriendshipsAddedTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFriend removes the friendship between the authenticated user
// and the target user.
func (h *UserHandler) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}
	friendID := chi.URLParam(r, "friendId")

	if err := h.friendships.RemoveFriend(r.Context(), userID, friendID); err != nil {
		respondWithDomainError(w, err, "Failed to remove friend", h.logger)
		return
	}
	h.metrics.FriendshipsRemovedTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// HandleListFriends returns the authenticated user's friends.
func (h *UserHandler) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	friends, err := h.friendships.ListFriends(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list friends", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"friends": toUserResponses(friends)})
}

// HandleListSuggestions returns a page of friend suggestions for the
// authenticated user.
func (h *UserHandler) HandleListSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	pageSize := parseIntQueryParam(r, "page_size", 10)
	cursor := domain.Cursor(r.URL.Query().Get("cursor"))

	page, err := h.directory.ListSuggestions(r.Context(), userID, pageSize, cursor)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list suggestions", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items":       toUserResponses(page.Items),
		"next_cursor": string(page.NextCursor),
		"has_more":    page.HasMore,
	})
}

// HandleAddFavorite saves a professional in the authenticated user's
// favorites.
func (h *UserHandler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}
	professionalID := chi.URLParam(r, "professionalId")

	if err := h.users.AddFavorite(r.Context(), userID, professionalID); err != nil {
		respondWithDomainError(w, err, "Failed to add favorite", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFavorite removes a professional from the authenticated user's
// favorites.
func (h *UserHandler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}
	professionalID := chi.URLParam(r, "professionalId")

	if err := h.users.RemoveFavorite(r.Context(), userID, professionalID); err != nil {
		respondWithDomainError(w, err, "Failed to remove favorite", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListFavorites returns the authenticated user's favorite
// professionals.
func (h *UserHandler) HandleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: User ID missing from token", http.StatusUnauthorized)
		return
	}

	favorites, err := h.users.ListFavorites(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, err, "Failed to list favorites", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"favorites": toProfessionalResponses(favorites)})
}
