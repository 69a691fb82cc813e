package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"rewarder/service"

	log "github.com/sirupsen/logrus"
)

// Handler serves the authenticated user's own ledger data
type Handler struct {
	requests service.RewardRequestService
	profiles service.ProfileService
}

// NewHandler creates a new Handler
func NewHandler(requests service.RewardRequestService, profiles service.ProfileService) *Handler {
	return &Handler{requests: requests, profiles: profiles}
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProfileResponse(profile))
}

func (h *Handler) handleListRewards(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
		return
	}

	rewards, err := h.profiles.ListRewards(r.Context(), user.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]rewardResponse, 0, len(rewards))
	for _, reward := range rewards {
		response = append(response, newRewardResponse(reward))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handleRequestReward(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
		return
	}

	var req rewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// An omitted amount counts as zero and fails validation
	var amount int64
	if req.Amount != nil {
		amount = *req.Amount
	}

	reward, err := h.requests.RequestReward(r.Context(), user.ID, amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, newRewardResponse(reward))
}

func (h *Handler) handleListRewardLogs(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
		return
	}

	limit := service.DefaultRewardLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", Field: "limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.profiles.ListRewardLogs(r.Context(), user.ID, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := make([]rewardLogResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, newRewardLogResponse(entry))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "user not found")
	default:
		log.WithError(err).Error("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
