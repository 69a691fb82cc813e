package api

import (
	"encoding/json"
	"net/http"
	"time"

	"rewarder/models"

	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type profileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Coins    int64  `json:"coins"`
}

type rewardResponse struct {
	ID         int64     `json:"id"`
	Amount     int64     `json:"amount"`
	ExecuteAt  time.Time `json:"execute_at"`
	IsExecuted bool      `json:"is_executed"`
	CreatedAt  time.Time `json:"created_at"`
}

type rewardLogResponse struct {
	ID                int64     `json:"id"`
	Amount            int64     `json:"amount"`
	GivenAt           time.Time `json:"given_at"`
	Reason            *string   `json:"reason"`
	ScheduledRewardID *int64    `json:"scheduled_reward_id"`
}

type rewardRequest struct {
	Amount *int64 `json:"amount"`
}

func newProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{Username: p.Username, Email: p.Email, Coins: p.Coins}
}

func newRewardResponse(r *models.ScheduledReward) rewardResponse {
	return rewardResponse{
		ID:         r.ID,
		Amount:     r.Amount,
		ExecuteAt:  r.ExecuteAt.UTC(),
		IsExecuted: r.IsExecuted,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func newRewardLogResponse(l *models.RewardLog) rewardLogResponse {
	return rewardLogResponse{
		ID:                l.ID,
		Amount:            l.Amount,
		GivenAt:           l.GivenAt.UTC(),
		Reason:            l.Reason,
		ScheduledRewardID: l.ScheduledRewardID,
	}
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, errorResponse{Error: message})
}
