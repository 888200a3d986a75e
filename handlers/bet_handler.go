package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prediction-league/services"
)

type BetHandler struct {
	betService services.BetService
}

func NewBetHandler(bs services.BetService) *BetHandler {
	return &BetHandler{betService: bs}
}

type predictionRequest struct {
	MatchID             int  `json:"match_id,omitempty"`
	HomeScorePrediction *int `json:"home_score_prediction"`
	AwayScorePrediction *int `json:"away_score_prediction"`
}

func (req predictionRequest) toInput() (services.PredictionInput, error) {
	home, err := requireScore("home_score_prediction", req.HomeScorePrediction)
	if err != nil {
		return services.PredictionInput{}, err
	}
	away, err := requireScore("away_score_prediction", req.AwayScorePrediction)
	if err != nil {
		return services.PredictionInput{}, err
	}
	return services.PredictionInput{HomeScorePrediction: home, AwayScorePrediction: away}, nil
}

// PlaceBet создаёт ставку (201) или обновляет уже существующую на этот матч (200).
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req predictionRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.MatchID <= 0 {
		badRequestResponse(w, r, errors.New("match_id is required"))
		return
	}
	prediction, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bet, created, err := h.betService.PlaceBet(r.Context(), session.UserID, services.PlaceBetInput{
		MatchID:         req.MatchID,
		PredictionInput: prediction,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	err = writeJSON(w, status, jsonResponse{"bet": bet}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BetHandler) UpdateBet(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}

	betID, err := getIDFromURL(r, "betID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req predictionRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	prediction, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bet, err := h.betService.UpdateBet(r.Context(), betID, session.UserID, prediction)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"bet": bet}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}

	betID, err := getIDFromURL(r, "betID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bet, err := h.betService.GetBet(r.Context(), betID, session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"bet": bet}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BetHandler) ListUserBets(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}

	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bets, err := h.betService.ListUserBets(r.Context(), userID, session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"bets": bets}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
