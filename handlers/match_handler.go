package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// ListMatches: ?date=YYYY-MM-DD ограничивает выдачу одним днём (UTC).
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw))
			return
		}
		day = &d
	}

	matches, err := h.matchService.ListMatches(r.Context(), day)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

type finalScoreRequest struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
}

// RecordScore записывает итоговый счёт. Повторная запись даёт 409.
func (h *MatchHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req finalScoreRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	home, err := requireScore("home_score", req.HomeScore)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	away, err := requireScore("away_score", req.AwayScore)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordFinalScore(r.Context(), matchID, services.FinalScoreInput{HomeScore: home, AwayScore: away})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
