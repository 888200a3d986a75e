package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Dosada05/prediction-league/services"
	"github.com/Dosada05/prediction-league/stages"
)

type StageHandler struct {
	stageService services.StageService
	betService   services.BetService
}

func NewStageHandler(ss services.StageService, bs services.BetService) *StageHandler {
	return &StageHandler{
		stageService: ss,
		betService:   bs,
	}
}

type stageRequest struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// toInput принимает дату как RFC3339 или YYYY-MM-DD (полночь UTC).
func (req stageRequest) toInput() (services.StageInput, error) {
	input := services.StageInput{Name: req.Name}
	if req.Date == "" {
		return input, nil
	}
	if t, err := time.Parse(time.RFC3339, req.Date); err == nil {
		input.Date = t
		return input, nil
	}
	t, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return input, fmt.Errorf("invalid date %q: expected RFC3339 or YYYY-MM-DD", req.Date)
	}
	input.Date = t
	return input, nil
}

func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	list, err := h.stageService.ListStages(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"stages": list}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.GetStage(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.CreateStage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req stageRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.UpdateStage(r.Context(), stageID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.stageService.DeleteStage(r.Context(), stageID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Classification отдаёт текущий тур и список прошедших.
func (h *StageHandler) Classification(w http.ResponseWriter, r *http.Request) {
	mode, err := stages.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	analysis, err := h.stageService.Classify(r.Context(), mode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"mode":              mode,
		"upcoming_stage_id": analysis.UpcomingStageID,
		"past_stage_ids":    analysis.PastIDs(),
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListStageMatches: ?group=day группирует матчи по дням, ?tz=Europe/Moscow задаёт зону.
func (h *StageHandler) ListStageMatches(w http.ResponseWriter, r *http.Request) {
	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group := r.URL.Query().Get("group")
	if group != "" && group != "day" {
		badRequestResponse(w, r, fmt.Errorf("unsupported group %q", group))
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("unknown time zone %q", tz))
			return
		}
	}

	matches, err := h.stageService.ListStageMatches(r.Context(), stageID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var response jsonResponse
	if group == "day" {
		response = jsonResponse{"days": services.GroupMatchesByDay(matches, loc)}
	} else {
		response = jsonResponse{"matches": matches}
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StageHandler) ListStageBets(w http.ResponseWriter, r *http.Request) {
	session, ok := currentSession(w, r)
	if !ok {
		return
	}

	stageID, err := getIDFromURL(r, "stageID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bets, err := h.betService.ListStageBets(r.Context(), stageID, session.UserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"bets": bets}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
