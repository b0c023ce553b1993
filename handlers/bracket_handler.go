package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hooplink/hooplink-api/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	responder
}

func NewBracketHandler(bs services.BracketService, logger *slog.Logger) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		responder:      responder{logger: logger},
	}
}

// Get godoc
// @Summary Current bracket of a tournament game
// @Tags brackets
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Not a tournament"
// @Failure 404 {object} map[string]string "Game or bracket not found"
// @Router /games/{gameID}/bracket [get]
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := h.bracketService.GetBracket(r.Context(), gameID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"bracket": view})
}

// Generate godoc
// @Summary Seed the confirmed roster into a new bracket
// @Tags brackets
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 201 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Caller is not the host"
// @Failure 409 {object} map[string]string "Bracket exists or roster not full"
// @Security BearerAuth
// @Router /games/{gameID}/bracket [post]
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.bracketService.GenerateBracket(r.Context(), gameID, userID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusCreated, jsonResponse{"bracket": view})
}

// RecordResult godoc
// @Summary Record the score of a match
// @Description The winner advances into the next round. winner_id is required only for tied scores.
// @Tags brackets
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param matchID path string true "Match ID, e.g. r1-m0"
// @Param input body services.MatchResultInput true "Scores"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid scores or winner"
// @Failure 409 {object} map[string]string "Match already decided"
// @Security BearerAuth
// @Router /games/{gameID}/bracket/matches/{matchID} [put]
func (h *BracketHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	h.applyResult(w, r, h.bracketService.RecordMatchResult)
}

// CorrectResult godoc
// @Summary Correct a decided match
// @Description Allowed only while the next match is still undecided.
// @Tags brackets
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param matchID path string true "Match ID"
// @Param input body services.MatchResultInput true "Corrected scores"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Next match already decided"
// @Security BearerAuth
// @Router /games/{gameID}/bracket/matches/{matchID}/correction [post]
func (h *BracketHandler) CorrectResult(w http.ResponseWriter, r *http.Request) {
	h.applyResult(w, r, h.bracketService.CorrectMatchResult)
}

type resultFunc func(ctx context.Context, gameID, callerID, matchID string, input services.MatchResultInput) (*services.BracketView, error)

func (h *BracketHandler) applyResult(w http.ResponseWriter, r *http.Request, apply resultFunc) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	view, err := apply(r.Context(), gameID, userID, matchID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"bracket": view})
}
