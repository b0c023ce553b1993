package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hooplink/hooplink-api/models"
	"github.com/hooplink/hooplink-api/repositories"
	"github.com/hooplink/hooplink-api/services"
)

type GameHandler struct {
	gameService services.GameService
	responder
}

func NewGameHandler(gs services.GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameService: gs,
		responder:   responder{logger: logger},
	}
}

type transferHostRequest struct {
	UserID string `json:"user_id"`
}

// Create godoc
// @Summary Create a pickup game or tournament
// @Tags games
// @Accept json
// @Produce json
// @Param input body services.CreateGameInput true "Game details"
// @Success 201 {object} map[string]interface{} "Created game"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /games [post]
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var input services.CreateGameInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.CreateGame(r.Context(), userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusCreated, jsonResponse{"game": game})
}

// GetByID godoc
// @Summary Get a game with its participants and bracket
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Game not found"
// @Router /games/{gameID} [get]
func (h *GameHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.GetGame(r.Context(), gameID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// List godoc
// @Summary List games
// @Tags games
// @Produce json
// @Param status query string false "scheduled, active, completed or cancelled"
// @Param type query string false "standard or tournament"
// @Param host_id query string false "Host user ID"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid filter"
// @Router /games [get]
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListGamesFilter(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListGames(r.Context(), filter)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"games": games})
}

func parseListGamesFilter(r *http.Request) (repositories.ListGamesFilter, error) {
	var filter repositories.ListGamesFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := models.GameStatus(raw)
		switch status {
		case models.StatusScheduled, models.StatusActive, models.StatusCompleted, models.StatusCancelled:
			filter.Status = &status
		default:
			return filter, errors.New("invalid status query parameter")
		}
	}
	if raw := query.Get("type"); raw != "" {
		gameType := models.GameType(raw)
		if gameType != models.GameTypeStandard && gameType != models.GameTypeTournament {
			return filter, errors.New("invalid type query parameter")
		}
		filter.Type = &gameType
	}
	if raw := query.Get("host_id"); raw != "" {
		filter.HostID = &raw
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return filter, errors.New("invalid limit query parameter")
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, errors.New("invalid offset query parameter")
		}
		filter.Offset = offset
	}
	return filter, nil
}

// Update godoc
// @Summary Update venue, time, level or capacity
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param input body services.UpdateGameInput true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "Caller is not the host"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Game closed"
// @Security BearerAuth
// @Router /games/{gameID} [patch]
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	var input services.UpdateGameInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateGameDetails(r.Context(), gameID, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// UpdateTournamentConfig godoc
// @Summary Change bracket size or entry fee
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param input body services.TournamentConfigInput true "Tournament settings"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 409 {object} map[string]string "Bracket already generated"
// @Security BearerAuth
// @Router /games/{gameID}/tournament-config [put]
func (h *GameHandler) UpdateTournamentConfig(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	var input services.TournamentConfigInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.UpdateTournamentConfig(r.Context(), gameID, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// Cancel godoc
// @Summary Cancel a game
// @Tags games
// @Produce json
// @Param gameID path string true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /games/{gameID}/cancel [post]
func (h *GameHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.CancelGame(r.Context(), gameID, userID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

func (h *GameHandler) TogglePrivacy(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.TogglePrivacy(r.Context(), gameID, userID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// TransferHost godoc
// @Summary Hand hosting to another participant
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param input body transferHostRequest true "New host"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string "New host is not a participant"
// @Security BearerAuth
// @Router /games/{gameID}/host [post]
func (h *GameHandler) TransferHost(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	var input transferHostRequest
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.TransferHost(r.Context(), gameID, userID, input.UserID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// Join godoc
// @Summary Join a game as confirmed or maybe
// @Tags participants
// @Accept json
// @Produce json
// @Param gameID path string true "Game ID"
// @Param input body services.JoinGameInput false "RSVP status and team name"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Game full, closed or roster locked"
// @Security BearerAuth
// @Router /games/{gameID}/join [post]
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	var input services.JoinGameInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.JoinGame(r.Context(), gameID, userID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	gameID, userID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}

	game, err := h.gameService.LeaveGame(r.Context(), gameID, userID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

// RemovePlayer godoc
// @Summary Remove a player from the roster
// @Tags participants
// @Produce json
// @Param gameID path string true "Game ID"
// @Param userID path string true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /games/{gameID}/participants/{userID} [delete]
func (h *GameHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	gameID, callerID, ok := h.gameAndCaller(w, r)
	if !ok {
		return
	}
	playerID, err := getIDFromURL(r, "userID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	game, err := h.gameService.RemovePlayer(r.Context(), gameID, callerID, playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.writeOK(w, r, http.StatusOK, jsonResponse{"game": game})
}

func (h *GameHandler) gameAndCaller(w http.ResponseWriter, r *http.Request) (gameID, userID string, ok bool) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return "", "", false
	}
	userID, ok = h.currentUser(w, r)
	return gameID, userID, ok
}
