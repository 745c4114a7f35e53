package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/calcutta-bracket/middleware"
	"github.com/Dosada05/calcutta-bracket/services"
	"github.com/go-chi/chi/v5"
)

type BracketHandler struct {
	bracketService services.BracketService
	logger         *slog.Logger
}

func NewBracketHandler(bracketService services.BracketService, logger *slog.Logger) *BracketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BracketHandler{bracketService: bracketService, logger: logger}
}

type selectWinnerRequest struct {
	TeamID          int    `json:"team_id"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

// ValidateBracket godoc
// @Summary Validate bracket setup
// @Description Checks whether the tournament's teams can form a bracket. Advisory only.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.BracketValidation
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/bracket/validation [get]
func (h *BracketHandler) ValidateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.ValidateBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracket godoc
// @Summary Get bracket
// @Description Returns every game of the bracket with derived can_select flags and the current version.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "bracket"
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracket godoc
// @Summary Generate bracket
// @Description Builds the bracket from the current teams, replacing any existing games.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{} "bracket"
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Validation errors"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GenerateBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "bracket generated", slog.Int("tournament_id", tournamentID), slog.Int64("version", bracket.Version))

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SelectWinner godoc
// @Summary Select game winner
// @Description Records the winner of a ready game and advances it into the next round.
// @Tags brackets
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param gameID path string true "Game ID, e.g. round_of_64-1"
// @Param body body selectWinnerRequest true "Winner"
// @Success 200 {object} map[string]interface{} "bracket"
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "Bracket changed since it was read"
// @Failure 422 {object} map[string]interface{} "Illegal transition"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket/games/{gameID}/winner [post]
func (h *BracketHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameID := chi.URLParam(r, "gameID")

	var input selectWinnerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TeamID <= 0 {
		badRequestResponse(w, r, errors.New("team_id must be a positive integer"))
		return
	}

	bracket, err := h.bracketService.SelectWinner(r.Context(), tournamentID, gameID, input.TeamID, input.ExpectedVersion)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "winner selected",
		slog.Int("tournament_id", tournamentID),
		slog.String("game_id", gameID),
		slog.Int("team_id", input.TeamID))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnselectWinner godoc
// @Summary Unselect game winner
// @Description Clears the winner of a game and every result downstream that depended on it.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param gameID path string true "Game ID"
// @Param expected_version query int false "Version the caller last read"
// @Success 200 {object} map[string]interface{} "bracket"
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket/games/{gameID}/winner [delete]
func (h *BracketHandler) UnselectWinner(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	gameID := chi.URLParam(r, "gameID")

	expected, err := getExpectedVersion(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.UnselectWinner(r.Context(), tournamentID, gameID, expected)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "winner unselected", slog.Int("tournament_id", tournamentID), slog.String("game_id", gameID))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// audit records which user performed a bracket mutation.
func (h *BracketHandler) audit(r *http.Request, msg string, attrs ...any) {
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		attrs = append(attrs, slog.Int("user_id", userID))
	}
	h.logger.InfoContext(r.Context(), msg, attrs...)
}
