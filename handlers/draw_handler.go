package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/placement"
	"github.com/Dosada05/tournament-draws/services"
	"github.com/go-chi/chi/v5"
)

type DrawHandler struct {
	drawService services.DrawService
}

func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{drawService: drawService}
}

type policyRequest struct {
	Policy *models.AvoidancePolicy `json:"policy"`
}

// CreateDraw godoc
// @Summary Create a draw
// @Description Generates an elimination or round robin structure and stores it with empty draw positions.
// @Tags draws
// @Accept json
// @Produce json
// @Param body body services.CreateDrawInput true "Draw definition"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Draw name taken"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /draws [post]
func (h *DrawHandler) CreateDraw(w http.ResponseWriter, r *http.Request) {
	var input services.CreateDrawInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draw, err := h.drawService.CreateDraw(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetDraw godoc
// @Summary Get a draw with its structures and position assignments
// @Tags draws
// @Produce json
// @Param drawID path int true "Draw ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /draws/{drawID} [get]
func (h *DrawHandler) GetDraw(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draw, err := h.drawService.GetDraw(r.Context(), drawID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutomatePositions godoc
// @Summary Position unseeded participants
// @Description Places unseeded participants so that those sharing a policy attribute meet as late as possible.
// @Tags positions
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param body body services.AutomatePositionsInput true "Participants, byes and avoidance policy"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "NO_CANDIDATES or ASSIGNMENT_ERROR"
// @Failure 422 {object} map[string]string "MISSING_AVOIDANCE_POLICY or INSUFFICIENT_DRAW_POSITIONS"
// @Security BearerAuth
// @Router /draws/{drawID}/structures/{structureID}/positions/automated [post]
func (h *DrawHandler) AutomatePositions(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AutomatePositionsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.drawService.AutomatePositions(r.Context(), drawID, chi.URLParam(r, "structureID"), input)
	if err != nil {
		if errors.Is(err, placement.ErrNoCandidates) && result != nil {
			writeError(w, r, http.StatusConflict, jsonResponse{
				"error":          err.Error(),
				"code":           placement.CodeNoCandidates,
				"conflict_count": result.ConflictCount,
			})
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AssignPosition godoc
// @Summary Assign a participant or a bye to a draw position
// @Tags positions
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param drawPosition path int true "Draw position"
// @Param body body services.AssignPositionInput true "Participant or bye"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Position filled or participant already placed"
// @Security BearerAuth
// @Router /draws/{drawID}/structures/{structureID}/positions/{drawPosition} [put]
func (h *DrawHandler) AssignPosition(w http.ResponseWriter, r *http.Request) {
	drawID, drawPosition, ok := h.positionParams(w, r)
	if !ok {
		return
	}

	var input services.AssignPositionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	structure, err := h.drawService.AssignPosition(r.Context(), drawID, chi.URLParam(r, "structureID"), drawPosition, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"structure": structure}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearPosition godoc
// @Summary Remove the assignment of a draw position
// @Tags positions
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param drawPosition path int true "Draw position"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string "Position holds nothing"
// @Security BearerAuth
// @Router /draws/{drawID}/structures/{structureID}/positions/{drawPosition} [delete]
func (h *DrawHandler) ClearPosition(w http.ResponseWriter, r *http.Request) {
	drawID, drawPosition, ok := h.positionParams(w, r)
	if !ok {
		return
	}

	structure, err := h.drawService.ClearPosition(r.Context(), drawID, chi.URLParam(r, "structureID"), drawPosition)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"structure": structure}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetConflicts godoc
// @Summary Score the current assignments of a structure
// @Tags conflicts
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param body body policyRequest true "Avoidance policy"
// @Success 200 {object} services.ConflictReport
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /draws/{drawID}/structures/{structureID}/conflicts [post]
func (h *DrawHandler) GetConflicts(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input policyRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.drawService.GetConflicts(r.Context(), drawID, chi.URLParam(r, "structureID"), input.Policy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, report, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSwapOptions godoc
// @Summary List swaps that do not increase conflicts
// @Tags conflicts
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param body body policyRequest true "Avoidance policy"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /draws/{drawID}/structures/{structureID}/swaps [post]
func (h *DrawHandler) GetSwapOptions(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input policyRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	proposals, err := h.drawService.GetSwapOptions(r.Context(), drawID, chi.URLParam(r, "structureID"), input.Policy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"swaps": proposals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApplySwap godoc
// @Summary Apply one of the listed swaps
// @Tags conflicts
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param structureID path string true "Structure ID"
// @Param body body services.ApplySwapInput true "Policy and the two draw positions"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Swap not offered"
// @Security BearerAuth
// @Router /draws/{drawID}/structures/{structureID}/swaps/apply [post]
func (h *DrawHandler) ApplySwap(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ApplySwapInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	structure, err := h.drawService.ApplySwap(r.Context(), drawID, chi.URLParam(r, "structureID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"structure": structure}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DrawHandler) positionParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	drawPosition, err := strconv.Atoi(chi.URLParam(r, "drawPosition"))
	if err != nil {
		badRequestResponse(w, r, errors.New("draw position must be an integer"))
		return 0, 0, false
	}
	return drawID, drawPosition, true
}
