package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/services"
)

type participantService interface {
	Create(ctx context.Context, drawID int, input services.CreateParticipantInput) (*models.Participant, error)
	ListByDraw(ctx context.Context, drawID int) ([]models.Participant, error)
}

type ParticipantHandler struct {
	participantService participantService
}

func NewParticipantHandler(ps participantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

// CreateParticipant godoc
// @Summary Register a participant for a draw
// @Description Individuals carry attributes; pairs, teams and groups list their registered members.
// @Tags participants
// @Accept json
// @Produce json
// @Param drawID path int true "Draw ID"
// @Param body body services.CreateParticipantInput true "Participant"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Draw or member not found"
// @Failure 409 {object} map[string]string "Participant id taken"
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /draws/{drawID}/participants [post]
func (h *ParticipantHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateParticipantInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Create(r.Context(), drawID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListParticipants godoc
// @Summary List the participants of a draw
// @Tags participants
// @Produce json
// @Param drawID path int true "Draw ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /draws/{drawID}/participants [get]
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	drawID, err := getIDFromURL(r, "drawID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListByDraw(r.Context(), drawID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
