package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/repositories"
)

type CreateParticipantInput struct {
	ID                       string                 `json:"participant_id"`
	Name                     string                 `json:"participant_name"`
	Type                     models.ParticipantType `json:"participant_type"`
	IndividualParticipantIDs []string               `json:"individual_participant_ids,omitempty"`
	Attributes               map[string]any         `json:"attributes,omitempty"`
}

// ParticipantService handles roster intake for a draw.
type ParticipantService struct {
	repo     repositories.ParticipantRepository
	drawRepo repositories.DrawRepository
}

func NewParticipantService(repo repositories.ParticipantRepository, drawRepo repositories.DrawRepository) *ParticipantService {
	return &ParticipantService{
		repo:     repo,
		drawRepo: drawRepo,
	}
}

// Create registers a participant. Composite participants must reference
// members already registered for the same draw.
func (s *ParticipantService) Create(ctx context.Context, drawID int, input CreateParticipantInput) (*models.Participant, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrValidationFailed)
	}
	if input.Type == "" {
		input.Type = models.ParticipantIndividual
	}
	if !models.IsValidParticipantType(input.Type) {
		return nil, fmt.Errorf("%w: unknown participant type %q", ErrValidationFailed, input.Type)
	}

	participant := &models.Participant{
		ID:         input.ID,
		DrawID:     drawID,
		Name:       input.Name,
		Type:       input.Type,
		Attributes: input.Attributes,
	}

	if participant.IsComposite() {
		if len(input.IndividualParticipantIDs) == 0 {
			return nil, fmt.Errorf("%w: %s participant must list its members", ErrValidationFailed, strings.ToLower(string(input.Type)))
		}
		participant.IndividualParticipantIDs = input.IndividualParticipantIDs
	} else if len(input.IndividualParticipantIDs) > 0 {
		return nil, fmt.Errorf("%w: individual participant cannot list members", ErrValidationFailed)
	}

	if _, err := s.drawRepo.GetByID(ctx, drawID); err != nil {
		return nil, translateRepositoryError(err)
	}

	for _, memberID := range participant.IndividualParticipantIDs {
		member, err := s.repo.FindByID(ctx, drawID, memberID)
		if err != nil {
			return nil, translateRepositoryError(fmt.Errorf("member %s: %w", memberID, err))
		}
		if member.Type != models.ParticipantIndividual {
			return nil, fmt.Errorf("%w: member %s is not an individual", ErrValidationFailed, memberID)
		}
	}

	if err := s.repo.Create(ctx, nil, participant); err != nil {
		return nil, translateRepositoryError(err)
	}
	return participant, nil
}

func (s *ParticipantService) ListByDraw(ctx context.Context, drawID int) ([]models.Participant, error) {
	if _, err := s.drawRepo.GetByID(ctx, drawID); err != nil {
		return nil, translateRepositoryError(err)
	}
	participants, err := s.repo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	return participants, nil
}
