package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// PositionStore is an in-memory position-assignment store for one structure.
// It enforces that a draw position holds at most one participant (or a bye)
// and that a participant occupies at most one draw position.
type PositionStore struct {
	assignments   []models.PositionAssignment
	byPosition    map[int]int
	byParticipant map[string]int
}

// NewPositionStore copies assignments, so the store never aliases its input.
func NewPositionStore(assignments []models.PositionAssignment) *PositionStore {
	s := &PositionStore{
		assignments:   make([]models.PositionAssignment, len(assignments)),
		byPosition:    make(map[int]int, len(assignments)),
		byParticipant: make(map[string]int, len(assignments)),
	}
	copy(s.assignments, assignments)
	sort.Slice(s.assignments, func(i, j int) bool {
		return s.assignments[i].DrawPosition < s.assignments[j].DrawPosition
	})
	for i, a := range s.assignments {
		s.byPosition[a.DrawPosition] = i
		if a.ParticipantID != "" {
			s.byParticipant[a.ParticipantID] = a.DrawPosition
		}
	}
	return s
}

func (s *PositionStore) Clone() *PositionStore {
	return NewPositionStore(s.assignments)
}

func (s *PositionStore) PositionAssignments() []models.PositionAssignment {
	out := make([]models.PositionAssignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

func (s *PositionStore) AssignDrawPosition(drawPosition int, participantID string) error {
	if participantID == "" {
		return ErrMissingParticipantID
	}
	idx, err := s.openIndex(drawPosition)
	if err != nil {
		return err
	}
	if at, ok := s.byParticipant[participantID]; ok {
		return fmt.Errorf("%w: %s at draw position %d", ErrParticipantAlreadyPlaced, participantID, at)
	}
	s.assignments[idx].ParticipantID = participantID
	s.byParticipant[participantID] = drawPosition
	return nil
}

func (s *PositionStore) AssignDrawPositionBye(drawPosition int) error {
	idx, err := s.openIndex(drawPosition)
	if err != nil {
		return err
	}
	s.assignments[idx].Bye = true
	return nil
}

// RemoveDrawPositionAssignment clears a draw position and returns what it held.
func (s *PositionStore) RemoveDrawPositionAssignment(drawPosition int) (models.PositionAssignment, error) {
	idx, ok := s.byPosition[drawPosition]
	if !ok {
		return models.PositionAssignment{}, fmt.Errorf("%w: %d", ErrInvalidDrawPosition, drawPosition)
	}
	previous := s.assignments[idx]
	if !previous.Filled() {
		return previous, fmt.Errorf("%w: %d", ErrDrawPositionNotAssigned, drawPosition)
	}
	if previous.ParticipantID != "" {
		delete(s.byParticipant, previous.ParticipantID)
	}
	s.assignments[idx] = models.PositionAssignment{DrawPosition: drawPosition}
	return previous, nil
}

func (s *PositionStore) ParticipantAt(drawPosition int) (string, bool) {
	idx, ok := s.byPosition[drawPosition]
	if !ok || s.assignments[idx].ParticipantID == "" {
		return "", false
	}
	return s.assignments[idx].ParticipantID, true
}

func (s *PositionStore) PositionOf(participantID string) (int, bool) {
	dp, ok := s.byParticipant[participantID]
	return dp, ok
}

func (s *PositionStore) IsBye(drawPosition int) bool {
	idx, ok := s.byPosition[drawPosition]
	return ok && s.assignments[idx].Bye
}

func (s *PositionStore) IsFilled(drawPosition int) bool {
	idx, ok := s.byPosition[drawPosition]
	return ok && s.assignments[idx].Filled()
}

// OpenPositions returns the unfilled draw positions in ascending order.
func (s *PositionStore) OpenPositions() []int {
	open := make([]int, 0, len(s.assignments))
	for _, a := range s.assignments {
		if !a.Filled() {
			open = append(open, a.DrawPosition)
		}
	}
	return open
}

func (s *PositionStore) PlacedParticipantIDs() []string {
	ids := make([]string, 0, len(s.byParticipant))
	for _, a := range s.assignments {
		if a.ParticipantID != "" {
			ids = append(ids, a.ParticipantID)
		}
	}
	return ids
}

func (s *PositionStore) openIndex(drawPosition int) (int, error) {
	idx, ok := s.byPosition[drawPosition]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDrawPosition, drawPosition)
	}
	if s.assignments[idx].Filled() {
		return 0, fmt.Errorf("%w: %d", ErrDrawPositionFilled, drawPosition)
	}
	return idx, nil
}
