package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// FindStructure returns a pointer into draw.Structures so callers can mutate it in place.
func FindStructure(draw *models.DrawDefinition, structureID string) (*models.Structure, error) {
	if draw == nil {
		return nil, ErrStructureNotFound
	}
	for i := range draw.Structures {
		if draw.Structures[i].StructureID == structureID {
			return &draw.Structures[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStructureNotFound, structureID)
}

// GetAllStructureMatchUps returns a copy of the structure's matchUps ordered by
// round, then round position.
func GetAllStructureMatchUps(structure *models.Structure) []models.MatchUp {
	matchUps := make([]models.MatchUp, len(structure.MatchUps))
	copy(matchUps, structure.MatchUps)
	sort.SliceStable(matchUps, func(i, j int) bool {
		if matchUps[i].RoundNumber != matchUps[j].RoundNumber {
			return matchUps[i].RoundNumber < matchUps[j].RoundNumber
		}
		return matchUps[i].RoundPosition < matchUps[j].RoundPosition
	})
	return matchUps
}

type AssignedDrawPositions struct {
	Assigned   []models.PositionAssignment
	Byes       []models.PositionAssignment
	Unassigned []models.PositionAssignment
}

func StructureAssignedDrawPositions(structure *models.Structure) AssignedDrawPositions {
	var result AssignedDrawPositions
	for _, a := range structure.PositionAssignments {
		switch {
		case a.ParticipantID != "":
			result.Assigned = append(result.Assigned, a)
		case a.Bye:
			result.Byes = append(result.Byes, a)
		default:
			result.Unassigned = append(result.Unassigned, a)
		}
	}
	return result
}

// AssignDrawPosition places a participant into a structure of the draw and
// returns the structure's resulting assignments. Filled positions are rejected.
func AssignDrawPosition(draw *models.DrawDefinition, structureID string, drawPosition int, participantID string) ([]models.PositionAssignment, error) {
	return mutateStructure(draw, structureID, func(store *PositionStore) error {
		return store.AssignDrawPosition(drawPosition, participantID)
	})
}

func AssignDrawPositionBye(draw *models.DrawDefinition, structureID string, drawPosition int) ([]models.PositionAssignment, error) {
	return mutateStructure(draw, structureID, func(store *PositionStore) error {
		return store.AssignDrawPositionBye(drawPosition)
	})
}

func RemoveDrawPositionAssignment(draw *models.DrawDefinition, structureID string, drawPosition int) ([]models.PositionAssignment, error) {
	return mutateStructure(draw, structureID, func(store *PositionStore) error {
		_, err := store.RemoveDrawPositionAssignment(drawPosition)
		return err
	})
}

func mutateStructure(draw *models.DrawDefinition, structureID string, mutate func(*PositionStore) error) ([]models.PositionAssignment, error) {
	structure, err := FindStructure(draw, structureID)
	if err != nil {
		return nil, err
	}
	store := NewPositionStore(structure.PositionAssignments)
	if err := mutate(store); err != nil {
		return nil, err
	}
	structure.PositionAssignments = store.PositionAssignments()
	return structure.PositionAssignments, nil
}

// StructureTarget exposes one structure of a draw through the assignment
// primitives, writing every change straight into the draw definition.
type StructureTarget struct {
	draw        *models.DrawDefinition
	structureID string
}

func NewStructureTarget(draw *models.DrawDefinition, structureID string) *StructureTarget {
	return &StructureTarget{draw: draw, structureID: structureID}
}

func (t *StructureTarget) PositionAssignments() []models.PositionAssignment {
	structure, err := FindStructure(t.draw, t.structureID)
	if err != nil {
		return nil
	}
	out := make([]models.PositionAssignment, len(structure.PositionAssignments))
	copy(out, structure.PositionAssignments)
	return out
}

func (t *StructureTarget) AssignDrawPosition(drawPosition int, participantID string) error {
	_, err := AssignDrawPosition(t.draw, t.structureID, drawPosition, participantID)
	return err
}

func (t *StructureTarget) AssignDrawPositionBye(drawPosition int) error {
	_, err := AssignDrawPositionBye(t.draw, t.structureID, drawPosition)
	return err
}

func (t *StructureTarget) RemoveDrawPositionAssignment(drawPosition int) (models.PositionAssignment, error) {
	structure, err := FindStructure(t.draw, t.structureID)
	if err != nil {
		return models.PositionAssignment{}, err
	}
	store := NewPositionStore(structure.PositionAssignments)
	previous, err := store.RemoveDrawPositionAssignment(drawPosition)
	if err != nil {
		return previous, err
	}
	structure.PositionAssignments = store.PositionAssignments()
	return previous, nil
}
