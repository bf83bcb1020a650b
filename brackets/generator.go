package brackets

import (
	"context"

	"github.com/Dosada05/tournament-draws/models"
)

type GenerateStructureParams struct {
	StructureID   string
	StructureName string
	DrawSize      int
	// PoolSize applies to round robin structures only.
	PoolSize int
	// Legs is 1 for a single round robin, 2 for a double.
	Legs int
	// FeedPositions is the number of qualifier positions fed into round two.
	FeedPositions int
}

// StructureGenerator builds the topology of a structure: draw positions,
// matchUps and, for round robin, pools. It never places participants.
type StructureGenerator interface {
	GenerateStructure(ctx context.Context, params GenerateStructureParams) (*models.Structure, error)

	GetName() string
}

func GeneratorFor(structureType models.StructureType) (StructureGenerator, error) {
	switch structureType {
	case models.StructureElimination:
		return NewSingleEliminationGenerator(), nil
	case models.StructureRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, ErrUnsupportedStructureType
	}
}

func emptyAssignments(drawPositions int) []models.PositionAssignment {
	assignments := make([]models.PositionAssignment, drawPositions)
	for i := range assignments {
		assignments[i] = models.PositionAssignment{DrawPosition: i + 1}
	}
	return assignments
}
