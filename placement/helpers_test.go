package placement

import (
	"context"
	"fmt"
	"testing"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/stretchr/testify/require"
)

func eliminationDraw(t *testing.T, drawSize, feedPositions int) *models.DrawDefinition {
	t.Helper()
	structure, err := brackets.NewSingleEliminationGenerator().GenerateStructure(context.Background(), brackets.GenerateStructureParams{
		StructureID:   "main",
		StructureName: "Main",
		DrawSize:      drawSize,
		FeedPositions: feedPositions,
	})
	require.NoError(t, err)
	return &models.DrawDefinition{DrawID: 1, DrawName: "Open", Structures: []models.Structure{*structure}}
}

func roundRobinDraw(t *testing.T, drawSize, poolSize int) *models.DrawDefinition {
	t.Helper()
	structure, err := brackets.NewRoundRobinGenerator().GenerateStructure(context.Background(), brackets.GenerateStructureParams{
		StructureID:   "main",
		StructureName: "Pools",
		DrawSize:      drawSize,
		PoolSize:      poolSize,
	})
	require.NoError(t, err)
	return &models.DrawDefinition{DrawID: 1, DrawName: "Pools", Structures: []models.Structure{*structure}}
}

func mainStructure(t *testing.T, draw *models.DrawDefinition) *models.Structure {
	t.Helper()
	structure, err := brackets.FindStructure(draw, "main")
	require.NoError(t, err)
	return structure
}

// clubRoster builds individuals named after their club: "A1", "A2" and "B1"
// for clubs A, A and B. An empty club leaves the participant without attributes.
func clubRoster(clubs ...string) ([]models.Participant, []string) {
	participants := make([]models.Participant, 0, len(clubs))
	ids := make([]string, 0, len(clubs))
	counts := make(map[string]int)
	for i, club := range clubs {
		p := models.Participant{Type: models.ParticipantIndividual}
		if club == "" {
			p.ID = fmt.Sprintf("X%d", i+1)
		} else {
			counts[club]++
			p.ID = fmt.Sprintf("%s%d", club, counts[club])
			p.Attributes = map[string]any{"club": club}
		}
		p.Name = p.ID
		participants = append(participants, p)
		ids = append(ids, p.ID)
	}
	return participants, ids
}

func clubPolicy(candidates int) *models.AvoidancePolicy {
	return &models.AvoidancePolicy{
		PolicyAttributes: models.AttributeKeys("club"),
		CandidatesCount:  candidates,
	}
}

func positionsByParticipant(assignments []models.PositionAssignment) map[string]int {
	out := make(map[string]int)
	for _, a := range assignments {
		if a.ParticipantID != "" {
			out[a.ParticipantID] = a.DrawPosition
		}
	}
	return out
}

var firstIndex = RandomFunc(func(int) int { return 0 })
