package brackets

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

type node struct {
	drawPosition   int
	sourceMatchUID string
}

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() StructureGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateStructure lays out draw positions 1..N (N the draw size rounded up to
// a power of two) into first round pairs (1,2), (3,4), ... and builds every
// later round on top of them. When FeedPositions is set, round two becomes a
// feed round: each first round winner meets a fed position numbered after N.
func (g *SingleEliminationGenerator) GenerateStructure(ctx context.Context, params GenerateStructureParams) (*models.Structure, error) {
	mainDrawSize := params.DrawSize - params.FeedPositions
	if mainDrawSize < 2 {
		return nil, ErrNotEnoughPositions
	}

	numRounds := int(math.Ceil(math.Log2(float64(mainDrawSize))))
	sizeOfFullBracket := 1 << uint(numRounds)

	if params.FeedPositions != 0 && params.FeedPositions != sizeOfFullBracket/2 {
		return nil, fmt.Errorf("%w: got %d, round two has %d matchUps", ErrInvalidFeedPositions, params.FeedPositions, sizeOfFullBracket/2)
	}

	currentRoundNodes := make([]*node, sizeOfFullBracket)
	for i := range currentRoundNodes {
		currentRoundNodes[i] = &node{drawPosition: i + 1}
	}

	matchUps := make([]models.MatchUp, 0, sizeOfFullBracket-1+params.FeedPositions)
	nextFedPosition := sizeOfFullBracket + 1

	for r := 1; len(currentRoundNodes) > 1 || (r == 2 && params.FeedPositions > 0); r++ {
		feedRound := r == 2 && params.FeedPositions > 0
		nextRoundNodes := make([]*node, 0, len(currentRoundNodes))

		step := 2
		if feedRound {
			step = 1
		}
		for i := 0; i < len(currentRoundNodes); i += step {
			uid := fmt.Sprintf("%s-R%dM%d", params.StructureID, r, len(nextRoundNodes)+1)
			mu := models.MatchUp{
				MatchUpID:     uid,
				RoundNumber:   r,
				RoundPosition: len(nextRoundNodes) + 1,
			}

			if feedRound {
				mu.FeedRound = true
				mu.DrawPositions = []int{nextFedPosition}
				nextFedPosition++
			} else {
				for _, n := range currentRoundNodes[i : i+2] {
					if n.drawPosition > 0 {
						mu.DrawPositions = append(mu.DrawPositions, n.drawPosition)
					}
				}
			}

			matchUps = append(matchUps, mu)
			nextRoundNodes = append(nextRoundNodes, &node{sourceMatchUID: uid})
		}
		currentRoundNodes = nextRoundNodes
	}

	sort.Slice(matchUps, func(i, j int) bool {
		if matchUps[i].RoundNumber != matchUps[j].RoundNumber {
			return matchUps[i].RoundNumber < matchUps[j].RoundNumber
		}
		return matchUps[i].RoundPosition < matchUps[j].RoundPosition
	})

	drawSize := sizeOfFullBracket + params.FeedPositions
	return &models.Structure{
		StructureID:         params.StructureID,
		StructureName:       params.StructureName,
		StructureType:       models.StructureElimination,
		DrawSize:            drawSize,
		MatchUps:            matchUps,
		PositionAssignments: emptyAssignments(drawSize),
	}, nil
}
