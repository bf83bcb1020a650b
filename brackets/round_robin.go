package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

const defaultPoolSize = 4

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() StructureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateStructure splits positions 1..DrawSize into contiguous pools of
// PoolSize positions (the last pool takes the remainder) and creates one
// matchUp per pair of positions inside each pool. With Legs == 2 every pair
// meets twice.
func (g *RoundRobinGenerator) GenerateStructure(ctx context.Context, params GenerateStructureParams) (*models.Structure, error) {
	if params.DrawSize < 2 {
		return nil, ErrNotEnoughPositions
	}

	poolSize := params.PoolSize
	if poolSize == 0 {
		poolSize = defaultPoolSize
	}
	if poolSize < 2 {
		return nil, ErrInvalidPoolSize
	}
	if poolSize > params.DrawSize {
		poolSize = params.DrawSize
	}

	legs := 1
	if params.Legs == 2 {
		legs = 2
	}

	pools := make([]models.Pool, 0, (params.DrawSize+poolSize-1)/poolSize)
	for start := 1; start <= params.DrawSize; start += poolSize {
		end := start + poolSize - 1
		if end > params.DrawSize {
			end = params.DrawSize
		}
		positions := make([]int, 0, end-start+1)
		for dp := start; dp <= end; dp++ {
			positions = append(positions, dp)
		}
		pools = append(pools, models.Pool{PoolNumber: len(pools) + 1, DrawPositions: positions})
	}

	if last := pools[len(pools)-1]; len(pools) > 1 && len(last.DrawPositions) < 2 {
		// a lone trailing position joins the previous pool
		prev := &pools[len(pools)-2]
		prev.DrawPositions = append(prev.DrawPositions, last.DrawPositions...)
		pools = pools[:len(pools)-1]
	}

	matchUps := make([]models.MatchUp, 0)
	for _, pool := range pools {
		order := 0
		for leg := 1; leg <= legs; leg++ {
			for i := 0; i < len(pool.DrawPositions); i++ {
				for j := i + 1; j < len(pool.DrawPositions); j++ {
					order++
					p1, p2 := pool.DrawPositions[i], pool.DrawPositions[j]
					if leg == 2 {
						p1, p2 = p2, p1
					}
					matchUps = append(matchUps, models.MatchUp{
						MatchUpID:     fmt.Sprintf("%s-P%dM%d", params.StructureID, pool.PoolNumber, order),
						RoundNumber:   leg,
						RoundPosition: order,
						DrawPositions: []int{p1, p2},
						PoolNumber:    pool.PoolNumber,
					})
				}
			}
		}
	}

	sort.SliceStable(matchUps, func(i, j int) bool {
		if matchUps[i].PoolNumber != matchUps[j].PoolNumber {
			return matchUps[i].PoolNumber < matchUps[j].PoolNumber
		}
		return matchUps[i].RoundPosition < matchUps[j].RoundPosition
	})

	return &models.Structure{
		StructureID:         params.StructureID,
		StructureName:       params.StructureName,
		StructureType:       models.StructureRoundRobin,
		DrawSize:            params.DrawSize,
		MatchUps:            matchUps,
		Pools:               pools,
		PositionAssignments: emptyAssignments(params.DrawSize),
	}, nil
}
