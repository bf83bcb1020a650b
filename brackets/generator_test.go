package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/stretchr/testify/require"
)

func TestSingleEliminationGenerator(t *testing.T) {
	gen := NewSingleEliminationGenerator()

	t.Run("rounds the draw up to a power of two", func(t *testing.T) {
		structure, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{StructureID: "s", DrawSize: 6})

		require.NoError(t, err)
		require.Equal(t, 8, structure.DrawSize)
		require.Len(t, structure.PositionAssignments, 8)
		require.Len(t, structure.MatchUps, 7)

		first := structure.MatchUps[:4]
		require.Equal(t, []int{1, 2}, first[0].DrawPositions)
		require.Equal(t, []int{7, 8}, first[3].DrawPositions)
		require.Equal(t, "s-R1M1", first[0].MatchUpID)
		require.Empty(t, structure.MatchUps[4].DrawPositions)
		require.Equal(t, 3, structure.MatchUps[6].RoundNumber)
	})

	t.Run("feed round adds fed positions after the main draw", func(t *testing.T) {
		structure, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{StructureID: "s", DrawSize: 12, FeedPositions: 4})

		require.NoError(t, err)
		require.Equal(t, 12, structure.DrawSize)

		var fed []int
		for _, mu := range structure.MatchUps {
			if mu.FeedRound {
				require.Equal(t, 2, mu.RoundNumber)
				fed = append(fed, mu.DrawPositions...)
			}
		}
		require.Equal(t, []int{9, 10, 11, 12}, fed)
	})

	t.Run("rejects a feed count that does not match round two", func(t *testing.T) {
		_, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{DrawSize: 11, FeedPositions: 3})
		require.ErrorIs(t, err, ErrInvalidFeedPositions)
	})

	t.Run("needs two positions", func(t *testing.T) {
		_, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{DrawSize: 1})
		require.ErrorIs(t, err, ErrNotEnoughPositions)
	})
}

func TestRoundRobinGenerator(t *testing.T) {
	gen := NewRoundRobinGenerator()

	t.Run("splits positions into pools", func(t *testing.T) {
		structure, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{StructureID: "rr", DrawSize: 10})

		require.NoError(t, err)
		require.True(t, structure.IsRoundRobin())
		require.Len(t, structure.Pools, 3)
		require.Equal(t, []int{9, 10}, structure.Pools[2].DrawPositions)
		require.Len(t, structure.MatchUps, 6+6+1)
	})

	t.Run("a lone trailing position joins the previous pool", func(t *testing.T) {
		structure, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{DrawSize: 9, PoolSize: 4})

		require.NoError(t, err)
		require.Len(t, structure.Pools, 2)
		require.Equal(t, []int{5, 6, 7, 8, 9}, structure.Pools[1].DrawPositions)
	})

	t.Run("double round robin plays every pair twice", func(t *testing.T) {
		structure, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{StructureID: "rr", DrawSize: 4, Legs: 2})

		require.NoError(t, err)
		require.Len(t, structure.MatchUps, 12)
		require.Equal(t, []int{2, 1}, structure.MatchUps[6].DrawPositions)
	})

	t.Run("rejects pools of one", func(t *testing.T) {
		_, err := gen.GenerateStructure(context.Background(), GenerateStructureParams{DrawSize: 4, PoolSize: 1})
		require.ErrorIs(t, err, ErrInvalidPoolSize)
	})
}

func TestGeneratorFor(t *testing.T) {
	gen, err := GeneratorFor(models.StructureRoundRobin)
	require.NoError(t, err)
	require.Equal(t, "RoundRobin", gen.GetName())

	_, err = GeneratorFor("SWISS")
	require.ErrorIs(t, err, ErrUnsupportedStructureType)
}
