package placement

import (
	"testing"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/stretchr/testify/require"
)

func conflictedDraw(t *testing.T) (*models.DrawDefinition, []models.Participant) {
	t.Helper()
	draw := eliminationDraw(t, 8, 0)
	structure := mainStructure(t, draw)
	structure.PositionAssignments[0].ParticipantID = "A1"
	structure.PositionAssignments[1].ParticipantID = "A2"
	structure.PositionAssignments[2].ParticipantID = "B1"
	structure.PositionAssignments[3].ParticipantID = "B2"
	participants, _ := clubRoster("A", "A", "B", "B")
	return draw, participants
}

func TestFindSwaps(t *testing.T) {
	t.Run("proposals never raise the conflict count", func(t *testing.T) {
		draw, participants := conflictedDraw(t)
		structure := mainStructure(t, draw)
		policy := clubPolicy(0)

		before, err := ScoreAssignments(structure, participants, policy, Options{})
		require.NoError(t, err)
		require.Len(t, before, 2)

		proposals, err := StructureSwapOptions(structure, participants, policy, Options{})
		require.NoError(t, err)
		require.NotEmpty(t, proposals)
		require.Equal(t, 2, proposals[0].ResolvedConflicts)

		for _, proposal := range proposals {
			scratch := brackets.NewPositionStore(structure.PositionAssignments)
			require.NoError(t, ApplySwap(scratch, proposal))

			swapped := *structure
			swapped.PositionAssignments = scratch.PositionAssignments()
			after, err := ScoreAssignments(&swapped, participants, policy, Options{})
			require.NoError(t, err)
			require.LessOrEqual(t, len(after), len(before))
			require.Equal(t, len(before)-len(after), proposal.ResolvedConflicts)
		}
	})

	t.Run("proposals are ordered by resolved conflicts", func(t *testing.T) {
		draw, participants := conflictedDraw(t)
		proposals, err := StructureSwapOptions(mainStructure(t, draw), participants, clubPolicy(0), Options{})
		require.NoError(t, err)

		for i := 1; i < len(proposals); i++ {
			require.GreaterOrEqual(t, proposals[i-1].ResolvedConflicts, proposals[i].ResolvedConflicts)
		}
	})

	t.Run("moves into an open position leave the second participant empty", func(t *testing.T) {
		draw, participants := conflictedDraw(t)
		proposals, err := StructureSwapOptions(mainStructure(t, draw), participants, clubPolicy(0), Options{})
		require.NoError(t, err)

		found := false
		for _, p := range proposals {
			if p.DrawPositions[1] > 4 {
				found = true
				require.Empty(t, p.ParticipantIDs[1])
				require.Equal(t, 1, p.ResolvedConflicts)
			}
		}
		require.True(t, found)
	})

	t.Run("byes are never swap targets", func(t *testing.T) {
		draw, participants := conflictedDraw(t)
		structure := mainStructure(t, draw)
		for i := 4; i < 8; i++ {
			structure.PositionAssignments[i].Bye = true
		}

		proposals, err := StructureSwapOptions(structure, participants, clubPolicy(0), Options{})
		require.NoError(t, err)
		for _, p := range proposals {
			require.LessOrEqual(t, p.DrawPositions[1], 4)
		}
	})

	t.Run("no conflicts no proposals", func(t *testing.T) {
		draw := eliminationDraw(t, 4, 0)
		proposals, err := StructureSwapOptions(mainStructure(t, draw), nil, clubPolicy(0), Options{})
		require.NoError(t, err)
		require.Empty(t, proposals)
	})
}

func TestApplySwap(t *testing.T) {
	draw, _ := conflictedDraw(t)
	target := brackets.NewStructureTarget(draw, "main")

	err := ApplySwap(target, SwapProposal{DrawPositions: [2]int{2, 3}, ParticipantIDs: [2]string{"A2", "B1"}})
	require.NoError(t, err)

	placed := positionsByParticipant(mainStructure(t, draw).PositionAssignments)
	require.Equal(t, map[string]int{"A1": 1, "B1": 2, "A2": 3, "B2": 4}, placed)
}

func TestResolveSwaps(t *testing.T) {
	draw, participants := conflictedDraw(t)
	structure := mainStructure(t, draw)
	topo := BuildChunks(structure, ChunkParams{})
	groupings := ComputeGroups(participants, models.AttributeKeys("club"), nil)

	candidate := &Candidate{PositionAssignments: structure.PositionAssignments}
	candidate.GroupedPlacements, candidate.Conflicts = scoreAssignments(topo, candidate.PositionAssignments, groupings)
	require.Len(t, candidate.Conflicts, 2)

	applied, err := resolveSwaps(candidate, nil, topo, groupings, Options{}.withDefaults())
	require.NoError(t, err)
	require.Equal(t, 1, applied)
	require.Empty(t, candidate.Conflicts)
}
