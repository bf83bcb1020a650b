package placement

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
)

type Request struct {
	DrawDefinition         *models.DrawDefinition
	StructureID            string
	UnseededParticipantIDs []string
	Participants           []models.Participant
	Policy                 *models.AvoidancePolicy
	UnseededByePositions   []int
}

type Result struct {
	Success       bool       `json:"success"`
	Committed     int        `json:"committed"`
	Conflicts     []Conflict `json:"conflicts"`
	ConflictCount int        `json:"conflict_count"`
	SwapsApplied  int        `json:"swaps_applied"`
	Candidate     *Candidate `json:"-"`
	Topology      *Topology  `json:"-"`
}

// PositionUnseededParticipants places the unseeded participants of a structure
// so that participants sharing a policy attribute meet as late as possible,
// then writes the winning placement into the draw definition.
//
// On failure the structure is left as it was. With ErrNoCandidates the result
// still carries the conflict count of the best failed attempt.
func PositionUnseededParticipants(req Request, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if req.Policy == nil {
		return nil, ErrMissingAvoidancePolicy
	}
	if req.DrawDefinition == nil {
		return nil, fmt.Errorf("%w: no draw definition", brackets.ErrStructureNotFound)
	}
	structure, err := brackets.FindStructure(req.DrawDefinition, req.StructureID)
	if err != nil {
		return nil, err
	}

	topo := BuildChunks(structure, ChunkParams{
		RoundsToSeparate: req.Policy.RoundsToSeparate,
		TargetDivisions:  req.Policy.TargetDivisions,
		FedPositions:     opts.FedPositions,
	})
	if len(topo.FedPositions) > 0 {
		opts.Logger.Info("structure has fed positions",
			slog.String("structure_id", structure.StructureID),
			slog.Any("draw_positions", topo.FedPositions),
			slog.Bool("excluded", opts.FedPositions == FedPositionsExcluded))
	}

	assigned := brackets.StructureAssignedDrawPositions(structure)
	initial := structure.PositionAssignments
	placed := occupancyOf(initial).placed

	unplaced := make([]string, 0, len(req.UnseededParticipantIDs))
	seen := make(map[string]bool, len(req.UnseededParticipantIDs))
	for _, id := range req.UnseededParticipantIDs {
		if _, ok := placed[id]; ok || seen[id] {
			continue
		}
		seen[id] = true
		unplaced = append(unplaced, id)
	}

	targets := append([]string(nil), unplaced...)
	for _, a := range assigned.Assigned {
		targets = append(targets, a.ParticipantID)
	}
	groupings := computeGroupsForPolicy(req.Participants, req.Policy, targets)

	count := req.Policy.CandidatesCount
	if count <= 0 {
		count = DefaultCandidatesCount
	}

	best, err := SelectBest(SelectParams{
		UnplacedParticipantIDs: unplaced,
		InitialAssignments:     initial,
		ByePositions:           req.UnseededByePositions,
		Groupings:              groupings,
		Topology:               topo,
		CandidatesCount:        count,
	}, opts)
	if err != nil {
		result := &Result{Candidate: best, Topology: topo}
		if best != nil {
			result.Conflicts = best.Conflicts
			result.ConflictCount = best.ConflictCount()
		}
		if errors.Is(err, ErrNoCandidates) {
			return result, err
		}
		return nil, err
	}

	swaps := 0
	if opts.ResolveSwaps && best.ConflictCount() > 0 {
		swaps, err = resolveSwaps(best, initial, topo, groupings, opts)
		if err != nil {
			return nil, err
		}
	}

	committed, err := Commit(best, initial, brackets.NewStructureTarget(req.DrawDefinition, req.StructureID))
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("unseeded participants positioned",
		slog.String("structure_id", structure.StructureID),
		slog.Int("committed", committed),
		slog.Int("conflicts", best.ConflictCount()),
		slog.Int("swaps", swaps))

	return &Result{
		Success:       true,
		Committed:     committed,
		Conflicts:     best.Conflicts,
		ConflictCount: best.ConflictCount(),
		SwapsApplied:  swaps,
		Candidate:     best,
		Topology:      topo,
	}, nil
}

// resolveSwaps applies the best conflict-reducing swap among positions this
// placement owns until none is left or MaxSwapPasses is reached, updating the
// candidate in place.
func resolveSwaps(candidate *Candidate, initial []models.PositionAssignment, topo *Topology, groupings *Groupings, opts Options) (int, error) {
	before := occupancyOf(initial)
	eligible := make([]int, 0)
	for _, dp := range topo.Positions() {
		if !before.filled(dp) {
			eligible = append(eligible, dp)
		}
	}

	store := brackets.NewPositionStore(candidate.PositionAssignments)
	applied := 0
	for pass := 0; pass < opts.MaxSwapPasses && len(candidate.Conflicts) > 0; pass++ {
		proposals := FindSwaps(SwapParams{
			PositionAssignments:   candidate.PositionAssignments,
			SwapEligiblePositions: eligible,
			Conflicts:             candidate.Conflicts,
			Topology:              topo,
			Groupings:             groupings,
		})
		if len(proposals) == 0 || proposals[0].ResolvedConflicts <= 0 {
			break
		}
		if err := ApplySwap(store, proposals[0]); err != nil {
			return applied, err
		}
		applied++
		candidate.PositionAssignments = store.PositionAssignments()
		candidate.GroupedPlacements, candidate.Conflicts = scoreAssignments(topo, candidate.PositionAssignments, groupings)
	}
	return applied, nil
}

// ScoreAssignments reports the conflicts in a structure's current assignments
// under policy.
func ScoreAssignments(structure *models.Structure, participants []models.Participant, policy *models.AvoidancePolicy, opts Options) ([]Conflict, error) {
	topo, groupings, err := scoringContext(structure, participants, policy, opts)
	if err != nil {
		return nil, err
	}
	_, conflicts := scoreAssignments(topo, structure.PositionAssignments, groupings)
	return conflicts, nil
}

// StructureSwapOptions lists the swaps that would reduce or keep the conflict
// count of a structure's current assignments. Every non-bye position of the
// structure is swap eligible.
func StructureSwapOptions(structure *models.Structure, participants []models.Participant, policy *models.AvoidancePolicy, opts Options) ([]SwapProposal, error) {
	topo, groupings, err := scoringContext(structure, participants, policy, opts)
	if err != nil {
		return nil, err
	}
	_, conflicts := scoreAssignments(topo, structure.PositionAssignments, groupings)
	if len(conflicts) == 0 {
		return []SwapProposal{}, nil
	}
	return FindSwaps(SwapParams{
		PositionAssignments:   structure.PositionAssignments,
		SwapEligiblePositions: topo.Positions(),
		Conflicts:             conflicts,
		Topology:              topo,
		Groupings:             groupings,
	}), nil
}

func scoringContext(structure *models.Structure, participants []models.Participant, policy *models.AvoidancePolicy, opts Options) (*Topology, *Groupings, error) {
	if policy == nil {
		return nil, nil, ErrMissingAvoidancePolicy
	}
	topo := BuildChunks(structure, ChunkParams{
		RoundsToSeparate: policy.RoundsToSeparate,
		TargetDivisions:  policy.TargetDivisions,
		FedPositions:     opts.FedPositions,
	})
	placed := brackets.StructureAssignedDrawPositions(structure).Assigned
	targets := make([]string, 0, len(placed))
	for _, a := range placed {
		targets = append(targets, a.ParticipantID)
	}
	return topo, computeGroupsForPolicy(participants, policy, targets), nil
}
