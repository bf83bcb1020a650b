package placement

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-draws/models"
)

// SwapProposal exchanges the occupants of two draw positions. The second
// participant is empty when the mover goes to an open position.
type SwapProposal struct {
	DrawPositions     [2]int    `json:"draw_positions"`
	ParticipantIDs    [2]string `json:"participant_ids"`
	ResolvedConflicts int       `json:"resolved_conflicts"`
}

type SwapParams struct {
	PositionAssignments   []models.PositionAssignment
	SwapEligiblePositions []int
	Conflicts             []Conflict
	Topology              *Topology
	Groupings             *Groupings
}

// FindSwaps proposes, for every conflict, moves of a swap-eligible occupant
// to another swap-eligible position outside the conflicting grouping such that
// the mover shares nothing with its new opponents and the displaced occupant
// shares nothing with the mover's former opponents. Proposals never raise the
// total conflict count; they are ordered by conflicts resolved, then position.
func FindSwaps(params SwapParams) []SwapProposal {
	topo := params.Topology
	o := occupancyOf(params.PositionAssignments)
	eligible := append([]int(nil), params.SwapEligiblePositions...)
	sort.Ints(eligible)
	eligibleSet := make(map[int]bool, len(eligible))
	for _, dp := range eligible {
		eligibleSet[dp] = true
	}

	_, before := scoreAssignments(topo, params.PositionAssignments, params.Groupings)

	seen := make(map[[2]int]bool)
	proposals := make([]SwapProposal, 0)
	for _, conflict := range params.Conflicts {
		conflictGroup, ok := topo.GroupOf(conflict.DrawPositions[0])
		if !ok {
			continue
		}
		for _, mover := range conflict.DrawPositions {
			moverID := o.byPosition[mover].ParticipantID
			if !eligibleSet[mover] || moverID == "" {
				continue
			}
			moverGroups := params.Groupings.GroupsOf(moverID)

			for _, target := range eligible {
				targetGroup, ok := topo.GroupOf(target)
				if target == mover || !ok || targetGroup == conflictGroup || o.byPosition[target].Bye {
					continue
				}
				key := [2]int{min(mover, target), max(mover, target)}
				if seen[key] {
					continue
				}

				if opponentsShare(moverGroups, topo.DrawPositionGroups[targetGroup], target, o, params.Groupings) {
					continue
				}
				targetID := o.byPosition[target].ParticipantID
				if targetID != "" && opponentsShare(params.Groupings.GroupsOf(targetID), topo.DrawPositionGroups[conflictGroup], mover, o, params.Groupings) {
					continue
				}

				_, after := scoreAssignments(topo, swapped(params.PositionAssignments, mover, target), params.Groupings)
				if len(after) > len(before) {
					continue
				}
				seen[key] = true
				proposals = append(proposals, SwapProposal{
					DrawPositions:     [2]int{mover, target},
					ParticipantIDs:    [2]string{moverID, targetID},
					ResolvedConflicts: len(before) - len(after),
				})
			}
		}
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		if proposals[i].ResolvedConflicts != proposals[j].ResolvedConflicts {
			return proposals[i].ResolvedConflicts > proposals[j].ResolvedConflicts
		}
		if proposals[i].DrawPositions[0] != proposals[j].DrawPositions[0] {
			return proposals[i].DrawPositions[0] < proposals[j].DrawPositions[0]
		}
		return proposals[i].DrawPositions[1] < proposals[j].DrawPositions[1]
	})
	return proposals
}

// opponentsShare reports whether groups intersect those of any participant in
// group other than the one at position skip.
func opponentsShare(groups []string, group []int, skip int, o occupancy, groupings *Groupings) bool {
	for _, dp := range group {
		if dp == skip {
			continue
		}
		if id := o.byPosition[dp].ParticipantID; id != "" && sharesAny(groups, groupings.GroupsOf(id)) {
			return true
		}
	}
	return false
}

func swapped(assignments []models.PositionAssignment, a, b int) []models.PositionAssignment {
	out := make([]models.PositionAssignment, len(assignments))
	copy(out, assignments)
	ia, ib := -1, -1
	for i := range out {
		switch out[i].DrawPosition {
		case a:
			ia = i
		case b:
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return out
	}
	out[ia].ParticipantID, out[ib].ParticipantID = out[ib].ParticipantID, out[ia].ParticipantID
	out[ia].Bye, out[ib].Bye = out[ib].Bye, out[ia].Bye
	return out
}

// SwapWriter is a position store that can also clear positions.
type SwapWriter interface {
	WorkingStore
	RemoveDrawPositionAssignment(drawPosition int) (models.PositionAssignment, error)
}

// ApplySwap carries a proposal out through the assignment primitives.
func ApplySwap(store SwapWriter, proposal SwapProposal) error {
	from, to := proposal.DrawPositions[0], proposal.DrawPositions[1]
	moverID, targetID := proposal.ParticipantIDs[0], proposal.ParticipantIDs[1]

	if _, err := store.RemoveDrawPositionAssignment(from); err != nil {
		return fmt.Errorf("swap %d<->%d: %w", from, to, err)
	}
	if targetID != "" {
		if _, err := store.RemoveDrawPositionAssignment(to); err != nil {
			return fmt.Errorf("swap %d<->%d: %w", from, to, err)
		}
	}
	if err := store.AssignDrawPosition(to, moverID); err != nil {
		return &AssignmentError{Assignment: models.PositionAssignment{DrawPosition: to, ParticipantID: moverID}, Err: err}
	}
	if targetID != "" {
		if err := store.AssignDrawPosition(from, targetID); err != nil {
			return &AssignmentError{Assignment: models.PositionAssignment{DrawPosition: from, ParticipantID: targetID}, Err: err}
		}
	}
	return nil
}
