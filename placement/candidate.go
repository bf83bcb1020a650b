package placement

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
)

// WorkingStore is the assignment primitive a candidate is generated against.
type WorkingStore interface {
	PositionAssignments() []models.PositionAssignment
	AssignDrawPosition(drawPosition int, participantID string) error
	AssignDrawPositionBye(drawPosition int) error
}

func newPositionStore(assignments []models.PositionAssignment) WorkingStore {
	return brackets.NewPositionStore(assignments)
}

// Candidate is one trial placement.
type Candidate struct {
	PositionAssignments []models.PositionAssignment `json:"position_assignments"`
	GroupedPlacements   []GroupedPlacement          `json:"grouped_placements"`
	Conflicts           []Conflict                  `json:"conflicts"`
	Errors              []error                     `json:"-"`
	PairedPriority      bool                        `json:"paired_priority"`
}

func (c *Candidate) ConflictCount() int { return len(c.Conflicts) }

func (c *Candidate) Failed() bool { return len(c.Errors) > 0 }

type GenerateParams struct {
	UnplacedParticipantIDs []string
	InitialAssignments     []models.PositionAssignment
	ByePositions           []int
	Groupings              *Groupings
	Topology               *Topology
	PairedPriority         bool
	Random                 RandomSource
	// NewWorkingStore copies InitialAssignments into the store the candidate
	// is placed against. Defaults to a brackets.PositionStore.
	NewWorkingStore func([]models.PositionAssignment) WorkingStore
}

// selection is the accumulator threaded through generation steps: the group
// being drained when round robin placements are kept contiguous.
type selection struct {
	groupKey string
}

// GenerateCandidate places every unplaced participant once, each into the
// position offering the widest separation from participants it shares a group
// with. Assignment errors are collected and placement continues.
func GenerateCandidate(params GenerateParams) *Candidate {
	rng := params.Random
	if rng == nil {
		rng = globalRandom
	}
	newStore := params.NewWorkingStore
	if newStore == nil {
		newStore = newPositionStore
	}
	topo := params.Topology
	store := newStore(params.InitialAssignments)
	candidate := &Candidate{PairedPriority: params.PairedPriority}

	for _, dp := range params.ByePositions {
		if isFilled(store.PositionAssignments(), dp) {
			continue
		}
		if err := store.AssignDrawPositionBye(dp); err != nil {
			candidate.Errors = append(candidate.Errors, &AssignmentError{
				Assignment: models.PositionAssignment{DrawPosition: dp, Bye: true},
				Err:        err,
			})
		}
	}

	continueGroups := topo.RoundRobin && topo.MaxGroupSize() > 2
	attempted := make(map[string]bool, len(params.UnplacedParticipantIDs))
	state := selection{}

	for range params.UnplacedParticipantIDs {
		occupancy := occupancyOf(store.PositionAssignments())
		remaining := remainingParticipants(params.UnplacedParticipantIDs, occupancy, attempted)
		if len(remaining) == 0 {
			break
		}

		var participantID string
		participantID, state = nextParticipant(remaining, params.Groupings, state, continueGroups, rng)
		attempted[participantID] = true

		avoid := params.Groupings.GroupsOf(participantID)
		drawPosition, ok := choosePosition(avoid, occupancy, topo, params.Groupings, params.PairedPriority, rng)
		if !ok {
			candidate.Errors = append(candidate.Errors, &AssignmentError{
				Assignment: models.PositionAssignment{ParticipantID: participantID},
				Err:        fmt.Errorf("%w: no open position left", ErrInsufficientDrawPositions),
			})
			continue
		}

		if err := store.AssignDrawPosition(drawPosition, participantID); err != nil {
			candidate.Errors = append(candidate.Errors, &AssignmentError{
				Assignment: models.PositionAssignment{DrawPosition: drawPosition, ParticipantID: participantID},
				Err:        err,
			})
		}
	}

	candidate.PositionAssignments = store.PositionAssignments()
	candidate.GroupedPlacements, candidate.Conflicts = scoreAssignments(topo, candidate.PositionAssignments, params.Groupings)
	return candidate
}

type occupancy struct {
	byPosition map[int]models.PositionAssignment
	placed     map[string]int
}

func occupancyOf(assignments []models.PositionAssignment) occupancy {
	o := occupancy{
		byPosition: make(map[int]models.PositionAssignment, len(assignments)),
		placed:     make(map[string]int, len(assignments)),
	}
	for _, a := range assignments {
		o.byPosition[a.DrawPosition] = a
		if a.ParticipantID != "" {
			o.placed[a.ParticipantID] = a.DrawPosition
		}
	}
	return o
}

func (o occupancy) filled(dp int) bool { return o.byPosition[dp].Filled() }

func isFilled(assignments []models.PositionAssignment, dp int) bool {
	for _, a := range assignments {
		if a.DrawPosition == dp {
			return a.Filled()
		}
	}
	return false
}

func remainingParticipants(unplaced []string, o occupancy, attempted map[string]bool) []string {
	remaining := make([]string, 0, len(unplaced))
	for _, id := range unplaced {
		if _, placed := o.placed[id]; placed || attempted[id] {
			continue
		}
		remaining = append(remaining, id)
	}
	return remaining
}

// nextParticipant picks uniformly from the largest group still holding
// unplaced participants. With continueGroups the group chosen last time is
// drained first.
func nextParticipant(remaining []string, groupings *Groupings, state selection, continueGroups bool, rng RandomSource) (string, selection) {
	remainingSet := make(map[string]bool, len(remaining))
	for _, id := range remaining {
		remainingSet[id] = true
	}
	unplacedMembers := func(key string) []string {
		var members []string
		for _, id := range groupings.Groups[key] {
			if remainingSet[id] {
				members = append(members, id)
			}
		}
		return members
	}

	if continueGroups && state.groupKey != "" {
		if members := unplacedMembers(state.groupKey); len(members) > 0 {
			return pick(rng, members), state
		}
	}

	var largest []string
	largestSize := 0
	if groupings != nil {
		keys := make([]string, 0, len(groupings.Groups))
		for key := range groupings.Groups {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			size := len(unplacedMembers(key))
			switch {
			case size == 0 || size < largestSize:
			case size > largestSize:
				largestSize = size
				largest = []string{key}
			default:
				largest = append(largest, key)
			}
		}
	}

	if len(largest) == 0 {
		return pick(rng, remaining), selection{}
	}

	key := pick(rng, largest)
	next := selection{}
	if continueGroups {
		next.groupKey = key
	}
	return pick(rng, unplacedMembers(key)), next
}

// choosePosition walks chunk levels coarsest to finest and takes the first
// level offering a chunk free of the participant's groups. Within that level
// open positions are split into unpaired (no opponent yet) and
// pairedNoConflict (opponent or bye placed, nothing shared); the preferred
// set is drawn from first. Without any such level, any open position of the
// coarsest level is used.
func choosePosition(avoid []string, o occupancy, topo *Topology, groupings *Groupings, pairedPriority bool, rng RandomSource) (int, bool) {
	for _, level := range topo.DrawPositionChunks {
		var unpaired, pairedNoConflict [][]int
		for _, chunk := range level {
			if chunkConflicts(chunk, avoid, o, groupings) {
				continue
			}
			var up, pnc []int
			for _, dp := range chunk {
				if o.filled(dp) {
					continue
				}
				switch classifyPosition(dp, avoid, o, topo, groupings) {
				case positionUnpaired:
					up = append(up, dp)
				case positionPairedNoConflict:
					pnc = append(pnc, dp)
				}
			}
			if len(up) > 0 {
				unpaired = append(unpaired, up)
			}
			if len(pnc) > 0 {
				pairedNoConflict = append(pairedNoConflict, pnc)
			}
		}

		preferred, fallback := unpaired, pairedNoConflict
		if pairedPriority {
			preferred, fallback = pairedNoConflict, unpaired
		}
		if len(preferred) > 0 {
			return pick(rng, pick(rng, preferred)), true
		}
		if len(fallback) > 0 {
			return pick(rng, pick(rng, fallback)), true
		}
	}

	if len(topo.DrawPositionChunks) == 0 {
		return 0, false
	}
	var unassigned [][]int
	for _, chunk := range topo.DrawPositionChunks[0] {
		var open []int
		for _, dp := range chunk {
			if !o.filled(dp) {
				open = append(open, dp)
			}
		}
		if len(open) > 0 {
			unassigned = append(unassigned, open)
		}
	}
	if len(unassigned) == 0 {
		return 0, false
	}
	return pick(rng, pick(rng, unassigned)), true
}

func chunkConflicts(chunk []int, avoid []string, o occupancy, groupings *Groupings) bool {
	if len(avoid) == 0 {
		return false
	}
	for _, dp := range chunk {
		if id := o.byPosition[dp].ParticipantID; id != "" && sharesAny(avoid, groupings.GroupsOf(id)) {
			return true
		}
	}
	return false
}

type positionClass int

const (
	positionUnpaired positionClass = iota
	positionPairedNoConflict
	positionPairedConflict
)

func classifyPosition(dp int, avoid []string, o occupancy, topo *Topology, groupings *Groupings) positionClass {
	gi, ok := topo.GroupOf(dp)
	if !ok {
		return positionUnpaired
	}
	paired := false
	for _, other := range topo.DrawPositionGroups[gi] {
		if other == dp {
			continue
		}
		a := o.byPosition[other]
		switch {
		case a.Bye:
			paired = true
		case a.ParticipantID != "":
			if sharesAny(avoid, groupings.GroupsOf(a.ParticipantID)) {
				return positionPairedConflict
			}
			paired = true
		}
	}
	if paired {
		return positionPairedNoConflict
	}
	return positionUnpaired
}
