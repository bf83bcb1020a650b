package placement

import (
	"github.com/Dosada05/tournament-draws/models"
)

// Conflict is a pairing whose two occupants share at least one avoided group.
type Conflict struct {
	DrawPositions  [2]int    `json:"draw_positions"`
	ParticipantIDs [2]string `json:"participant_ids"`
	SharedGroups   []string  `json:"shared_groups"`
}

type Occupant struct {
	DrawPosition  int      `json:"draw_position"`
	ParticipantID string   `json:"participant_id"`
	Groups        []string `json:"groups,omitempty"`
	Conflict      bool     `json:"conflict,omitempty"`
}

// GroupedPlacement is the occupancy of one draw position group (a first round
// pair or a round robin pool).
type GroupedPlacement struct {
	DrawPositions []int      `json:"draw_positions"`
	Occupants     []Occupant `json:"occupants"`
	Conflict      bool       `json:"conflict,omitempty"`
}

// GroupPlacements lays participant assignments out over the topology groups.
// Byes and empty positions contribute no occupant.
func GroupPlacements(topo *Topology, assignments []models.PositionAssignment, groupings *Groupings) []GroupedPlacement {
	occupants := make(map[int]string, len(assignments))
	for _, a := range assignments {
		if a.ParticipantID != "" {
			occupants[a.DrawPosition] = a.ParticipantID
		}
	}

	placements := make([]GroupedPlacement, 0, len(topo.DrawPositionGroups))
	for _, group := range topo.DrawPositionGroups {
		gp := GroupedPlacement{DrawPositions: group}
		for _, dp := range group {
			if id, ok := occupants[dp]; ok {
				gp.Occupants = append(gp.Occupants, Occupant{
					DrawPosition:  dp,
					ParticipantID: id,
					Groups:        groupings.GroupsOf(id),
				})
			}
		}
		placements = append(placements, gp)
	}
	return placements
}

// Score counts conflicts. For elimination groups the two head-to-head
// occupants are compared; for round robin pools every unique opponent pairing
// of the pool schedule is compared. Implicated placements and occupants are
// flagged in place.
func Score(placements []GroupedPlacement, isRoundRobin bool) []Conflict {
	conflicts := make([]Conflict, 0)
	for gi := range placements {
		gp := &placements[gi]
		gp.Conflict = false
		for oi := range gp.Occupants {
			gp.Occupants[oi].Conflict = false
		}

		if !isRoundRobin && len(gp.Occupants) > 2 {
			continue
		}
		for i := 0; i < len(gp.Occupants); i++ {
			for j := i + 1; j < len(gp.Occupants); j++ {
				a, b := &gp.Occupants[i], &gp.Occupants[j]
				shared := intersectSorted(a.Groups, b.Groups)
				if len(shared) == 0 {
					continue
				}
				a.Conflict, b.Conflict, gp.Conflict = true, true, true
				conflicts = append(conflicts, Conflict{
					DrawPositions:  [2]int{a.DrawPosition, b.DrawPosition},
					ParticipantIDs: [2]string{a.ParticipantID, b.ParticipantID},
					SharedGroups:   shared,
				})
			}
		}
	}
	return conflicts
}

func scoreAssignments(topo *Topology, assignments []models.PositionAssignment, groupings *Groupings) ([]GroupedPlacement, []Conflict) {
	placements := GroupPlacements(topo, assignments, groupings)
	return placements, Score(placements, topo.RoundRobin)
}

func intersectSorted(a, b []string) []string {
	var shared []string
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			shared = append(shared, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return shared
}

func sharesAny(a, b []string) bool {
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}
