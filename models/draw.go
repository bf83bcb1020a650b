package models

import "time"

type StructureType string

const (
	StructureElimination StructureType = "ELIMINATION"
	StructureRoundRobin  StructureType = "ROUND_ROBIN"
)

// PositionAssignment is the occupancy of a single draw position.
type PositionAssignment struct {
	DrawPosition  int    `json:"draw_position" db:"draw_position"`
	ParticipantID string `json:"participant_id,omitempty" db:"participant_id"`
	Bye           bool   `json:"bye,omitempty" db:"bye"`
}

func (a PositionAssignment) Filled() bool {
	return a.ParticipantID != "" || a.Bye
}

type MatchUp struct {
	MatchUpID     string `json:"match_up_id"`
	RoundNumber   int    `json:"round_number"`
	RoundPosition int    `json:"round_position"`
	DrawPositions []int  `json:"draw_positions,omitempty"`
	// FeedRound marks a matchUp a qualifier or feed-in position enters after round one.
	FeedRound  bool `json:"feed_round,omitempty"`
	PoolNumber int  `json:"pool_number,omitempty"`
}

type Pool struct {
	PoolNumber    int   `json:"pool_number"`
	DrawPositions []int `json:"draw_positions"`
}

type Structure struct {
	StructureID         string               `json:"structure_id" db:"id"`
	DrawID              int                  `json:"draw_id" db:"draw_id"`
	StructureName       string               `json:"structure_name" db:"name"`
	StructureType       StructureType        `json:"structure_type" db:"structure_type"`
	DrawSize            int                  `json:"draw_size" db:"draw_size"`
	MatchUps            []MatchUp            `json:"match_ups" db:"-"`
	Pools               []Pool               `json:"pools,omitempty" db:"-"`
	PositionAssignments []PositionAssignment `json:"position_assignments" db:"-"`
	CreatedAt           time.Time            `json:"created_at" db:"created_at"`
}

func (s *Structure) IsRoundRobin() bool {
	return s.StructureType == StructureRoundRobin
}

type DrawDefinition struct {
	DrawID     int         `json:"draw_id" db:"id"`
	DrawName   string      `json:"draw_name" db:"name"`
	Structures []Structure `json:"structures" db:"-"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
