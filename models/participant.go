package models

import "time"

type ParticipantType string

const (
	ParticipantIndividual ParticipantType = "INDIVIDUAL"
	ParticipantPair       ParticipantType = "PAIR"
	ParticipantTeam       ParticipantType = "TEAM"
	ParticipantGroup      ParticipantType = "GROUP"
)

// Participant is a roster entry. Composite participants (pairs, teams, groups)
// reference their members through IndividualParticipantIDs.
type Participant struct {
	ID                       string          `json:"participant_id" db:"id"`
	DrawID                   int             `json:"draw_id,omitempty" db:"draw_id"`
	Name                     string          `json:"participant_name" db:"name"`
	Type                     ParticipantType `json:"participant_type" db:"participant_type"`
	IndividualParticipantIDs []string        `json:"individual_participant_ids,omitempty" db:"individual_participant_ids"`
	Attributes               map[string]any  `json:"attributes,omitempty" db:"attributes"`
	CreatedAt                time.Time       `json:"created_at" db:"created_at"`
}

func (p Participant) IsComposite() bool {
	return p.Type == ParticipantPair || p.Type == ParticipantTeam || p.Type == ParticipantGroup
}

func IsValidParticipantType(t ParticipantType) bool {
	switch t {
	case ParticipantIndividual, ParticipantPair, ParticipantTeam, ParticipantGroup:
		return true
	}
	return false
}
