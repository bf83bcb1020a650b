package models

// Directives group individuals that share a composite participant of the given type.
const (
	DirectivePairParticipants  = "pairParticipants"
	DirectiveTeamParticipants  = "teamParticipants"
	DirectiveGroupParticipants = "groupParticipants"
)

// PolicyAttribute names one attribute the avoidance policy keeps apart.
// Exactly one of Key or Directive is expected to be set.
type PolicyAttribute struct {
	Key                   string `json:"key,omitempty"`
	SignificantCharacters int    `json:"significant_characters,omitempty"`
	Directive             string `json:"directive,omitempty"`
}

type AvoidancePolicy struct {
	PolicyAttributes []PolicyAttribute `json:"policy_attributes"`
	RoundsToSeparate *int              `json:"rounds_to_separate,omitempty"`
	TargetDivisions  *int              `json:"target_divisions,omitempty"`
	CandidatesCount  int               `json:"candidates_count,omitempty"`
	// InheritMemberValues lets composites carry the union of their members' values.
	// Defaults to true when nil.
	InheritMemberValues *bool `json:"inherit_member_values,omitempty"`
}

func (p *AvoidancePolicy) InheritsMemberValues() bool {
	return p.InheritMemberValues == nil || *p.InheritMemberValues
}

// AttributeKeys builds policy attributes from plain attribute paths.
func AttributeKeys(keys ...string) []PolicyAttribute {
	attrs := make([]PolicyAttribute, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, PolicyAttribute{Key: k})
	}
	return attrs
}

func IsValidDirective(d string) bool {
	switch d {
	case DirectivePairParticipants, DirectiveTeamParticipants, DirectiveGroupParticipants:
		return true
	}
	return false
}
