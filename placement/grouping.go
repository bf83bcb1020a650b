package placement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/tournament-draws/models"
)

// Groupings holds attribute groups keyed "attribute:value" and the inverse
// participant -> group keys index used while scoring.
type Groupings struct {
	Groups              map[string][]string
	ParticipantIDGroups map[string][]string
}

// GroupsOf returns the sorted group keys of a participant.
func (g *Groupings) GroupsOf(participantID string) []string {
	if g == nil {
		return nil
	}
	return g.ParticipantIDGroups[participantID]
}

// ComputeGroups builds attribute groupings for targetParticipantIDs (every
// participant when empty). Individuals inherit the values and directive groups
// of each pair, team or group they belong to; composites carry the union of
// their members' values.
func ComputeGroups(participants []models.Participant, policyAttributes []models.PolicyAttribute, targetParticipantIDs []string) *Groupings {
	return computeGroups(participants, policyAttributes, targetParticipantIDs, true)
}

func computeGroupsForPolicy(participants []models.Participant, policy *models.AvoidancePolicy, targetParticipantIDs []string) *Groupings {
	return computeGroups(participants, policy.PolicyAttributes, targetParticipantIDs, policy.InheritsMemberValues())
}

func computeGroups(participants []models.Participant, policyAttributes []models.PolicyAttribute, targetParticipantIDs []string, inheritMemberValues bool) *Groupings {
	groupings := &Groupings{
		Groups:              make(map[string][]string),
		ParticipantIDGroups: make(map[string][]string),
	}
	if len(policyAttributes) == 0 {
		return groupings
	}

	ownKeys := make(map[string]map[string]struct{}, len(participants))
	memberOf := make(map[string][]models.Participant)
	byID := make(map[string]models.Participant, len(participants))

	for _, p := range participants {
		byID[p.ID] = p
		keys := make(map[string]struct{})
		for _, attr := range policyAttributes {
			if attr.Key == "" {
				continue
			}
			for _, v := range attributeValues(p.Attributes, attr.Key) {
				keys[groupKey(attr.Key, truncate(v, attr.SignificantCharacters))] = struct{}{}
			}
		}
		for _, attr := range policyAttributes {
			if attr.Directive != "" && directiveMatches(attr.Directive, p.Type) {
				keys[groupKey(attr.Directive, p.ID)] = struct{}{}
			}
		}
		ownKeys[p.ID] = keys
		if p.IsComposite() {
			for _, memberID := range p.IndividualParticipantIDs {
				memberOf[memberID] = append(memberOf[memberID], p)
			}
		}
	}

	targets := targetParticipantIDs
	if len(targets) == 0 {
		targets = make([]string, 0, len(participants))
		for _, p := range participants {
			targets = append(targets, p.ID)
		}
	}

	seen := make(map[string]bool, len(targets))
	for _, id := range targets {
		if seen[id] {
			continue
		}
		seen[id] = true

		keys := make(map[string]struct{})
		for k := range ownKeys[id] {
			keys[k] = struct{}{}
		}
		for _, composite := range memberOf[id] {
			for k := range ownKeys[composite.ID] {
				keys[k] = struct{}{}
			}
		}
		if p, ok := byID[id]; ok && p.IsComposite() && inheritMemberValues {
			for _, memberID := range p.IndividualParticipantIDs {
				for k := range ownKeys[memberID] {
					keys[k] = struct{}{}
				}
			}
		}

		for k := range keys {
			groupings.Groups[k] = append(groupings.Groups[k], id)
			groupings.ParticipantIDGroups[id] = append(groupings.ParticipantIDGroups[id], k)
		}
	}

	for k := range groupings.Groups {
		sort.Strings(groupings.Groups[k])
	}
	for id := range groupings.ParticipantIDGroups {
		sort.Strings(groupings.ParticipantIDGroups[id])
	}
	return groupings
}

func groupKey(attribute, value string) string {
	return attribute + ":" + value
}

func directiveMatches(directive string, t models.ParticipantType) bool {
	switch directive {
	case models.DirectivePairParticipants:
		return t == models.ParticipantPair
	case models.DirectiveTeamParticipants:
		return t == models.ParticipantTeam
	case models.DirectiveGroupParticipants:
		return t == models.ParticipantGroup
	}
	return false
}

func truncate(value string, significantCharacters int) string {
	if significantCharacters <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= significantCharacters {
		return value
	}
	return string(runes[:significantCharacters])
}

// attributeValues resolves a dot separated path through nested maps. Slices
// along the path fan out, so every element contributes its values.
func attributeValues(attributes map[string]any, path string) []string {
	if attributes == nil || path == "" {
		return nil
	}
	return collectValues(attributes, strings.Split(path, "."))
}

func collectValues(node any, path []string) []string {
	switch v := node.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, collectValues(item, path)...)
		}
		return out
	case []string:
		if len(path) > 0 {
			return nil
		}
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		if len(path) == 0 {
			return nil
		}
		return collectValues(v[path[0]], path[1:])
	case string:
		if len(path) > 0 || v == "" {
			return nil
		}
		return []string{v}
	default:
		if len(path) > 0 {
			return nil
		}
		return []string{fmt.Sprint(v)}
	}
}
