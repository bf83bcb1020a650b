package placement

import (
	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
)

// Commit writes the assignments the candidate added on top of initial into
// target: participants through AssignDrawPosition, byes through
// AssignDrawPositionBye. Participants or positions taken in target since the
// candidate was generated are skipped.
//
// Every write is first replayed on a scratch PositionStore built from target's
// assignments; target is only touched when all of them succeed. That leaves a
// failed commit unchanged only when target validates like a PositionStore. If
// target still rejects a write, the returned count is the number of writes
// that landed before the failure.
func Commit(candidate *Candidate, initial []models.PositionAssignment, target WorkingStore) (int, error) {
	current := target.PositionAssignments()
	writes := pendingWrites(candidate.PositionAssignments, initial, current)

	scratch := brackets.NewPositionStore(current)
	if _, err := applyWrites(scratch, writes); err != nil {
		return 0, err
	}
	return applyWrites(target, writes)
}

func pendingWrites(candidate, initial, current []models.PositionAssignment) []models.PositionAssignment {
	before := occupancyOf(initial)
	now := occupancyOf(current)

	writes := make([]models.PositionAssignment, 0)
	for _, a := range candidate {
		if !a.Filled() || before.filled(a.DrawPosition) {
			continue
		}
		if now.filled(a.DrawPosition) {
			continue
		}
		if a.ParticipantID != "" {
			if _, placed := now.placed[a.ParticipantID]; placed {
				continue
			}
		}
		writes = append(writes, a)
	}
	return writes
}

func applyWrites(store WorkingStore, writes []models.PositionAssignment) (int, error) {
	for i, a := range writes {
		var err error
		if a.Bye {
			err = store.AssignDrawPositionBye(a.DrawPosition)
		} else {
			err = store.AssignDrawPosition(a.DrawPosition, a.ParticipantID)
		}
		if err != nil {
			return i, &AssignmentError{Assignment: a, Err: err}
		}
	}
	return len(writes), nil
}
