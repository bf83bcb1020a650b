package placement

import (
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-draws/models"
	"golang.org/x/sync/errgroup"
)

const DefaultCandidatesCount = 20

// Options tune the engine. The zero value is usable.
type Options struct {
	// Random breaks ties. Inject a seeded source for reproducible placements.
	Random RandomSource
	// Workers bounds concurrent candidate generation; <= 1 generates sequentially.
	Workers int
	Logger  *slog.Logger
	// FedPositions controls how positions fed in after round one are chunked.
	FedPositions FedPositionPolicy
	// ResolveSwaps applies conflict-reducing swaps to the winning candidate.
	ResolveSwaps  bool
	MaxSwapPasses int
	// NewWorkingStore builds the per-candidate copy of the position store.
	NewWorkingStore func([]models.PositionAssignment) WorkingStore
}

func (o Options) withDefaults() Options {
	if o.Random == nil {
		o.Random = globalRandom
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxSwapPasses <= 0 {
		o.MaxSwapPasses = 8
	}
	if o.NewWorkingStore == nil {
		o.NewWorkingStore = newPositionStore
	}
	return o
}

type SelectParams struct {
	UnplacedParticipantIDs []string
	InitialAssignments     []models.PositionAssignment
	ByePositions           []int
	Groupings              *Groupings
	Topology               *Topology
	CandidatesCount        int
}

// SelectBest runs CandidatesCount generations preferring unpaired positions
// and, if the best of them still has conflicts or none succeeded, as many
// again preferring paired positions. The lowest-conflict error-free candidate
// of the pooled results wins. On ErrNoCandidates the lowest-conflict failed
// attempt is returned alongside the error.
func SelectBest(params SelectParams, opts Options) (*Candidate, error) {
	opts = opts.withDefaults()

	if open := countOpenPositions(params); len(params.UnplacedParticipantIDs) > open {
		return nil, fmt.Errorf("%w: %d participants to place, %d open positions",
			ErrInsufficientDrawPositions, len(params.UnplacedParticipantIDs), open)
	}

	count := max(params.CandidatesCount, 1)

	candidates := generateCandidates(params, false, count, opts)
	best := bestCandidate(candidates)
	if best == nil || best.ConflictCount() > 0 {
		candidates = append(candidates, generateCandidates(params, true, count, opts)...)
		best = bestCandidate(candidates)
	}

	if best == nil {
		return bestAttempt(candidates), ErrNoCandidates
	}

	opts.Logger.Debug("placement candidate selected",
		slog.Int("candidates", len(candidates)),
		slog.Int("conflicts", best.ConflictCount()),
		slog.Bool("paired_priority", best.PairedPriority))
	return best, nil
}

func generateCandidates(params SelectParams, pairedPriority bool, count int, opts Options) []*Candidate {
	candidates := make([]*Candidate, count)
	gen := func(i int, rng RandomSource) {
		candidates[i] = GenerateCandidate(GenerateParams{
			UnplacedParticipantIDs: params.UnplacedParticipantIDs,
			InitialAssignments:     params.InitialAssignments,
			ByePositions:           params.ByePositions,
			Groupings:              params.Groupings,
			Topology:               params.Topology,
			PairedPriority:         pairedPriority,
			Random:                 rng,
			NewWorkingStore:        opts.NewWorkingStore,
		})
	}

	if opts.Workers <= 1 {
		for i := range candidates {
			gen(i, opts.Random)
		}
		return candidates
	}

	// sources are derived up front so results do not depend on scheduling
	sources := make([]RandomSource, count)
	for i := range sources {
		sources[i] = childSource(opts.Random)
	}

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range candidates {
		g.Go(func() error {
			gen(i, sources[i])
			return nil
		})
	}
	_ = g.Wait()
	return candidates
}

func bestCandidate(candidates []*Candidate) *Candidate {
	var best *Candidate
	for _, c := range candidates {
		if c == nil || c.Failed() {
			continue
		}
		if best == nil || c.ConflictCount() < best.ConflictCount() {
			best = c
		}
	}
	return best
}

func bestAttempt(candidates []*Candidate) *Candidate {
	var best *Candidate
	for _, c := range candidates {
		if c != nil && (best == nil || c.ConflictCount() < best.ConflictCount()) {
			best = c
		}
	}
	return best
}

func countOpenPositions(params SelectParams) int {
	byes := make(map[int]bool, len(params.ByePositions))
	for _, dp := range params.ByePositions {
		byes[dp] = true
	}
	o := occupancyOf(params.InitialAssignments)
	open := 0
	for _, dp := range params.Topology.Positions() {
		if !o.filled(dp) && !byes[dp] {
			open++
		}
	}
	return open
}
