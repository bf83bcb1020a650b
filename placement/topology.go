package placement

import (
	"math/bits"
	"sort"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
)

// FedPositionPolicy decides how positions entering after round one (qualifier
// or feed-in positions) take part in chunk computation.
type FedPositionPolicy int

const (
	// FedPositionsOwnChunk appends the fed positions as one extra chunk to
	// every level, so they are placeable but never count as separated from
	// each other.
	FedPositionsOwnChunk FedPositionPolicy = iota
	// FedPositionsExcluded leaves fed positions out of every chunk; they are
	// never targeted by automated placement.
	FedPositionsExcluded
)

type ChunkParams struct {
	RoundsToSeparate *int
	TargetDivisions  *int
	FedPositions     FedPositionPolicy
}

// Topology is the separation hierarchy of a structure.
//
// DrawPositionGroups are the finest groupings: head-to-head pairs for
// elimination structures, whole pools for round robin. DrawPositionChunks is
// ordered coarsest level first; every chunk of a finer level is a subset of a
// chunk of each coarser level.
type Topology struct {
	DrawPositionGroups [][]int
	DrawPositionChunks [][][]int
	FedPositions       []int
	RoundRobin         bool

	groupIndex map[int]int
}

// BuildChunks derives the topology from the structure's matchUps (elimination)
// or pools (round robin).
func BuildChunks(structure *models.Structure, params ChunkParams) *Topology {
	var topo *Topology
	if structure.IsRoundRobin() {
		topo = roundRobinChunks(structure)
	} else {
		topo = eliminationChunks(structure, params)
	}
	topo.index()
	return topo
}

func roundRobinChunks(structure *models.Structure) *Topology {
	pools := make([][]int, 0, len(structure.Pools))
	for _, pool := range structure.Pools {
		if len(pool.DrawPositions) == 0 {
			continue
		}
		positions := append([]int(nil), pool.DrawPositions...)
		sort.Ints(positions)
		pools = append(pools, positions)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i][0] < pools[j][0] })
	return &Topology{
		DrawPositionGroups: pools,
		DrawPositionChunks: [][][]int{pools},
		RoundRobin:         true,
	}
}

func eliminationChunks(structure *models.Structure, params ChunkParams) *Topology {
	firstRound := make(map[int]bool)
	var pairs [][]int
	var later []int
	for _, mu := range brackets.GetAllStructureMatchUps(structure) {
		if mu.RoundNumber == 1 && !mu.FeedRound {
			pair := append([]int(nil), mu.DrawPositions...)
			if len(pair) == 0 {
				continue
			}
			sort.Ints(pair)
			pairs = append(pairs, pair)
			for _, dp := range pair {
				firstRound[dp] = true
			}
			continue
		}
		later = append(later, mu.DrawPositions...)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })

	fedSeen := make(map[int]bool)
	var fed []int
	for _, dp := range later {
		if !firstRound[dp] && !fedSeen[dp] {
			fedSeen[dp] = true
			fed = append(fed, dp)
		}
	}
	sort.Ints(fed)

	positions := make([]int, 0, 2*len(pairs))
	for _, pair := range pairs {
		positions = append(positions, pair...)
	}

	topo := &Topology{DrawPositionGroups: pairs, FedPositions: fed}
	if len(positions) == 0 {
		return topo
	}

	for _, size := range chunkSizes(len(positions), params) {
		level := make([][]int, 0, len(positions)/size+1)
		for start := 0; start < len(positions); start += size {
			end := start + size
			if end > len(positions) {
				end = len(positions)
			}
			level = append(level, positions[start:end:end])
		}
		topo.DrawPositionChunks = append(topo.DrawPositionChunks, level)
	}

	if len(fed) > 0 && params.FedPositions == FedPositionsOwnChunk {
		for i := range topo.DrawPositionChunks {
			topo.DrawPositionChunks[i] = append(topo.DrawPositionChunks[i], fed)
		}
		for _, dp := range fed {
			topo.DrawPositionGroups = append(topo.DrawPositionGroups, []int{dp})
		}
	}
	return topo
}

// chunkSizes returns block sizes, coarsest first: 2^rounds down to 2.
func chunkSizes(positionCount int, params ChunkParams) []int {
	maxRounds := bits.Len(uint(positionCount - 1))
	if maxRounds < 1 {
		maxRounds = 1
	}

	rounds := maxRounds
	switch {
	case params.RoundsToSeparate != nil && *params.RoundsToSeparate >= 1:
		rounds = min(*params.RoundsToSeparate, maxRounds)
	case params.TargetDivisions != nil && *params.TargetDivisions >= 1:
		divisions := nearestPowerOfTwo(*params.TargetDivisions)
		blockSize := max((1<<maxRounds)/divisions, 2)
		rounds = bits.Len(uint(blockSize)) - 1
	}

	sizes := make([]int, 0, rounds)
	for k := rounds; k >= 1; k-- {
		sizes = append(sizes, 1<<k)
	}
	return sizes
}

// nearestPowerOfTwo returns the power of two closest to n. Ties go to the
// higher power, so 12 yields 16.
func nearestPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	lo := 1 << (bits.Len(uint(n)) - 1)
	hi := lo << 1
	if n-lo < hi-n {
		return lo
	}
	return hi
}

func (t *Topology) index() {
	t.groupIndex = make(map[int]int)
	for i, group := range t.DrawPositionGroups {
		for _, dp := range group {
			t.groupIndex[dp] = i
		}
	}
}

// GroupOf returns the index into DrawPositionGroups holding drawPosition.
func (t *Topology) GroupOf(drawPosition int) (int, bool) {
	i, ok := t.groupIndex[drawPosition]
	return i, ok
}

// Positions returns every draw position covered by the chunk hierarchy, ascending.
func (t *Topology) Positions() []int {
	if len(t.DrawPositionChunks) == 0 {
		return nil
	}
	var positions []int
	for _, chunk := range t.DrawPositionChunks[0] {
		positions = append(positions, chunk...)
	}
	sort.Ints(positions)
	return positions
}

// MaxGroupSize is 2 for elimination structures and the largest pool size for round robin.
func (t *Topology) MaxGroupSize() int {
	size := 0
	for _, group := range t.DrawPositionGroups {
		size = max(size, len(group))
	}
	return size
}
