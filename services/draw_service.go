package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/placement"
	"github.com/Dosada05/tournament-draws/repositories"
	"golang.org/x/sync/errgroup"
)

const DefaultStructureID = "main"

type DrawService interface {
	CreateDraw(ctx context.Context, input CreateDrawInput) (*models.DrawDefinition, error)
	GetDraw(ctx context.Context, drawID int) (*models.DrawDefinition, error)
	AutomatePositions(ctx context.Context, drawID int, structureID string, input AutomatePositionsInput) (*placement.Result, error)
	AssignPosition(ctx context.Context, drawID int, structureID string, drawPosition int, input AssignPositionInput) (*models.Structure, error)
	ClearPosition(ctx context.Context, drawID int, structureID string, drawPosition int) (*models.Structure, error)
	GetConflicts(ctx context.Context, drawID int, structureID string, policy *models.AvoidancePolicy) (*ConflictReport, error)
	GetSwapOptions(ctx context.Context, drawID int, structureID string, policy *models.AvoidancePolicy) ([]placement.SwapProposal, error)
	ApplySwap(ctx context.Context, drawID int, structureID string, input ApplySwapInput) (*models.Structure, error)
}

type CreateDrawInput struct {
	DrawName      string               `json:"draw_name"`
	StructureID   string               `json:"structure_id,omitempty"`
	StructureName string               `json:"structure_name,omitempty"`
	StructureType models.StructureType `json:"structure_type"`
	DrawSize      int                  `json:"draw_size"`
	PoolSize      int                  `json:"pool_size,omitempty"`
	Legs          int                  `json:"legs,omitempty"`
	FeedPositions int                  `json:"feed_positions,omitempty"`
}

type AutomatePositionsInput struct {
	UnseededParticipantIDs []string                `json:"unseeded_participant_ids"`
	UnseededByePositions   []int                   `json:"unseeded_bye_positions,omitempty"`
	Policy                 *models.AvoidancePolicy `json:"policy"`
	ResolveSwaps           bool                    `json:"resolve_swaps,omitempty"`
	ExcludeFedPositions    bool                    `json:"exclude_fed_positions,omitempty"`
}

type AssignPositionInput struct {
	ParticipantID string `json:"participant_id,omitempty"`
	Bye           bool   `json:"bye,omitempty"`
}

type ApplySwapInput struct {
	Policy        *models.AvoidancePolicy `json:"policy"`
	DrawPositions [2]int                  `json:"draw_positions"`
}

type ConflictReport struct {
	Conflicts     []placement.Conflict `json:"conflicts"`
	ConflictCount int                  `json:"conflict_count"`
}

// SnapshotArchiver stores a copy of a committed structure outside the database.
type SnapshotArchiver interface {
	Archive(ctx context.Context, draw *models.DrawDefinition, structure *models.Structure, description string) (string, error)
}

type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type PlacementConfig struct {
	DefaultCandidatesCount int
	Workers                int
	// Random overrides the tie-break source; nil uses the shared generator.
	Random placement.RandomSource
}

type drawService struct {
	db              *sql.DB
	drawRepo        repositories.DrawRepository
	participantRepo repositories.ParticipantRepository
	archiver        SnapshotArchiver
	broadcaster     Broadcaster
	placement       PlacementConfig
	logger          *slog.Logger

	locksMu sync.Mutex
	locks   map[int]*sync.Mutex
}

func NewDrawService(
	db *sql.DB,
	drawRepo repositories.DrawRepository,
	participantRepo repositories.ParticipantRepository,
	archiver SnapshotArchiver,
	broadcaster Broadcaster,
	placementCfg PlacementConfig,
	logger *slog.Logger,
) DrawService {
	if logger == nil {
		logger = slog.Default()
	}
	return &drawService{
		db:              db,
		drawRepo:        drawRepo,
		participantRepo: participantRepo,
		archiver:        archiver,
		broadcaster:     broadcaster,
		placement:       placementCfg,
		logger:          logger,
		locks:           make(map[int]*sync.Mutex),
	}
}

// lockDraw serializes read-modify-write cycles on one draw.
func (s *drawService) lockDraw(drawID int) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[drawID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[drawID] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *drawService) CreateDraw(ctx context.Context, input CreateDrawInput) (*models.DrawDefinition, error) {
	input.DrawName = strings.TrimSpace(input.DrawName)
	if input.DrawName == "" {
		return nil, fmt.Errorf("%w: draw name is required", ErrValidationFailed)
	}
	if input.StructureID == "" {
		input.StructureID = DefaultStructureID
	}
	if input.StructureName == "" {
		input.StructureName = strings.ToUpper(input.StructureID)
	}

	generator, err := brackets.GeneratorFor(input.StructureType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	structure, err := generator.GenerateStructure(ctx, brackets.GenerateStructureParams{
		StructureID:   input.StructureID,
		StructureName: input.StructureName,
		DrawSize:      input.DrawSize,
		PoolSize:      input.PoolSize,
		Legs:          input.Legs,
		FeedPositions: input.FeedPositions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	draw := &models.DrawDefinition{DrawName: input.DrawName}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.drawRepo.Create(ctx, tx, draw); err != nil {
			return err
		}
		structure.DrawID = draw.DrawID
		return s.drawRepo.CreateStructure(ctx, tx, draw.DrawID, structure)
	})
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	draw.Structures = []models.Structure{*structure}

	s.logger.Info("draw created",
		slog.Int("draw_id", draw.DrawID),
		slog.String("generator", generator.GetName()),
		slog.Int("draw_size", structure.DrawSize))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToRoom(brackets.DrawRoom(draw.DrawID), brackets.WebSocketMessage{
			Type:    brackets.MessageDrawCreated,
			Payload: draw,
		})
	}
	return draw, nil
}

func (s *drawService) GetDraw(ctx context.Context, drawID int) (*models.DrawDefinition, error) {
	var (
		draw        *models.DrawDefinition
		structures  []models.Structure
		assignments map[string][]models.PositionAssignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		draw, err = s.drawRepo.GetByID(gctx, drawID)
		return err
	})
	g.Go(func() error {
		var err error
		structures, err = s.drawRepo.ListStructures(gctx, drawID)
		return err
	})
	g.Go(func() error {
		var err error
		assignments, err = s.drawRepo.ListPositionAssignments(gctx, drawID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, translateRepositoryError(err)
	}

	for i := range structures {
		stored := assignments[structures[i].StructureID]
		sort.Slice(stored, func(a, b int) bool { return stored[a].DrawPosition < stored[b].DrawPosition })
		structures[i].PositionAssignments = stored
	}
	draw.Structures = structures
	return draw, nil
}

func (s *drawService) AutomatePositions(ctx context.Context, drawID int, structureID string, input AutomatePositionsInput) (*placement.Result, error) {
	if input.Policy == nil {
		return nil, placement.ErrMissingAvoidancePolicy
	}
	if len(input.UnseededParticipantIDs) == 0 {
		return nil, fmt.Errorf("%w: unseeded participant ids are required", ErrValidationFailed)
	}

	unlock := s.lockDraw(drawID)
	defer unlock()

	draw, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	if err := requireParticipants(participants, input.UnseededParticipantIDs); err != nil {
		return nil, err
	}

	policy := *input.Policy
	if policy.CandidatesCount <= 0 {
		policy.CandidatesCount = s.placement.DefaultCandidatesCount
	}

	opts := s.placementOptions()
	opts.ResolveSwaps = input.ResolveSwaps
	if input.ExcludeFedPositions {
		opts.FedPositions = placement.FedPositionsExcluded
	}

	result, err := placement.PositionUnseededParticipants(placement.Request{
		DrawDefinition:         draw,
		StructureID:            structureID,
		UnseededParticipantIDs: input.UnseededParticipantIDs,
		Participants:           participants,
		Policy:                 &policy,
		UnseededByePositions:   input.UnseededByePositions,
	}, opts)
	if err != nil {
		if placement.ErrorCode(err) != "" {
			return result, err
		}
		return result, translateRepositoryError(err)
	}

	structure, err := s.persistStructure(ctx, draw, structureID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("unseeded participants positioned",
		slog.Int("draw_id", drawID),
		slog.String("structure_id", structureID),
		slog.Int("committed", result.Committed),
		slog.Int("conflicts", result.ConflictCount),
		slog.Int("swaps_applied", result.SwapsApplied))

	s.archive(ctx, draw, structure, "automated positioning")
	s.broadcastPositions(drawID, structure)
	return result, nil
}

func (s *drawService) AssignPosition(ctx context.Context, drawID int, structureID string, drawPosition int, input AssignPositionInput) (*models.Structure, error) {
	if input.Bye == (input.ParticipantID != "") {
		return nil, fmt.Errorf("%w: exactly one of participant_id or bye is required", ErrValidationFailed)
	}

	unlock := s.lockDraw(drawID)
	defer unlock()

	draw, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}

	if input.Bye {
		_, err = brackets.AssignDrawPositionBye(draw, structureID, drawPosition)
	} else {
		if _, err := s.participantRepo.FindByID(ctx, drawID, input.ParticipantID); err != nil {
			return nil, translateRepositoryError(err)
		}
		_, err = brackets.AssignDrawPosition(draw, structureID, drawPosition, input.ParticipantID)
	}
	if err != nil {
		return nil, translateRepositoryError(err)
	}

	structure, err := s.persistStructure(ctx, draw, structureID)
	if err != nil {
		return nil, err
	}
	s.broadcastPositions(drawID, structure)
	return structure, nil
}

func (s *drawService) ClearPosition(ctx context.Context, drawID int, structureID string, drawPosition int) (*models.Structure, error) {
	unlock := s.lockDraw(drawID)
	defer unlock()

	draw, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if _, err := brackets.RemoveDrawPositionAssignment(draw, structureID, drawPosition); err != nil {
		return nil, translateRepositoryError(err)
	}

	structure, err := s.persistStructure(ctx, draw, structureID)
	if err != nil {
		return nil, err
	}
	s.broadcastPositions(drawID, structure)
	return structure, nil
}

func (s *drawService) GetConflicts(ctx context.Context, drawID int, structureID string, policy *models.AvoidancePolicy) (*ConflictReport, error) {
	structure, participants, err := s.loadStructure(ctx, drawID, structureID)
	if err != nil {
		return nil, err
	}
	conflicts, err := placement.ScoreAssignments(structure, participants, policy, s.placementOptions())
	if err != nil {
		return nil, err
	}
	if conflicts == nil {
		conflicts = []placement.Conflict{}
	}
	return &ConflictReport{Conflicts: conflicts, ConflictCount: len(conflicts)}, nil
}

func (s *drawService) GetSwapOptions(ctx context.Context, drawID int, structureID string, policy *models.AvoidancePolicy) ([]placement.SwapProposal, error) {
	structure, participants, err := s.loadStructure(ctx, drawID, structureID)
	if err != nil {
		return nil, err
	}
	return placement.StructureSwapOptions(structure, participants, policy, s.placementOptions())
}

func (s *drawService) ApplySwap(ctx context.Context, drawID int, structureID string, input ApplySwapInput) (*models.Structure, error) {
	unlock := s.lockDraw(drawID)
	defer unlock()

	draw, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}
	structure, err := brackets.FindStructure(draw, structureID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	participants, err := s.participantRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}

	proposals, err := placement.StructureSwapOptions(structure, participants, input.Policy, s.placementOptions())
	if err != nil {
		return nil, err
	}
	proposal, ok := matchSwap(proposals, input.DrawPositions)
	if !ok {
		return nil, fmt.Errorf("%w: draw positions %d and %d", ErrSwapNotAvailable, input.DrawPositions[0], input.DrawPositions[1])
	}

	if err := placement.ApplySwap(brackets.NewStructureTarget(draw, structureID), proposal); err != nil {
		return nil, err
	}

	updated, err := s.persistStructure(ctx, draw, structureID)
	if err != nil {
		return nil, err
	}
	s.archive(ctx, draw, updated, fmt.Sprintf("swap %d/%d", proposal.DrawPositions[0], proposal.DrawPositions[1]))
	s.broadcastPositions(drawID, updated)
	return updated, nil
}

func (s *drawService) placementOptions() placement.Options {
	return placement.Options{
		Random:  s.placement.Random,
		Workers: s.placement.Workers,
		Logger:  s.logger,
	}
}

func (s *drawService) loadStructure(ctx context.Context, drawID int, structureID string) (*models.Structure, []models.Participant, error) {
	draw, err := s.GetDraw(ctx, drawID)
	if err != nil {
		return nil, nil, err
	}
	structure, err := brackets.FindStructure(draw, structureID)
	if err != nil {
		return nil, nil, translateRepositoryError(err)
	}
	participants, err := s.participantRepo.ListByDraw(ctx, drawID)
	if err != nil {
		return nil, nil, translateRepositoryError(err)
	}
	return structure, participants, nil
}

// persistStructure stores the in-memory assignments of one structure.
func (s *drawService) persistStructure(ctx context.Context, draw *models.DrawDefinition, structureID string) (*models.Structure, error) {
	structure, err := brackets.FindStructure(draw, structureID)
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		return s.drawRepo.ReplacePositionAssignments(ctx, tx, draw.DrawID, structureID, structure.PositionAssignments)
	})
	if err != nil {
		return nil, translateRepositoryError(err)
	}
	return structure, nil
}

func (s *drawService) archive(ctx context.Context, draw *models.DrawDefinition, structure *models.Structure, description string) {
	if s.archiver == nil {
		return
	}
	location, err := s.archiver.Archive(ctx, draw, structure, description)
	if err != nil {
		s.logger.Warn("failed to archive draw snapshot",
			slog.Int("draw_id", draw.DrawID),
			slog.String("structure_id", structure.StructureID),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("draw snapshot archived", slog.String("location", location))
}

func (s *drawService) broadcastPositions(drawID int, structure *models.Structure) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToRoom(brackets.DrawRoom(drawID), brackets.WebSocketMessage{
		Type: brackets.MessageDrawPositionsUpdated,
		Payload: map[string]interface{}{
			"draw_id":              drawID,
			"structure_id":         structure.StructureID,
			"position_assignments": structure.PositionAssignments,
		},
	})
}

func requireParticipants(participants []models.Participant, ids []string) error {
	known := make(map[string]bool, len(participants))
	for _, p := range participants {
		known[p.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrParticipantNotFound, strings.Join(missing, ", "))
	}
	return nil
}

func matchSwap(proposals []placement.SwapProposal, positions [2]int) (placement.SwapProposal, bool) {
	for _, p := range proposals {
		if (p.DrawPositions[0] == positions[0] && p.DrawPositions[1] == positions[1]) ||
			(p.DrawPositions[0] == positions[1] && p.DrawPositions[1] == positions[0]) {
			return p, true
		}
	}
	return placement.SwapProposal{}, false
}
