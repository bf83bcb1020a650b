package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/Dosada05/tournament-draws/repositories"
	"github.com/stretchr/testify/require"
)

// memoryDrawRepository keeps draws in memory and hands out copies, so services
// only observe what they persisted.
type memoryDrawRepository struct {
	mu          sync.Mutex
	nextID      int
	draws       map[int]models.DrawDefinition
	structures  map[int][]models.Structure
	assignments map[int]map[string][]models.PositionAssignment
	replaceErr  error
	replaced    int
}

func newMemoryDrawRepository() *memoryDrawRepository {
	return &memoryDrawRepository{
		nextID:      1,
		draws:       make(map[int]models.DrawDefinition),
		structures:  make(map[int][]models.Structure),
		assignments: make(map[int]map[string][]models.PositionAssignment),
	}
}

func (r *memoryDrawRepository) Create(ctx context.Context, exec repositories.SQLExecutor, draw *models.DrawDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.draws {
		if d.DrawName == draw.DrawName {
			return repositories.ErrDrawNameConflict
		}
	}
	draw.DrawID = r.nextID
	r.nextID++
	r.draws[draw.DrawID] = models.DrawDefinition{DrawID: draw.DrawID, DrawName: draw.DrawName}
	r.assignments[draw.DrawID] = make(map[string][]models.PositionAssignment)
	return nil
}

func (r *memoryDrawRepository) CreateStructure(ctx context.Context, exec repositories.SQLExecutor, drawID int, structure *models.Structure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.draws[drawID]; !ok {
		return repositories.ErrDrawNotFound
	}
	s := *structure
	s.PositionAssignments = nil
	r.structures[drawID] = append(r.structures[drawID], s)
	r.assignments[drawID][structure.StructureID] = copyAssignments(structure.PositionAssignments)
	return nil
}

func (r *memoryDrawRepository) GetByID(ctx context.Context, id int) (*models.DrawDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok {
		return nil, repositories.ErrDrawNotFound
	}
	return &d, nil
}

func (r *memoryDrawRepository) ListStructures(ctx context.Context, drawID int) ([]models.Structure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Structure(nil), r.structures[drawID]...), nil
}

func (r *memoryDrawRepository) ListPositionAssignments(ctx context.Context, drawID int) (map[string][]models.PositionAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]models.PositionAssignment)
	for id, assignments := range r.assignments[drawID] {
		out[id] = copyAssignments(assignments)
	}
	return out, nil
}

func (r *memoryDrawRepository) ReplacePositionAssignments(ctx context.Context, exec repositories.SQLExecutor, drawID int, structureID string, assignments []models.PositionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.assignments[drawID][structureID] = copyAssignments(assignments)
	r.replaced++
	return nil
}

func (r *memoryDrawRepository) stored(drawID int, structureID string) []models.PositionAssignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAssignments(r.assignments[drawID][structureID])
}

func copyAssignments(in []models.PositionAssignment) []models.PositionAssignment {
	return append([]models.PositionAssignment(nil), in...)
}

type memoryParticipantRepository struct {
	mu           sync.Mutex
	participants map[int][]models.Participant
}

func newMemoryParticipantRepository() *memoryParticipantRepository {
	return &memoryParticipantRepository{participants: make(map[int][]models.Participant)}
}

func (r *memoryParticipantRepository) Create(ctx context.Context, exec repositories.SQLExecutor, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants[p.DrawID] {
		if existing.ID == p.ID {
			return repositories.ErrParticipantConflict
		}
	}
	r.participants[p.DrawID] = append(r.participants[p.DrawID], *p)
	return nil
}

func (r *memoryParticipantRepository) FindByID(ctx context.Context, drawID int, id string) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants[drawID] {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *memoryParticipantRepository) ListByDraw(ctx context.Context, drawID int) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Participant(nil), r.participants[drawID]...), nil
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	rooms    []string
	messages []brackets.WebSocketMessage
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rooms = append(b.rooms, roomID)
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		b.messages = append(b.messages, msg)
	}
}

type recordingArchiver struct {
	calls        int
	descriptions []string
	err          error
}

func (a *recordingArchiver) Archive(ctx context.Context, draw *models.DrawDefinition, structure *models.Structure, description string) (string, error) {
	a.calls++
	a.descriptions = append(a.descriptions, description)
	if a.err != nil {
		return "", a.err
	}
	return "https://archive.example.com/snapshot.json", nil
}

type drawFixture struct {
	mock         sqlmock.Sqlmock
	db           *sql.DB
	draws        *memoryDrawRepository
	participants *memoryParticipantRepository
	broadcaster  *recordingBroadcaster
	archiver     *recordingArchiver
	service      DrawService
}

func newDrawFixture(t *testing.T) *drawFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &drawFixture{
		mock:         mock,
		db:           db,
		draws:        newMemoryDrawRepository(),
		participants: newMemoryParticipantRepository(),
		broadcaster:  &recordingBroadcaster{},
		archiver:     &recordingArchiver{},
	}
	f.service = NewDrawService(db, f.draws, f.participants, f.archiver, f.broadcaster, PlacementConfig{
		DefaultCandidatesCount: 10,
		Workers:                2,
	}, nil)
	return f
}

// seedDraw stores an elimination draw directly in the repository.
func (f *drawFixture) seedDraw(t *testing.T, drawSize int, assignments map[int]string) int {
	t.Helper()
	structure, err := brackets.NewSingleEliminationGenerator().GenerateStructure(context.Background(), brackets.GenerateStructureParams{
		StructureID:   DefaultStructureID,
		StructureName: "Main",
		DrawSize:      drawSize,
	})
	require.NoError(t, err)
	for i := range structure.PositionAssignments {
		a := &structure.PositionAssignments[i]
		if id, ok := assignments[a.DrawPosition]; ok {
			if id == "BYE" {
				a.Bye = true
			} else {
				a.ParticipantID = id
			}
		}
	}

	draw := &models.DrawDefinition{DrawName: "Open"}
	require.NoError(t, f.draws.Create(context.Background(), nil, draw))
	require.NoError(t, f.draws.CreateStructure(context.Background(), nil, draw.DrawID, structure))
	return draw.DrawID
}

func (f *drawFixture) seedClubs(t *testing.T, drawID int, roster map[string]string) {
	t.Helper()
	for id, club := range roster {
		p := &models.Participant{ID: id, DrawID: drawID, Type: models.ParticipantIndividual}
		if club != "" {
			p.Attributes = map[string]any{"club": club}
		}
		require.NoError(t, f.participants.Create(context.Background(), nil, p))
	}
}

func (f *drawFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func clubPolicy() *models.AvoidancePolicy {
	return &models.AvoidancePolicy{PolicyAttributes: models.AttributeKeys("club")}
}

func placedIDs(assignments []models.PositionAssignment) map[string]int {
	out := make(map[string]int)
	for _, a := range assignments {
		if a.ParticipantID != "" {
			out[a.ParticipantID] = a.DrawPosition
		}
	}
	return out
}
