package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/lib/pq"
)

var (
	ErrDrawNotFound         = errors.New("draw not found")
	ErrDrawNameConflict     = errors.New("draw name already exists")
	ErrStructureNotFound    = errors.New("structure not found")
	ErrStructureConflict    = errors.New("structure already exists in draw")
	ErrPositionConflict     = errors.New("participant already holds a draw position in structure")
	ErrPositionByeViolation = errors.New("draw position cannot hold a participant and a bye")
)

type DrawRepository interface {
	Create(ctx context.Context, exec SQLExecutor, draw *models.DrawDefinition) error
	CreateStructure(ctx context.Context, exec SQLExecutor, drawID int, structure *models.Structure) error
	GetByID(ctx context.Context, id int) (*models.DrawDefinition, error)
	ListStructures(ctx context.Context, drawID int) ([]models.Structure, error)
	ListPositionAssignments(ctx context.Context, drawID int) (map[string][]models.PositionAssignment, error)
	ReplacePositionAssignments(ctx context.Context, exec SQLExecutor, drawID int, structureID string, assignments []models.PositionAssignment) error
}

type postgresDrawRepository struct {
	db *sql.DB
}

func NewPostgresDrawRepository(db *sql.DB) DrawRepository {
	return &postgresDrawRepository{db: db}
}

func (r *postgresDrawRepository) Create(ctx context.Context, exec SQLExecutor, draw *models.DrawDefinition) error {
	query := `INSERT INTO draws (name) VALUES ($1) RETURNING id, created_at`

	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, draw.DrawName).Scan(&draw.DrawID, &draw.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "draws_name_key" {
			return ErrDrawNameConflict
		}
		return fmt.Errorf("failed to create draw: %w", err)
	}
	return nil
}

func (r *postgresDrawRepository) CreateStructure(ctx context.Context, exec SQLExecutor, drawID int, structure *models.Structure) error {
	matchUps, err := json.Marshal(structure.MatchUps)
	if err != nil {
		return fmt.Errorf("failed to encode matchUps: %w", err)
	}
	pools, err := json.Marshal(structure.Pools)
	if err != nil {
		return fmt.Errorf("failed to encode pools: %w", err)
	}

	query := `
		INSERT INTO structures (id, draw_id, name, structure_type, draw_size, match_ups, pools)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	executor := getExecutor(r.db, exec)
	err = executor.QueryRowContext(ctx, query,
		structure.StructureID,
		drawID,
		structure.StructureName,
		structure.StructureType,
		structure.DrawSize,
		matchUps,
		pools,
	).Scan(&structure.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrStructureConflict
			case "23503": // foreign_key_violation
				return ErrDrawNotFound
			}
		}
		return fmt.Errorf("failed to create structure: %w", err)
	}
	structure.DrawID = drawID

	return r.ReplacePositionAssignments(ctx, executor, drawID, structure.StructureID, structure.PositionAssignments)
}

func (r *postgresDrawRepository) GetByID(ctx context.Context, id int) (*models.DrawDefinition, error) {
	query := `SELECT id, name, created_at FROM draws WHERE id = $1`

	draw := &models.DrawDefinition{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&draw.DrawID, &draw.DrawName, &draw.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw by id %d: %w", id, err)
	}
	return draw, nil
}

func (r *postgresDrawRepository) ListStructures(ctx context.Context, drawID int) ([]models.Structure, error) {
	query := `
		SELECT id, draw_id, name, structure_type, draw_size, match_ups, pools, created_at
		FROM structures
		WHERE draw_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list structures for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	structures := make([]models.Structure, 0)
	for rows.Next() {
		var s models.Structure
		var matchUps, pools []byte
		if err := rows.Scan(&s.StructureID, &s.DrawID, &s.StructureName, &s.StructureType, &s.DrawSize, &matchUps, &pools, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan structure row: %w", err)
		}
		if err := json.Unmarshal(matchUps, &s.MatchUps); err != nil {
			return nil, fmt.Errorf("failed to decode matchUps of structure %s: %w", s.StructureID, err)
		}
		if err := json.Unmarshal(pools, &s.Pools); err != nil {
			return nil, fmt.Errorf("failed to decode pools of structure %s: %w", s.StructureID, err)
		}
		structures = append(structures, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating structure rows: %w", err)
	}
	return structures, nil
}

func (r *postgresDrawRepository) ListPositionAssignments(ctx context.Context, drawID int) (map[string][]models.PositionAssignment, error) {
	query := `
		SELECT structure_id, draw_position, participant_id, bye
		FROM position_assignments
		WHERE draw_id = $1
		ORDER BY structure_id, draw_position`

	rows, err := r.db.QueryContext(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list position assignments for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	byStructure := make(map[string][]models.PositionAssignment)
	for rows.Next() {
		var structureID string
		var participantID sql.NullString
		var a models.PositionAssignment
		if err := rows.Scan(&structureID, &a.DrawPosition, &participantID, &a.Bye); err != nil {
			return nil, fmt.Errorf("failed to scan position assignment row: %w", err)
		}
		a.ParticipantID = participantID.String
		byStructure[structureID] = append(byStructure[structureID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position assignment rows: %w", err)
	}
	return byStructure, nil
}

// ReplacePositionAssignments overwrites every stored assignment of a structure.
// Callers should pass a transaction so readers never see the structure empty.
func (r *postgresDrawRepository) ReplacePositionAssignments(ctx context.Context, exec SQLExecutor, drawID int, structureID string, assignments []models.PositionAssignment) error {
	executor := getExecutor(r.db, exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM position_assignments WHERE draw_id = $1 AND structure_id = $2`,
		drawID, structureID,
	); err != nil {
		return fmt.Errorf("failed to clear position assignments of structure %s: %w", structureID, err)
	}
	if len(assignments) == 0 {
		return nil
	}

	positions := make([]int64, len(assignments))
	participants := make([]string, len(assignments))
	byes := make([]bool, len(assignments))
	for i, a := range assignments {
		positions[i] = int64(a.DrawPosition)
		participants[i] = a.ParticipantID
		byes[i] = a.Bye
	}

	query := `
		INSERT INTO position_assignments (draw_id, structure_id, draw_position, participant_id, bye)
		SELECT $1, $2, a.draw_position, NULLIF(a.participant_id, ''), a.bye
		FROM unnest($3::int[], $4::text[], $5::bool[]) AS a(draw_position, participant_id, bye)`

	_, err := executor.ExecContext(ctx, query, drawID, structureID, pq.Array(positions), pq.Array(participants), pq.Array(byes))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrPositionConflict
			case "23503":
				return ErrStructureNotFound
			case "23514":
				if pqErr.Constraint == "chk_bye_or_participant" {
					return ErrPositionByeViolation
				}
			}
		}
		return fmt.Errorf("failed to store position assignments of structure %s: %w", structureID, err)
	}
	return nil
}
