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
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrParticipantConflict    = errors.New("participant conflict: id already registered for this draw")
	ErrParticipantDrawInvalid = errors.New("participant draw conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	FindByID(ctx context.Context, drawID int, id string) (*models.Participant, error)
	ListByDraw(ctx context.Context, drawID int) ([]models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	attributes, err := json.Marshal(p.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode participant attributes: %w", err)
	}
	members := p.IndividualParticipantIDs
	if members == nil {
		members = []string{}
	}

	query := `
		INSERT INTO participants (id, draw_id, name, participant_type, individual_participant_ids, attributes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = getExecutor(r.db, exec).QueryRowContext(ctx, query,
		p.ID,
		p.DrawID,
		p.Name,
		p.Type,
		pq.Array(members),
		attributes,
	).Scan(&p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				return ErrParticipantConflict
			case "23503": // foreign_key_violation
				return ErrParticipantDrawInvalid
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	var attributes []byte
	err := rowScanner.Scan(
		&p.ID,
		&p.DrawID,
		&p.Name,
		&p.Type,
		pq.Array(&p.IndividualParticipantIDs),
		&attributes,
		&p.CreatedAt,
	)
	if err != nil {
		return err
	}
	if len(attributes) > 0 && string(attributes) != "null" {
		if err := json.Unmarshal(attributes, &p.Attributes); err != nil {
			return fmt.Errorf("failed to decode attributes of participant %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) FindByID(ctx context.Context, drawID int, id string) (*models.Participant, error) {
	query := `
		SELECT id, draw_id, name, participant_type, individual_participant_ids, attributes, created_at
		FROM participants
		WHERE draw_id = $1 AND id = $2`

	p := &models.Participant{}
	if err := r.scanParticipant(r.db.QueryRowContext(ctx, query, drawID, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByDraw(ctx context.Context, drawID int) ([]models.Participant, error) {
	query := `
		SELECT id, draw_id, name, participant_type, individual_participant_ids, attributes, created_at
		FROM participants
		WHERE draw_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if err := r.scanParticipant(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}
