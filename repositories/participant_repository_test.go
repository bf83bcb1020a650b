package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var participantColumns = []string{"id", "draw_id", "name", "participant_type", "individual_participant_ids", "attributes", "created_at"}

func TestParticipantRepository_Create(t *testing.T) {
	t.Run("stores members and attributes", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresParticipantRepository(db)

		mock.ExpectQuery(`INSERT INTO participants`).
			WithArgs("pair-1", 2, "Smith / Jones", "PAIR", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		p := &models.Participant{
			ID:                       "pair-1",
			DrawID:                   2,
			Name:                     "Smith / Jones",
			Type:                     models.ParticipantPair,
			IndividualParticipantIDs: []string{"smith", "jones"},
			Attributes:               map[string]any{"club": "Leeds"},
		}
		require.NoError(t, repo.Create(context.Background(), nil, p))
		require.False(t, p.CreatedAt.IsZero())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate ids", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresParticipantRepository(db)

		mock.ExpectQuery(`INSERT INTO participants`).WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), nil, &models.Participant{ID: "p1", DrawID: 2, Type: models.ParticipantIndividual})
		require.ErrorIs(t, err, ErrParticipantConflict)
	})

	t.Run("maps unknown draws", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresParticipantRepository(db)

		mock.ExpectQuery(`INSERT INTO participants`).WillReturnError(&pq.Error{Code: "23503"})

		err := repo.Create(context.Background(), nil, &models.Participant{ID: "p1", DrawID: 99, Type: models.ParticipantIndividual})
		require.ErrorIs(t, err, ErrParticipantDrawInvalid)
	})
}

func TestParticipantRepository_ListByDraw(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)

	mock.ExpectQuery(`FROM participants`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(participantColumns).
			AddRow("smith", 2, "Smith", "INDIVIDUAL", "{}", []byte(`{"club":"Leeds","person":{"nationality":"GBR"}}`), time.Now()).
			AddRow("pair-1", 2, "Smith / Jones", "PAIR", "{smith,jones}", []byte(`{}`), time.Now()))

	participants, err := repo.ListByDraw(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	require.Equal(t, "Leeds", participants[0].Attributes["club"])
	require.Equal(t, []string{"smith", "jones"}, participants[1].IndividualParticipantIDs)
	require.True(t, participants[1].IsComposite())
}

func TestParticipantRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)

	mock.ExpectQuery(`FROM participants`).
		WithArgs(2, "ghost").
		WillReturnRows(sqlmock.NewRows(participantColumns))

	_, err := repo.FindByID(context.Background(), 2, "ghost")
	require.ErrorIs(t, err, ErrParticipantNotFound)
}
