package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-draws/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestDrawRepository_Create(t *testing.T) {
	t.Run("returns the generated id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)
		created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO draws (name) VALUES ($1) RETURNING id, created_at`)).
			WithArgs("Open Singles").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

		draw := &models.DrawDefinition{DrawName: "Open Singles"}
		require.NoError(t, repo.Create(context.Background(), nil, draw))
		require.Equal(t, 7, draw.DrawID)
		require.Equal(t, created, draw.CreatedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps duplicate names", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)

		mock.ExpectQuery(`INSERT INTO draws`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "draws_name_key"})

		err := repo.Create(context.Background(), nil, &models.DrawDefinition{DrawName: "Open Singles"})
		require.ErrorIs(t, err, ErrDrawNameConflict)
	})
}

func TestDrawRepository_CreateStructure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDrawRepository(db)

	structure := &models.Structure{
		StructureID:   "main",
		StructureName: "Main",
		StructureType: models.StructureElimination,
		DrawSize:      2,
		MatchUps:      []models.MatchUp{{MatchUpID: "main-R1M1", RoundNumber: 1, RoundPosition: 1, DrawPositions: []int{1, 2}}},
		PositionAssignments: []models.PositionAssignment{
			{DrawPosition: 1, ParticipantID: "p1"},
			{DrawPosition: 2, Bye: true},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO structures`).
		WithArgs("main", 3, "Main", "ELIMINATION", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM position_assignments WHERE draw_id = $1 AND structure_id = $2`)).
		WithArgs(3, "main").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO position_assignments`).
		WithArgs(3, "main", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateStructure(context.Background(), tx, 3, structure))
	require.NoError(t, tx.Commit())

	require.Equal(t, 3, structure.DrawID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDrawRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)

		mock.ExpectQuery(`SELECT id, name, created_at FROM draws`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).AddRow(4, "Open", time.Now()))

		draw, err := repo.GetByID(context.Background(), 4)
		require.NoError(t, err)
		require.Equal(t, "Open", draw.DrawName)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)

		mock.ExpectQuery(`SELECT id, name, created_at FROM draws`).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}))

		_, err := repo.GetByID(context.Background(), 4)
		require.ErrorIs(t, err, ErrDrawNotFound)
	})
}

func TestDrawRepository_ListStructures(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDrawRepository(db)

	mock.ExpectQuery(`FROM structures`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "draw_id", "name", "structure_type", "draw_size", "match_ups", "pools", "created_at"}).
			AddRow("pools", 4, "Pools", "ROUND_ROBIN", 3,
				[]byte(`[{"match_up_id":"pools-P1M1","round_number":1,"round_position":1,"draw_positions":[1,2],"pool_number":1}]`),
				[]byte(`[{"pool_number":1,"draw_positions":[1,2,3]}]`),
				time.Now()))

	structures, err := repo.ListStructures(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, structures, 1)
	require.True(t, structures[0].IsRoundRobin())
	require.Equal(t, []int{1, 2, 3}, structures[0].Pools[0].DrawPositions)
	require.Equal(t, []int{1, 2}, structures[0].MatchUps[0].DrawPositions)
}

func TestDrawRepository_ListPositionAssignments(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresDrawRepository(db)

	mock.ExpectQuery(`FROM position_assignments`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"structure_id", "draw_position", "participant_id", "bye"}).
			AddRow("main", 1, "p1", false).
			AddRow("main", 2, nil, true).
			AddRow("main", 3, nil, false))

	byStructure, err := repo.ListPositionAssignments(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, []models.PositionAssignment{
		{DrawPosition: 1, ParticipantID: "p1"},
		{DrawPosition: 2, Bye: true},
		{DrawPosition: 3},
	}, byStructure["main"])
}

func TestDrawRepository_ReplacePositionAssignments(t *testing.T) {
	t.Run("maps duplicate participants", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)

		mock.ExpectExec(`DELETE FROM position_assignments`).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`INSERT INTO position_assignments`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "position_assignments_participant_key"})

		err := repo.ReplacePositionAssignments(context.Background(), nil, 1, "main", []models.PositionAssignment{
			{DrawPosition: 1, ParticipantID: "p1"},
			{DrawPosition: 2, ParticipantID: "p1"},
		})
		require.ErrorIs(t, err, ErrPositionConflict)
	})

	t.Run("empty assignments only clear", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresDrawRepository(db)

		mock.ExpectExec(`DELETE FROM position_assignments`).WithArgs(1, "main").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repo.ReplacePositionAssignments(context.Background(), nil, 1, "main", nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
