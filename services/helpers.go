package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/repositories"
)

// withTx runs fn inside a transaction, committing when it returns nil.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// translateRepositoryError maps repository and collaborator errors onto the
// service errors the HTTP layer knows about, keeping the original message.
func translateRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrDrawNotFound):
		return fmt.Errorf("%w: %v", ErrDrawNotFound, err)
	case errors.Is(err, repositories.ErrStructureNotFound), errors.Is(err, brackets.ErrStructureNotFound):
		return fmt.Errorf("%w: %v", ErrStructureNotFound, err)
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return fmt.Errorf("%w: %v", ErrParticipantNotFound, err)
	case errors.Is(err, repositories.ErrDrawNameConflict):
		return fmt.Errorf("%w: %v", ErrDrawNameConflict, err)
	case errors.Is(err, repositories.ErrParticipantConflict):
		return fmt.Errorf("%w: %v", ErrParticipantConflict, err)
	case errors.Is(err, repositories.ErrParticipantDrawInvalid):
		return fmt.Errorf("%w: %v", ErrDrawNotFound, err)
	case errors.Is(err, repositories.ErrPositionConflict),
		errors.Is(err, brackets.ErrDrawPositionFilled),
		errors.Is(err, brackets.ErrParticipantAlreadyPlaced):
		return fmt.Errorf("%w: %v", ErrPositionConflict, err)
	case errors.Is(err, brackets.ErrInvalidDrawPosition),
		errors.Is(err, brackets.ErrDrawPositionNotAssigned),
		errors.Is(err, brackets.ErrMissingParticipantID),
		errors.Is(err, repositories.ErrPositionByeViolation):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return err
}
