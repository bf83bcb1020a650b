package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-draws/models"
)

type DrawSnapshot struct {
	DrawID      int               `json:"draw_id"`
	DrawName    string            `json:"draw_name"`
	Structure   *models.Structure `json:"structure"`
	ArchivedAt  time.Time         `json:"archived_at"`
	Description string            `json:"description,omitempty"`
}

// DrawSnapshotArchiver writes committed structures to object storage as JSON.
type DrawSnapshotArchiver struct {
	uploader ObjectUploader
	now      func() time.Time
}

func NewDrawSnapshotArchiver(uploader ObjectUploader) *DrawSnapshotArchiver {
	return &DrawSnapshotArchiver{uploader: uploader, now: time.Now}
}

func SnapshotKey(drawID int, structureID string, at time.Time) string {
	return fmt.Sprintf("draws/%d/%s/%s.json", drawID, structureID, at.UTC().Format("20060102T150405.000000000Z"))
}

// Archive uploads the structure's current state and returns the public URL
// of the snapshot.
func (a *DrawSnapshotArchiver) Archive(ctx context.Context, draw *models.DrawDefinition, structure *models.Structure, description string) (string, error) {
	at := a.now()
	body, err := json.Marshal(DrawSnapshot{
		DrawID:      draw.DrawID,
		DrawName:    draw.DrawName,
		Structure:   structure,
		ArchivedAt:  at,
		Description: description,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode draw snapshot: %w", err)
	}

	result, err := a.uploader.Upload(ctx, SnapshotKey(draw.DrawID, structure.StructureID, at), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
