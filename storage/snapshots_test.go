package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	objects     map[string][]byte
	contentType string
	err         error
}

func (m *memoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = body
	m.contentType = contentType
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return publicURL("https://cdn.example.com/archive", key)
}

func TestDrawSnapshotArchiver(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	draw := &models.DrawDefinition{DrawID: 7, DrawName: "Open"}
	structure := &models.Structure{
		StructureID:   "main",
		StructureType: models.StructureElimination,
		DrawSize:      2,
		PositionAssignments: []models.PositionAssignment{
			{DrawPosition: 1, ParticipantID: "p1"},
			{DrawPosition: 2, Bye: true},
		},
	}

	t.Run("uploads json under the structure prefix", func(t *testing.T) {
		uploader := &memoryUploader{}
		archiver := NewDrawSnapshotArchiver(uploader)
		archiver.now = func() time.Time { return at }

		location, err := archiver.Archive(context.Background(), draw, structure, "automated positioning")
		require.NoError(t, err)

		key := "draws/7/main/20260301T123000.000000000Z.json"
		assert.Equal(t, "https://cdn.example.com/archive/"+key, location)
		assert.Equal(t, "application/json", uploader.contentType)
		require.Contains(t, uploader.objects, key)

		var snapshot DrawSnapshot
		require.NoError(t, json.Unmarshal(uploader.objects[key], &snapshot))
		assert.Equal(t, 7, snapshot.DrawID)
		assert.Equal(t, "automated positioning", snapshot.Description)
		require.NotNil(t, snapshot.Structure)
		assert.Equal(t, structure.PositionAssignments, snapshot.Structure.PositionAssignments)
	})

	t.Run("upload failure is returned", func(t *testing.T) {
		boom := errors.New("bucket unavailable")
		archiver := NewDrawSnapshotArchiver(&memoryUploader{err: boom})

		_, err := archiver.Archive(context.Background(), draw, structure, "")
		require.ErrorIs(t, err, boom)
	})
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.json", publicURL("https://cdn.example.com", "a/b.json"))
	assert.Equal(t, "https://cdn.example.com/x/a.json", publicURL("https://cdn.example.com/x/", "/a.json"))
	assert.Equal(t, "", publicURL("", "a.json"))
	assert.Equal(t, "", publicURL("https://cdn.example.com", ""))
}

func TestNewCloudflareR2UploaderRequiresConfig(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2Config{AccountID: "acc"})
	require.ErrorIs(t, err, ErrInvalidR2Config)
}
