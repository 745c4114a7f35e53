package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/calcutta-bracket/models"
)

// SnapshotPublisher keeps a public JSON copy of each tournament's bracket.
type SnapshotPublisher interface {
	Publish(ctx context.Context, b *models.Bracket) (string, error)
	Remove(ctx context.Context, tournamentID int) error
	URL(tournamentID int) string
}

type bracketSnapshotPublisher struct {
	uploader FileUploader
}

func NewSnapshotPublisher(uploader FileUploader) SnapshotPublisher {
	return &bracketSnapshotPublisher{uploader: uploader}
}

func SnapshotKey(tournamentID int) string {
	return fmt.Sprintf("brackets/%d.json", tournamentID)
}

func (p *bracketSnapshotPublisher) Publish(ctx context.Context, b *models.Bracket) (string, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket snapshot of tournament %d: %w", b.TournamentID, err)
	}
	result, err := p.uploader.Put(ctx, Object{
		Key:          SnapshotKey(b.TournamentID),
		ContentType:  "application/json",
		CacheControl: "no-cache",
		Body:         bytes.NewReader(body),
	})
	if err != nil {
		return "", err
	}
	return result.Location, nil
}

func (p *bracketSnapshotPublisher) Remove(ctx context.Context, tournamentID int) error {
	return p.uploader.Delete(ctx, SnapshotKey(tournamentID))
}

func (p *bracketSnapshotPublisher) URL(tournamentID int) string {
	return p.uploader.GetPublicURL(SnapshotKey(tournamentID))
}
