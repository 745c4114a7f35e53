package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	objects map[string][]byte
	types   map[string]string
	caching map[string]string
	err     error
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: map[string][]byte{}, types: map[string]string{}, caching: map[string]string{}}
}

func (m *memoryUploader) Put(_ context.Context, obj Object) (*UploadResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, err
	}
	m.objects[obj.Key] = body
	m.types[obj.Key] = obj.ContentType
	m.caching[obj.Key] = obj.CacheControl
	return &UploadResult{Key: obj.Key, Location: m.GetPublicURL(obj.Key)}, nil
}

func (m *memoryUploader) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return m.err
}

func (m *memoryUploader) GetPublicURL(key string) string {
	return publicURL("https://cdn.example.com/pool", key)
}

func TestSnapshotPublisher(t *testing.T) {
	uploader := newMemoryUploader()
	publisher := NewSnapshotPublisher(uploader)
	region := "East"
	b := &models.Bracket{
		TournamentID: 9,
		Regions:      []string{region},
		Rounds:       []models.Round{models.RoundOf64},
		Games: []*models.Game{{
			ID: "round_of_64-1", TournamentID: 9, Round: models.RoundOf64, Region: &region,
			Team1ID: intPtr(1), Team2ID: intPtr(2),
		}},
	}

	location, err := publisher.Publish(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pool/brackets/9.json", location)
	assert.Equal(t, location, publisher.URL(9))
	assert.Equal(t, "application/json", uploader.types["brackets/9.json"])
	assert.Equal(t, "no-cache", uploader.caching["brackets/9.json"])

	var stored struct {
		TournamentID int `json:"tournament_id"`
		Games        []struct {
			ID        string `json:"id"`
			CanSelect bool   `json:"can_select"`
		} `json:"games"`
	}
	require.NoError(t, json.Unmarshal(uploader.objects["brackets/9.json"], &stored))
	assert.Equal(t, 9, stored.TournamentID)
	require.Len(t, stored.Games, 1)
	assert.True(t, stored.Games[0].CanSelect)

	require.NoError(t, publisher.Remove(context.Background(), 9))
	assert.NotContains(t, uploader.objects, "brackets/9.json")
}

func TestSnapshotPublisher_UploadFailure(t *testing.T) {
	uploader := newMemoryUploader()
	uploader.err = errors.New("bucket unavailable")
	_, err := NewSnapshotPublisher(uploader).Publish(context.Background(), &models.Bracket{TournamentID: 1})
	assert.ErrorIs(t, err, uploader.err)
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "brackets/1.json", "https://cdn.example.com/brackets/1.json"},
		{"https://cdn.example.com/", "/brackets/1.json", "https://cdn.example.com/brackets/1.json"},
		{"https://cdn.example.com/pool/", "brackets/1.json", "https://cdn.example.com/pool/brackets/1.json"},
		{"", "brackets/1.json", ""},
		{"https://cdn.example.com", "", ""},
		{"not a url", "brackets/1.json", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publicURL(tt.base, tt.key), "publicURL(%q, %q)", tt.base, tt.key)
	}
}

func TestCloudflareR2UploaderConfig(t *testing.T) {
	var empty CloudflareR2UploaderConfig
	assert.False(t, empty.Enabled())

	partial := CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "b"}
	assert.True(t, partial.Enabled())
	err := partial.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "R2_ACCESS_KEY_ID, R2_PUBLIC_BASE_URL, R2_SECRET_ACCESS_KEY")

	full := CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "key", SecretAccessKey: "secret",
		BucketName: "b", PublicBaseURL: "https://cdn.example.com",
	}
	assert.NoError(t, full.Validate())
}

func intPtr(v int) *int { return &v }
