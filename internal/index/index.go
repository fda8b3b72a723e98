package index

import "github.com/starford/mosaic/internal/models"

// TagIndex defines the tag indexing operations used by sessions.
// Consumers depend on this interface rather than *DB.
type TagIndex interface {
	RecordImages(sessionID string, images []models.Image) error
	AddTag(sessionID, imageID, tag string) error
	TagCounts(sessionID string) ([]TagCount, error)
	ImagesWithTag(sessionID, tag string) ([]string, error)
	DropSession(sessionID string) error
}

// Verify *DB satisfies TagIndex at compile time.
var _ TagIndex = (*DB)(nil)
