package index

import (
	"fmt"

	"github.com/starford/mosaic/internal/models"
)

// TagCount is the number of images in a session that carry Tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// RecordImages indexes every tag of every image within a transaction.
func (db *DB) RecordImages(sessionID string, images []models.Image) error {
	if len(images) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO image_tags (session_id, image_id, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare tag insert: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		for _, tag := range img.Tags {
			if _, err := stmt.Exec(sessionID, img.ID, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}
	return tx.Commit()
}

// AddTag indexes one tag on one image. Re-adding is a no-op.
func (db *DB) AddTag(sessionID, imageID, tag string) error {
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO image_tags (session_id, image_id, tag) VALUES (?, ?, ?)`,
		sessionID, imageID, tag)
	if err != nil {
		return fmt.Errorf("index: add tag: %w", err)
	}
	return nil
}

// TagCounts returns per-tag image counts for a session, most used first.
func (db *DB) TagCounts(sessionID string) ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, COUNT(*) AS n
		FROM image_tags
		WHERE session_id = ?
		GROUP BY tag
		ORDER BY n DESC, tag ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("index: tag counts: %w", err)
	}
	defer rows.Close()

	out := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// ImagesWithTag returns the ids of a session's images carrying tag, in the
// order the images were first indexed. Tags added later keep an image at
// its load position.
func (db *DB) ImagesWithTag(sessionID, tag string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT t.image_id FROM image_tags t
		WHERE t.session_id = ? AND t.tag = ?
		ORDER BY (
			SELECT MIN(f.rowid) FROM image_tags f
			WHERE f.session_id = t.session_id AND f.image_id = t.image_id
		)
	`, sessionID, tag)
	if err != nil {
		return nil, fmt.Errorf("index: images with tag: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// DropSession removes every row belonging to a session.
func (db *DB) DropSession(sessionID string) error {
	if _, err := db.conn.Exec(`DELETE FROM image_tags WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("index: drop session: %w", err)
	}
	return nil
}
