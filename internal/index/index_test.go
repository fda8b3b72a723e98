package index

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/mosaic/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleImages() []models.Image {
	return []models.Image{
		{ID: "1", Tags: models.NewTagSet("AI", "Tech")},
		{ID: "2", Tags: models.NewTagSet("Tech")},
		{ID: "3", Tags: models.NewTagSet("AI", "Gallery", "Tech")},
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM image_tags`).Scan(&count); err != nil {
		t.Fatalf("image_tags table missing: %v", err)
	}
}

func TestOpen_FileDSN(t *testing.T) {
	f, err := os.CreateTemp("", "mosaic-index-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.AddTag("s", "1", "AI"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
}

func TestTagCounts(t *testing.T) {
	db := testDB(t)
	if err := db.RecordImages("s1", sampleImages()); err != nil {
		t.Fatalf("RecordImages: %v", err)
	}
	got, err := db.TagCounts("s1")
	if err != nil {
		t.Fatalf("TagCounts: %v", err)
	}
	want := []TagCount{{"Tech", 3}, {"AI", 2}, {"Gallery", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
}

func TestAddTagIdempotent(t *testing.T) {
	db := testDB(t)
	_ = db.RecordImages("s1", sampleImages())
	_ = db.AddTag("s1", "2", "Special")
	_ = db.AddTag("s1", "2", "Special")
	ids, err := db.ImagesWithTag("s1", "Special")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"2"}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}

func TestSessionsIsolated(t *testing.T) {
	db := testDB(t)
	_ = db.RecordImages("s1", sampleImages())
	_ = db.RecordImages("s2", sampleImages()[:1])

	counts, _ := db.TagCounts("s2")
	if diff := cmp.Diff([]TagCount{{"AI", 1}, {"Tech", 1}}, counts); diff != "" {
		t.Errorf("s2 counts (-want +got):\n%s", diff)
	}

	if err := db.DropSession("s1"); err != nil {
		t.Fatalf("DropSession: %v", err)
	}
	counts, _ = db.TagCounts("s1")
	if len(counts) != 0 {
		t.Errorf("s1 counts after drop = %v", counts)
	}
	counts, _ = db.TagCounts("s2")
	if len(counts) != 2 {
		t.Errorf("s2 affected by s1 drop: %v", counts)
	}
}

func TestImagesWithTagOrder(t *testing.T) {
	db := testDB(t)
	_ = db.RecordImages("s1", sampleImages())
	ids, _ := db.ImagesWithTag("s1", "AI")
	if diff := cmp.Diff([]string{"1", "3"}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}

func TestImagesWithTagKeepsLoadOrder(t *testing.T) {
	db := testDB(t)
	_ = db.RecordImages("s1", sampleImages())
	_ = db.AddTag("s1", "3", "Late")
	_ = db.AddTag("s1", "1", "Late")
	ids, _ := db.ImagesWithTag("s1", "Late")
	if diff := cmp.Diff([]string{"1", "3"}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
}
