//go:build sqlite_fts5

package index

import (
	"testing"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scores_fts`).Scan(&count); err != nil {
		t.Fatalf("scores_fts table missing: %v", err)
	}
}

func TestFTS5_SearchPartNames(t *testing.T) {
	db := testDB(t)
	r := row("fts.xml", "Serenade", "Mozart", "f1")
	r.PartNames = []string{"Oboe", "Clarinet", "Bassoon"}
	if err := db.UpsertScore(r, nil); err != nil {
		t.Fatalf("UpsertScore: %v", err)
	}

	results, err := db.Search("clarinet", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Path != "fts.xml" || results[0].Composer != "Mozart" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_DeleteRemovesFromFTS(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScore(row("gone.xml", "Vanishing", "", "g"), nil)
	_ = db.DeleteScore("gone.xml")

	results, _ := db.Search("vanishing", 10)
	for _, r := range results {
		if r.Path == "gone.xml" {
			t.Error("deleted score still in FTS index")
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertScore(row("evo.xml", "Original", "", "1"), nil)
	_ = db.UpsertScore(row("evo.xml", "Replacement", "", "2"), nil)

	results, _ := db.Search("original", 10)
	if len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	results, _ = db.Search("replacement", 10)
	if len(results) != 1 || results[0].Title != "Replacement" {
		t.Errorf("FTS not updated: %+v", results)
	}
}
