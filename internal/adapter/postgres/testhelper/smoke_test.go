package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	speech := SeedSpeech(t, pool, uuid.New())

	// Verify the speech exists in DB via SELECT.
	var title string
	err := pool.QueryRow(
		context.Background(),
		`SELECT title FROM speeches WHERE id = $1`,
		speech.ID,
	).Scan(&title)
	if err != nil {
		t.Fatalf("expected speech in DB, got error: %v", err)
	}

	if title != speech.Title {
		t.Fatalf("expected title %q, got %q", speech.Title, title)
	}
}
