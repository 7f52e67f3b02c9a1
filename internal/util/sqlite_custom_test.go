package util

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestCustomFunction(t *testing.T) {
	RegisterFunctions()
	// Registering again must not panic.
	RegisterFunctions()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE test (id INTEGER, value TEXT); INSERT INTO test VALUES (1, 'Hypérion'), (2, 'DUNE'), (3, NULL)"); err != nil {
		t.Fatalf("Error: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test WHERE instr(casefold(value), casefold(?)) > 0", "HYPÉR").Scan(&count); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 match, got %d", count)
	}

	var folded sql.NullString
	if err := db.QueryRow("SELECT casefold(value) FROM test WHERE id = 3").Scan(&folded); err != nil {
		t.Fatalf("Error: %v", err)
	}
	if folded.Valid {
		t.Errorf("casefold(NULL) should be NULL, got %q", folded.String)
	}
}
