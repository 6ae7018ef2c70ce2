package postgres

import (
	"os"
	"strings"
	"testing"
)

// The dedup insert must repeat the partial index predicate in its conflict
// target; without it Postgres cannot infer the partial unique index as the
// arbiter and the statement fails at runtime.
func TestCreateIfAbsentQuery_MatchesPartialFingerprintIndex(t *testing.T) {
	const arbiter = "ON CONFLICT (user_id, fingerprint) WHERE fingerprint IS NOT NULL DO NOTHING"
	if !strings.Contains(createIfAbsentQuery, arbiter) {
		t.Fatalf("createIfAbsentQuery missing arbiter clause %q:\n%s", arbiter, createIfAbsentQuery)
	}

	schema, err := os.ReadFile("../../../db/schema.sql")
	if err != nil {
		t.Fatalf("Failed to read schema: %v", err)
	}
	stmt := string(schema)
	start := strings.Index(stmt, "idx_transactions_user_fingerprint")
	if start == -1 {
		t.Fatal("Schema no longer defines idx_transactions_user_fingerprint")
	}
	stmt = stmt[start:]
	if end := strings.Index(stmt, ";"); end != -1 {
		stmt = stmt[:end]
	}
	if !strings.Contains(stmt, "WHERE fingerprint IS NOT NULL") {
		t.Fatal("Fingerprint index is no longer partial; drop the conflict target predicate to match")
	}
}
