package places

import (
	"regexp"
	"strings"
	"testing"
)

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// insertColumns pulls the column list out of an INSERT statement.
func insertColumns(t *testing.T, query string) []string {
	t.Helper()

	open := strings.Index(query, "(")
	closing := strings.Index(query, ")")
	if open < 0 || closing < open {
		t.Fatalf("no column list found in query: %s", query)
	}

	var columns []string
	for _, col := range strings.Split(query[open+1:closing], ",") {
		columns = append(columns, strings.TrimSpace(col))
	}
	return columns
}

func TestUpsertPlaceQueryIsIdempotentOnPlaceID(t *testing.T) {
	query := strings.ToLower(upsertPlaceQuery)

	if !strings.Contains(query, "on conflict (place_id) do update set") {
		t.Fatal("re-upserting a place must update, not duplicate, the row")
	}

	columns := insertColumns(t, query)
	placeholders := placeholderPattern.FindAllString(query, -1)
	if len(placeholders) != len(columns) {
		t.Fatalf("expected %d placeholders for %d columns, got %d", len(columns), len(columns), len(placeholders))
	}

	// Every inserted column except the conflict target must be refreshed on
	// conflict, or a re-resolve would serve stale data.
	updateClause := query[strings.Index(query, "do update set"):]
	for _, col := range columns {
		if col == "place_id" {
			continue
		}
		if !strings.Contains(updateClause, col+" = excluded."+col) {
			t.Fatalf("column %q is inserted but not refreshed on conflict", col)
		}
	}
	if !strings.Contains(updateClause, "updated_at = now()") {
		t.Fatal("conflict update must bump updated_at")
	}
}

func TestRecordResolutionQueryIsIdempotentOnSession(t *testing.T) {
	query := strings.ToLower(recordResolutionQuery)

	if !strings.Contains(query, "on conflict (session_id) do update set") {
		t.Fatal("re-recording a session must update, not duplicate, the resolution row")
	}

	columns := insertColumns(t, query)
	placeholders := placeholderPattern.FindAllString(query, -1)
	if len(placeholders) != len(columns) {
		t.Fatalf("expected %d placeholders for %d columns, got %d", len(columns), len(columns), len(placeholders))
	}
}
