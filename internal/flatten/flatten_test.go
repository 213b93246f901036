package flatten

import (
	"bytes"
	"reflect"
	"testing"
)

func TestExplodeNoOpWhenColumnAbsent(t *testing.T) {
	flat := Table{
		Columns: []string{"id", "username"},
		Rows:    []Row{{"id": float64(1), "username": "maya"}},
	}
	got := Users(flat)
	if !reflect.DeepEqual(got, flat) {
		t.Fatalf("expected already-flat table unchanged, got %+v", got)
	}
}

func TestExplodeEmptyCollection(t *testing.T) {
	tbl := Normalize(Document{"users": []any{}, "page": float64(1)})
	got := Users(tbl)
	if !got.Empty() {
		t.Fatalf("expected empty result marker, got %d rows", len(got.Rows))
	}
	// Distinct from the no-op path: the input still had the column.
	if got.HasColumn("users") {
		t.Fatalf("empty result should not carry the raw column")
	}
}

func TestExplodeInspectsEveryRow(t *testing.T) {
	tbl := Table{
		Columns: []string{"posts"},
		Rows: []Row{
			{"posts": []any{}},
			{"posts": []any{map[string]any{"id": float64(7), "post_id": float64(3), "user_id": float64(2), "viewed_at": "2024-01-01"}}},
		},
	}
	got := ViewedPosts(tbl)
	if len(got.Rows) != 1 {
		t.Fatalf("records past row 0 must not be dropped; got %d rows", len(got.Rows))
	}
	if got.Rows[0].Int("id") != 7 {
		t.Fatalf("unexpected row: %+v", got.Rows[0])
	}
}

func TestExplodeAllowListIntersection(t *testing.T) {
	tbl := Normalize(Document{"posts": []any{
		map[string]any{"id": float64(1), "post_id": float64(2), "user_id": float64(3), "unrelated": "x"},
	}})
	got := ViewedPosts(tbl)
	if got.HasColumn("unrelated") {
		t.Fatalf("non-allow-listed column must be dropped")
	}
	// viewed_at was absent upstream: omitted, never synthesized.
	if got.HasColumn("viewed_at") {
		t.Fatalf("missing field must be omitted, not synthesized")
	}
	if len(got.Rows) != 1 || got.Rows[0].Int("post_id") != 2 {
		t.Fatalf("unexpected rows: %+v", got.Rows)
	}
}

func TestSentinelFillForInteractions(t *testing.T) {
	tbl := Normalize(Document{"posts": []any{
		map[string]any{"id": float64(1), "post_id": float64(2), "user_id": float64(3), "liked_at": "2024-05-01"},
		map[string]any{"id": float64(4), "post_id": float64(5), "user_id": float64(6)},
	}})
	got := LikedPosts(tbl)
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	if got.Rows[1].Str("liked_at") != NoData {
		t.Fatalf("missing cell must carry the sentinel, got %q", got.Rows[1].Str("liked_at"))
	}
	if got.Rows[0].Str("liked_at") != "2024-05-01" {
		t.Fatalf("present cell must survive, got %q", got.Rows[0].Str("liked_at"))
	}
}

func TestPostsKeepNestedSummaryFields(t *testing.T) {
	tbl := Normalize(Document{"posts": []any{
		map[string]any{
			"id": float64(1), "slug": "first-post", "title": "First",
			"view_count": float64(10),
			"post_summary": map[string]any{
				"emotions": map[string]any{"overall_sentiment": "positive"},
				"actions":  map[string]any{"coin_rotation": "fast"},
			},
		},
	}})
	got := Posts(tbl)
	if len(got.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got.Rows))
	}
	r := got.Rows[0]
	if r.Str("post_summary.emotions.overall_sentiment") != "positive" {
		t.Fatalf("nested field not flattened: %+v", r)
	}
	if r.Str("post_summary.actions.coin_rotation") != "fast" {
		t.Fatalf("nested field not flattened: %+v", r)
	}
	// Posts do not get the sentinel; absent summary fields stay absent.
	if _, ok := r["post_summary.audio_elements.auditory_transcription"]; ok {
		t.Fatalf("absent summary field must stay absent")
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := Table{
		Columns: []string{"id", "title"},
		Rows: []Row{
			{"id": float64(1), "title": "First"},
			{"id": float64(2)},
		},
	}
	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := "id,title\n1,First\n2,\n"
	if buf.String() != want {
		t.Fatalf("csv mismatch:\n got %q\nwant %q", buf.String(), want)
	}
}
