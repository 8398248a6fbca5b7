package store

import (
	"errors"
	"path/filepath"
	"testing"
)

type note struct {
	ID   int64  `json:"id,omitempty"`
	Text string `json:"text"`
}

func (n *note) RecordID() int64      { return n.ID }
func (n *note) SetRecordID(id int64) { n.ID = id }

type strict struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

func (s *strict) RecordID() int64      { return s.ID }
func (s *strict) SetRecordID(id int64) { s.ID = id }
func (s *strict) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func open(t *testing.T, path string, version int, collections ...string) *Store {
	t.Helper()
	s, err := Open(path, version, collections)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpen_Fresh(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes")
	n, err := s.Count("notes")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty collection, got %d", n)
	}
}

func TestOpen_VersionBumpKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	s := open(t, path, 1, "notes")
	if _, err := s.Add("notes", &note{Text: "kept"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Higher version adds the missing collection without touching notes.
	s2 := open(t, path, 2, "notes", "extra")
	var notes []note
	if err := s2.GetAll("notes", &notes); err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Text != "kept" {
		t.Errorf("existing records were not preserved: %+v", notes)
	}
	if n, _ := s2.Count("extra"); n != 0 {
		t.Errorf("expected new empty collection, got %d records", n)
	}

	// Reopening at the same version is idempotent.
	s3 := open(t, path, 2, "notes", "extra")
	notes = nil
	if err := s3.GetAll("notes", &notes); err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(notes) != 1 {
		t.Errorf("reopen lost records: %+v", notes)
	}
}

func TestPut_AssignsAndUpserts(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes")

	n1 := &note{Text: "first"}
	id, err := s.Put("notes", n1)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if id == 0 || n1.ID != id {
		t.Fatalf("expected assigned id, got %d", id)
	}

	n1.Text = "updated"
	id2, err := s.Put("notes", n1)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if id2 != id {
		t.Errorf("upsert changed id: %d != %d", id2, id)
	}

	var got note
	if err := s.GetByID("notes", id, &got); err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Text != "updated" {
		t.Errorf("expected updated record, got %+v", got)
	}
	if n, _ := s.Count("notes"); n != 1 {
		t.Errorf("upsert duplicated the record, count=%d", n)
	}
}

func TestAdd_InsertionOrder(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes")
	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Add("notes", &note{Text: text}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	var notes []note
	if err := s.GetAll("notes", &notes); err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(notes) != 3 || notes[0].Text != "a" || notes[2].Text != "c" {
		t.Errorf("insertion order not preserved: %+v", notes)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes")
	id, _ := s.Add("notes", &note{Text: "gone"})

	if err := s.Delete("notes", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("notes", id); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	var got note
	if err := s.GetByID("notes", id, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClearAndCount(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes", "other")
	s.Add("notes", &note{Text: "x"})
	s.Add("notes", &note{Text: "y"})
	s.Add("other", &note{Text: "untouched"})

	if err := s.Clear("notes"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := s.Count("notes"); n != 0 {
		t.Errorf("expected cleared collection, got %d", n)
	}
	if n, _ := s.Count("other"); n != 1 {
		t.Errorf("Clear touched an unrelated collection, count=%d", n)
	}
}

func TestValidation_AtWriteBoundary(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "strict")
	if _, err := s.Put("strict", &strict{}); err == nil {
		t.Error("expected validation error from Put")
	}
	if _, err := s.Add("strict", &strict{}); err == nil {
		t.Error("expected validation error from Add")
	}
	if n, _ := s.Count("strict"); n != 0 {
		t.Errorf("invalid record was stored, count=%d", n)
	}
}

func TestUnknownCollection(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "db.json"), 1, "notes")
	if _, err := s.Put("nope", &note{Text: "x"}); err == nil {
		t.Error("expected error for unknown collection")
	}
	if _, err := s.Count("nope"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestPersistence_AcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	s := open(t, path, 1, "notes")
	id, _ := s.Add("notes", &note{Text: "durable"})

	s2 := open(t, path, 1, "notes")
	var got note
	if err := s2.GetByID("notes", id, &got); err != nil {
		t.Fatalf("GetByID after reopen failed: %v", err)
	}
	if got.Text != "durable" {
		t.Errorf("expected durable record, got %+v", got)
	}

	// Sequence continues; a new record never reuses an id.
	id2, _ := s2.Add("notes", &note{Text: "next"})
	if id2 <= id {
		t.Errorf("sequence regressed after reopen: %d <= %d", id2, id)
	}
}
