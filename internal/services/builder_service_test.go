package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/soaringjerry/AnketBox/internal/models"
	"github.com/soaringjerry/AnketBox/internal/storage"
)

// stubGateway is an in-test slot store shared by the service tests.
type stubGateway struct {
	slots   map[string]string
	failSet bool
}

func newStubGateway() *stubGateway {
	return &stubGateway{slots: map[string]string{}}
}

func (g *stubGateway) Get(key string, out any) bool {
	raw, ok := g.slots[key]
	if !ok || raw == "" || raw == "null" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (g *stubGateway) Set(key string, v any) error {
	if g.failSet {
		return errors.New("disk full")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	g.slots[key] = string(b)
	return nil
}

func testBuilder(g storage.Gateway) *BuilderService {
	b := NewBuilderService(g)
	b.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return b
}

func TestAddQuestionMintsUniqueIDs(t *testing.T) {
	b := testBuilder(newStubGateway())
	seen := map[string]bool{}
	for _, text := range []string{"first", "second", "third"} {
		q, err := b.AddQuestion(text, "short_text", "", false)
		if err != nil {
			t.Fatalf("add %q: %v", text, err)
		}
		if q.ID == "" || seen[q.ID] {
			t.Fatalf("id %q not unique", q.ID)
		}
		seen[q.ID] = true
	}
	qs := b.Questions()
	if len(qs) != 3 || qs[0].Text != "first" || qs[2].Text != "third" {
		t.Fatalf("unexpected draft order: %+v", qs)
	}
}

func TestAddQuestionBlankText(t *testing.T) {
	b := testBuilder(newStubGateway())
	_, err := b.AddQuestion("   \t", "short_text", "", false)
	if err == nil {
		t.Fatal("expected error for blank text")
	}
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("want invalid error, got %v", err)
	}
	if len(b.Questions()) != 0 {
		t.Fatal("draft mutated on failed add")
	}
}

func TestAddQuestionUnknownType(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.AddQuestion("q", "hologram", "", false); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestAddQuestionChoiceOptions(t *testing.T) {
	b := testBuilder(newStubGateway())
	q, err := b.AddQuestion("pick", "single_choice", " A, B ,,C ", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(q.Options) != 3 || q.Options[0] != "A" || q.Options[2] != "C" {
		t.Fatalf("options not split: %v", q.Options)
	}
}

func TestAddQuestionLegacyTypeAlias(t *testing.T) {
	b := testBuilder(newStubGateway())
	q, err := b.AddQuestion("q", "checkbox", "A,B", false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if q.Type != models.MultiChoice {
		t.Fatalf("alias not resolved: %s", q.Type)
	}
}

func TestUpdateQuestion(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.AddQuestion("q", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := b.UpdateQuestion(0, "type", "rating"); err != nil {
		t.Fatalf("update type: %v", err)
	}
	q := b.Questions()[0]
	if q.Type != models.Rating || q.ScaleSize != models.DefaultRatingScale {
		t.Fatalf("rating defaults missing: %+v", q)
	}

	if err := b.UpdateQuestion(0, "required", "true"); err != nil {
		t.Fatalf("update required: %v", err)
	}
	if !b.Questions()[0].Required {
		t.Fatal("required not set")
	}

	if err := b.UpdateQuestion(0, "scale", "99"); err != nil {
		t.Fatalf("update scale: %v", err)
	}
	if got := b.Questions()[0].ScaleSize; got != 10 {
		t.Fatalf("scale size not clamped: %d", got)
	}

	if err := b.UpdateQuestion(0, "text", "  "); err == nil {
		t.Fatal("expected error for blank text")
	}
	if err := b.UpdateQuestion(0, "color", "red"); err == nil {
		t.Fatal("expected error for unknown field")
	}

	err := b.UpdateQuestion(5, "text", "x")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorIndex {
		t.Fatalf("want index error, got %v", err)
	}
}

func TestMoveQuestion(t *testing.T) {
	b := testBuilder(newStubGateway())
	for _, text := range []string{"a", "b", "c", "d"} {
		if _, err := b.AddQuestion(text, "short_text", "", false); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := b.MoveQuestion(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	got := texts(b.Questions())
	want := []string{"b", "c", "a", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after move got %v, want %v", got, want)
		}
	}

	// out-of-bounds destination is a no-op
	if err := b.MoveQuestion(1, 9); err != nil {
		t.Fatalf("no-op move errored: %v", err)
	}
	for i, w := range want {
		if b.Questions()[i].Text != w {
			t.Fatalf("no-op move mutated list: %v", texts(b.Questions()))
		}
	}

	err := b.MoveQuestion(9, 1)
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorIndex {
		t.Fatalf("want index error, got %v", err)
	}
}

func TestRemoveQuestionShiftsIndices(t *testing.T) {
	b := testBuilder(newStubGateway())
	for _, text := range []string{"a", "b", "c"} {
		if _, err := b.AddQuestion(text, "short_text", "", false); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := b.RemoveQuestion(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got := texts(b.Questions())
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("unexpected list after remove: %v", got)
	}
	if err := b.RemoveQuestion(7); err == nil {
		t.Fatal("expected index error")
	}
}

func TestCommitValidation(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.Commit("title", ""); err == nil {
		t.Fatal("expected error for empty question list")
	}
	if _, err := b.AddQuestion("q", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.Commit("  ", ""); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestCommitPersistsAndResaves(t *testing.T) {
	g := newStubGateway()
	b := testBuilder(g)
	if _, err := b.AddQuestion("q", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	first, err := b.Commit("My Survey", "desc")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	var stored models.Survey
	if !g.Get(storage.KeySurvey, &stored) {
		t.Fatal("survey slot not written")
	}
	if stored.Title != "My Survey" || len(stored.Questions) != 1 {
		t.Fatalf("stored survey wrong: %+v", stored)
	}

	b.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	second, err := b.Commit("My Survey v2", "desc")
	if err != nil {
		t.Fatalf("re-commit: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-save changed id: %s -> %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("re-save changed createdAt")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Fatal("re-save did not bump updatedAt")
	}
}

func TestCommitStorageFailureKeepsMemoryState(t *testing.T) {
	g := newStubGateway()
	g.failSet = true
	b := testBuilder(g)
	if _, err := b.AddQuestion("q", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := b.Commit("title", "")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorStorageWrite {
		t.Fatalf("want storage write error, got %v", err)
	}
	if b.Committed() == nil {
		t.Fatal("in-memory survey lost on write failure")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.AddQuestion("name?", "short_text", "", true); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.AddQuestion("pick", "multi_choice", "A,B,C", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.Commit("Round Trip", "d"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	data, err := b.ExportJSON()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	b2 := testBuilder(newStubGateway())
	if _, err := b2.ImportJSON(data); err != nil {
		t.Fatalf("import: %v", err)
	}
	if b2.Title() != "Round Trip" || b2.Description() != "d" {
		t.Fatalf("metadata lost: %q %q", b2.Title(), b2.Description())
	}
	qs := b2.Questions()
	if len(qs) != 2 {
		t.Fatalf("want 2 questions, got %d", len(qs))
	}
	if qs[0].Text != "name?" || qs[0].Type != models.ShortText || !qs[0].Required {
		t.Fatalf("question 0 wrong: %+v", qs[0])
	}
	if qs[1].Type != models.MultiChoice || len(qs[1].Options) != 3 || qs[1].Options[1] != "B" {
		t.Fatalf("question 1 wrong: %+v", qs[1])
	}
}

func TestExportWithoutCommit(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.ExportJSON(); err == nil {
		t.Fatal("expected error before first commit")
	}
}

func TestImportRejectsMissingQuestions(t *testing.T) {
	b := testBuilder(newStubGateway())
	if _, err := b.AddQuestion("keep me", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, payload := range []string{`{"title":"x"}`, `{"questions":"nope"}`, `not json`} {
		_, err := b.ImportJSON([]byte(payload))
		se, ok := AsServiceError(err)
		if !ok || se.Code != ErrorParse {
			t.Fatalf("payload %q: want parse error, got %v", payload, err)
		}
	}
	if len(b.Questions()) != 1 || b.Questions()[0].Text != "keep me" {
		t.Fatal("failed import mutated draft")
	}
}

func TestImportDefaultsLooseQuestions(t *testing.T) {
	b := testBuilder(newStubGateway())
	payload := `{"title":"t","questions":[
		{"label":"old style","type":"radio","options":["x","y"],"required":true},
		{"type":"hologram"}
	]}`
	if _, err := b.ImportJSON([]byte(payload)); err != nil {
		t.Fatalf("import: %v", err)
	}
	qs := b.Questions()
	if qs[0].Text != "old style" || qs[0].Type != models.SingleChoice || !qs[0].Required {
		t.Fatalf("legacy question not defaulted: %+v", qs[0])
	}
	if qs[1].Type != models.ShortText || qs[1].Text != "question" || qs[1].ID == "" {
		t.Fatalf("loose question not defaulted: %+v", qs[1])
	}
}

func TestClearWritesNullMarker(t *testing.T) {
	g := newStubGateway()
	b := testBuilder(g)
	if _, err := b.AddQuestion("q", "short_text", "", false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.Commit("t", ""); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := b.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if g.slots[storage.KeySurvey] != "null" {
		t.Fatalf("survey slot not nulled: %q", g.slots[storage.KeySurvey])
	}
	var sv models.Survey
	if g.Get(storage.KeySurvey, &sv) {
		t.Fatal("cleared slot still readable")
	}
	if len(b.Questions()) != 0 || b.Committed() != nil {
		t.Fatal("draft state not reset")
	}
}

func texts(qs []*models.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Text)
	}
	return out
}
