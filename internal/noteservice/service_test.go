package noteservice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/halvard/synapse/internal/apperr"
	"github.com/halvard/synapse/internal/cache"
	"github.com/halvard/synapse/internal/checksum"
	"github.com/halvard/synapse/internal/query"
	"github.com/halvard/synapse/internal/reconcile"
	"github.com/halvard/synapse/internal/storage"
	"github.com/halvard/synapse/internal/testutil"
)

func testService(t *testing.T) (*Service, storage.Provider, cache.Store) {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestCache(t)
	logger := testutil.QuietLogger()
	rec := reconcile.New(store, db, logger)
	eng := query.New(store, db, logger)
	return NewService(store, db, rec, eng), store, db
}

func TestCreateNote(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	detail, err := svc.CreateNote(ctx, "", "My First Note")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Path != "My First Note.md" {
		t.Errorf("Path = %q", detail.Path)
	}
	if detail.Title != "My First Note" {
		t.Errorf("Title = %q", detail.Title)
	}
	if !strings.Contains(detail.Content, "title: My First Note") {
		t.Errorf("seeded frontmatter missing title: %q", detail.Content)
	}
	if !strings.Contains(detail.Content, "tags: []") {
		t.Errorf("seeded frontmatter missing tags: %q", detail.Content)
	}

	// On disk and in the cache.
	if _, err := store.Read("My First Note.md"); err != nil {
		t.Errorf("note not written: %v", err)
	}
	notes, err := svc.GetAllNotes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Title != "My First Note" {
		t.Errorf("cache state: %+v", notes)
	}
}

func TestCreateNote_SanitizesTitle(t *testing.T) {
	svc, _, _ := testService(t)

	detail, err := svc.CreateNote(context.Background(), "sub", `a/b:c?`)
	if err != nil {
		t.Fatal(err)
	}
	if detail.Path != "sub/a_b_c_.md" {
		t.Errorf("Path = %q", detail.Path)
	}
}

func TestCreateNote_AlreadyExists(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "Dup"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.CreateNote(ctx, "", "Dup")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateNote_ChecksumConflict(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	original := []byte("# Version One\n")
	if err := store.Write("note.md", original); err != nil {
		t.Fatal(err)
	}

	// Stale checksum is rejected.
	_, err := svc.UpdateNote(ctx, "note.md", []byte("# Version Two\n"), checksum.Sum([]byte("something else")))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Matching checksum succeeds and reindexes.
	detail, err := svc.UpdateNote(ctx, "note.md", []byte("# Version Two\n"), checksum.Sum(original))
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Version Two" {
		t.Errorf("Title = %q", detail.Title)
	}
	cached, err := svc.GetAllNotes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 1 || cached[0].Title != "Version Two" {
		t.Errorf("cache not reindexed: %+v", cached)
	}
}

func TestUpdateNote_EmptyIfMatchSkipsCheck(t *testing.T) {
	svc, store, _ := testService(t)

	if err := store.Write("note.md", []byte("old\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateNote(context.Background(), "note.md", []byte("new\n"), ""); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateNote_NotFound(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.UpdateNote(context.Background(), "missing.md", []byte("x"), "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote_RemovesFileAndCache(t *testing.T) {
	svc, store, db := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "Goner"); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteNote(ctx, "Goner.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Read("Goner.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("file still readable: %v", err)
	}
	if _, err := db.GetNote("Goner.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("cache entry still present: %v", err)
	}
}

func TestRenameNote(t *testing.T) {
	svc, _, db := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "Before"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RenameNote(ctx, "Before.md", "dir/After.md"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetNote("Before.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("old cache entry should be gone")
	}
	if _, err := db.GetNote("dir/After.md"); err != nil {
		t.Errorf("new cache entry missing: %v", err)
	}
}

func TestRenameNote_TargetExists(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "A"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateNote(ctx, "", "B"); err != nil {
		t.Fatal(err)
	}
	err := svc.RenameNote(ctx, "A.md", "B.md")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestDuplicateNote_FindsFreeName(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	if err := store.Write("orig.md", []byte("# Orig\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("orig 1.md", []byte("taken\n")); err != nil {
		t.Fatal(err)
	}

	got, err := svc.DuplicateNote(ctx, "orig.md")
	if err != nil {
		t.Fatal(err)
	}
	if got != "orig 2.md" {
		t.Errorf("duplicate path = %q, want next free sibling", got)
	}
	data, err := store.Read(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Orig\n" {
		t.Errorf("copied content = %q", data)
	}
}

func TestGetNote_DetailFields(t *testing.T) {
	svc, store, _ := testService(t)
	ctx := context.Background()

	content := []byte("---\ntitle: Hub\n---\nbody words here\n")
	if err := store.Write("hub.md", content); err != nil {
		t.Fatal(err)
	}
	linker := []byte("points at [[Hub]] today\n")
	if err := store.Write("linker.md", linker); err != nil {
		t.Fatal(err)
	}
	if err := svc.ReindexVault(ctx); err != nil {
		t.Fatal(err)
	}

	detail, err := svc.GetNote(ctx, "hub.md")
	if err != nil {
		t.Fatal(err)
	}
	if detail.Title != "Hub" {
		t.Errorf("Title = %q", detail.Title)
	}
	if detail.Checksum != checksum.Sum(content) {
		t.Errorf("Checksum = %q", detail.Checksum)
	}
	if detail.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", detail.WordCount)
	}
	if len(detail.Backlinks) != 1 || detail.Backlinks[0].SourcePath != "linker.md" {
		t.Errorf("Backlinks = %+v", detail.Backlinks)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.GetNote(context.Background(), "nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestToggleStar_ThroughService(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "", "Fav"); err != nil {
		t.Fatal(err)
	}
	starred, err := svc.ToggleStar(ctx, "Fav.md")
	if err != nil {
		t.Fatal(err)
	}
	if !starred {
		t.Error("first toggle should star the note")
	}
	detail, err := svc.GetNote(ctx, "Fav.md")
	if err != nil {
		t.Fatal(err)
	}
	if !detail.Starred {
		t.Error("detail should reflect starred state")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	if _, ok, err := svc.GetSetting(ctx, "theme"); err != nil || ok {
		t.Fatalf("unset setting: ok=%v err=%v", ok, err)
	}
	if err := svc.SetSetting(ctx, "theme", "dark"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := svc.GetSetting(ctx, "theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
}
