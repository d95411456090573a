package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halvard/synapse/internal/checksum"
	"github.com/halvard/synapse/internal/noteservice"
	"github.com/halvard/synapse/internal/query"
	"github.com/halvard/synapse/internal/reconcile"
	"github.com/halvard/synapse/internal/storage"
	"github.com/halvard/synapse/internal/testutil"
)

// testEnv sets up a temp vault, SQLite cache, service, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*noteservice.Service, storage.Provider, http.Handler) {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestCache(t)
	logger := testutil.QuietLogger()
	rec := reconcile.New(store, db, logger)
	eng := query.New(store, db, logger)
	svc := noteservice.NewService(store, db, rec, eng)

	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, store, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateAndGetNote(t *testing.T) {
	_, _, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Hello"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode[NoteDetail](t, w)
	if created.Path != "Hello.md" {
		t.Errorf("path = %q", created.Path)
	}

	w = doJSON(t, router, http.MethodGet, "/notes/Hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	note := decode[NoteDetail](t, w)
	if note.Title != "Hello" {
		t.Errorf("title = %q, want Hello", note.Title)
	}
	if note.Checksum == "" {
		t.Error("checksum missing")
	}
}

func TestCreateNote_Conflict(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Dup"}); w.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Dup"}); w.Code != http.StatusConflict {
		t.Errorf("second create status = %d, want 409", w.Code)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodGet, "/notes/missing.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateNote_IfMatch(t *testing.T) {
	_, store, router := testEnv(t, "")

	original := []byte("# One\n")
	if err := store.Write("note.md", original); err != nil {
		t.Fatal(err)
	}

	// Stale checksum.
	raw, _ := json.Marshal(UpdateNoteRequest{Content: "# Two\n"})
	req := httptest.NewRequest(http.MethodPut, "/notes/note.md", bytes.NewReader(raw))
	req.Header.Set("If-Match", `"deadbeef"`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale update status = %d, want 409", w.Code)
	}

	// Correct checksum, quoted like an ETag.
	req = httptest.NewRequest(http.MethodPut, "/notes/note.md", bytes.NewReader(raw))
	req.Header.Set("If-Match", `"`+checksum.Sum(original)+`"`)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	note := decode[NoteDetail](t, w)
	if note.Title != "Two" {
		t.Errorf("title = %q", note.Title)
	}
}

func TestDeleteNote(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Bye"}); w.Code != http.StatusCreated {
		t.Fatal("create failed")
	}
	if w := doJSON(t, router, http.MethodDelete, "/notes/Bye.md", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/notes/Bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestRenameAndDuplicate(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Orig"}); w.Code != http.StatusCreated {
		t.Fatal("create failed")
	}

	w := doJSON(t, router, http.MethodPost, "/notes/rename", RenameNoteRequest{OldPath: "Orig.md", NewPath: "moved/Orig.md"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("rename status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/notes/duplicate", PathRequest{Path: "moved/Orig.md"})
	if w.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d, body = %s", w.Code, w.Body.String())
	}
	dup := decode[PathRequest](t, w)
	if dup.Path != "moved/Orig 1.md" {
		t.Errorf("duplicate path = %q", dup.Path)
	}
}

func TestToggleStarEndpoint(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: "Fav"}); w.Code != http.StatusCreated {
		t.Fatal("create failed")
	}
	w := doJSON(t, router, http.MethodPost, "/notes/star", PathRequest{Path: "Fav.md"})
	if w.Code != http.StatusOK {
		t.Fatalf("star status = %d", w.Code)
	}
	resp := decode[StarResponse](t, w)
	if !resp.Starred {
		t.Error("first toggle should star")
	}

	if w := doJSON(t, router, http.MethodPost, "/notes/star", PathRequest{Path: "nope.md"}); w.Code != http.StatusNotFound {
		t.Errorf("missing note star status = %d", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, _, router := testEnv(t, "")

	for _, title := range []string{"Projects", "My Projects", "Protein Research"} {
		if w := doJSON(t, router, http.MethodPost, "/notes", CreateNoteRequest{Title: title}); w.Code != http.StatusCreated {
			t.Fatalf("create %q failed", title)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/search?q=Proj", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	resp := decode[SearchResponse](t, w)
	if len(resp.Results) != 3 || resp.Results[0].Title != "Projects" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestBacklinksAndLinksEndpoints(t *testing.T) {
	_, store, router := testEnv(t, "")

	if err := store.Write("a.md", []byte("see [[Hub]] here\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("hub.md", []byte("---\ntitle: Hub\n---\nbody\n")); err != nil {
		t.Fatal(err)
	}
	if w := doJSON(t, router, http.MethodPost, "/reindex", nil); w.Code != http.StatusAccepted {
		t.Fatalf("reindex status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/backlinks?title=Hub", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("backlinks status = %d", w.Code)
	}
	resp := decode[BacklinksResponse](t, w)
	if len(resp.Backlinks) != 1 || resp.Backlinks[0].SourcePath != "a.md" {
		t.Errorf("backlinks = %+v", resp.Backlinks)
	}
	if resp.Backlinks[0].Context != "see [[Hub]] here" {
		t.Errorf("context = %q", resp.Backlinks[0].Context)
	}

	w = doJSON(t, router, http.MethodGet, "/links", nil)
	links := decode[LinksResponse](t, w)
	if len(links.Links) != 1 || links.Links[0].TargetName != "Hub" {
		t.Errorf("links = %+v", links.Links)
	}

	w = doJSON(t, router, http.MethodGet, "/links?source=a.md", nil)
	var out struct {
		Source  string   `json:"source"`
		Targets []string `json:"targets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Targets) != 1 || out.Targets[0] != "Hub" {
		t.Errorf("targets = %+v", out.Targets)
	}
}

func TestTagsAndOutlineEndpoints(t *testing.T) {
	_, store, router := testEnv(t, "")

	content := "# Top\ntext #alpha and #beta\n## Sub\nmore #alpha... no wait\n"
	if err := store.Write("tagged.md", []byte(content)); err != nil {
		t.Fatal(err)
	}
	if w := doJSON(t, router, http.MethodPost, "/reindex", nil); w.Code != http.StatusAccepted {
		t.Fatal("reindex failed")
	}

	w := doJSON(t, router, http.MethodGet, "/tags", nil)
	tags := decode[TagsResponse](t, w)
	if len(tags.Tags) != 2 {
		t.Fatalf("tags = %+v", tags.Tags)
	}

	w = doJSON(t, router, http.MethodGet, "/tags/notes?tag=%23alpha", nil)
	var byTag struct {
		Tag   string   `json:"tag"`
		Notes []string `json:"notes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &byTag); err != nil {
		t.Fatal(err)
	}
	if len(byTag.Notes) != 1 || byTag.Notes[0] != "tagged.md" {
		t.Errorf("notes by tag = %+v", byTag.Notes)
	}

	w = doJSON(t, router, http.MethodGet, "/outline/tagged.md", nil)
	outline := decode[OutlineResponse](t, w)
	if len(outline.Headings) != 2 || outline.Headings[0].Text != "Top" || outline.Headings[1].Level != 2 {
		t.Errorf("outline = %+v", outline.Headings)
	}
}

func TestVaultListingEndpoint(t *testing.T) {
	_, store, router := testEnv(t, "")

	if err := store.Write("dir/inner.md", []byte("x\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("top.md", []byte("y\n")); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/vault", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("vault status = %d", w.Code)
	}
	resp := decode[VaultResponse](t, w)
	if len(resp.Entries) != 3 {
		t.Fatalf("entries = %+v", resp.Entries)
	}
	if !resp.Entries[0].IsDir {
		t.Error("directories should sort first")
	}
}

func TestSettingsEndpoints(t *testing.T) {
	_, _, router := testEnv(t, "")

	if w := doJSON(t, router, http.MethodGet, "/settings/theme", nil); w.Code != http.StatusNotFound {
		t.Errorf("unset setting status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPut, "/settings/theme", SettingRequest{Value: "dark"}); w.Code != http.StatusNoContent {
		t.Errorf("put setting status = %d", w.Code)
	}
	w := doJSON(t, router, http.MethodGet, "/settings/theme", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get setting status = %d", w.Code)
	}
	resp := decode[SettingResponse](t, w)
	if resp.Value != "dark" {
		t.Errorf("value = %q", resp.Value)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, _, router := testEnv(t, "secret-token")

	// No token.
	if w := doJSON(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", w.Code)
	}

	// Wrong token.
	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d", w.Code)
	}

	// Valid token.
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d", w.Code)
	}
}
