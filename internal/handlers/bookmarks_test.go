package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starwishes/Nav/internal/favicon"
	"github.com/starwishes/Nav/internal/models"
)

var adminSession = testSession("admin", models.LevelAdmin)

func TestAddItem(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	rec := httptest.NewRecorder()
	env.Bookmarks.AddItem(rec, asUser(jsonRequest(t, http.MethodPost, "/api/items", map[string]any{
		"name": "Pkg", "url": " https://pkg.go.dev ", "categoryId": "1", "tags": "docs, go",
	}), adminSession))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	body := decodeBody(t, rec)
	if body["id"] != float64(4) {
		t.Errorf("id: got %v, want 4", body["id"])
	}
	if body["url"] != "https://pkg.go.dev" {
		t.Errorf("url: got %q, want trimmed", body["url"])
	}

	// The read path sees the new item at once.
	g, err := env.Service.Graph(context.Background())
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(g.Items) != 4 {
		t.Errorf("items after add: got %d, want 4", len(g.Items))
	}
}

func TestAddItemRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"missing url", map[string]any{"name": "x", "categoryId": 1}, "url"},
		{"bad url", map[string]any{"url": "not a url", "categoryId": 1}, "url"},
		{"missing category", map[string]any{"url": "https://x.dev"}, "categoryId"},
		{"bad level", map[string]any{"url": "https://x.dev", "categoryId": 1, "level": 9}, "level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Bookmarks.AddItem(rec, asUser(jsonRequest(t, http.MethodPost, "/api/items", tt.body), adminSession))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if field := decodeBody(t, rec)["field"]; field != tt.wantField {
				t.Errorf("field: got %v, want %s", field, tt.wantField)
			}
		})
	}

	rec := httptest.NewRecorder()
	env.Bookmarks.AddItem(rec, asUser(jsonRequest(t, http.MethodPost, "/api/items",
		map[string]any{"url": "https://x.dev", "categoryId": 42}), adminSession))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown category: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUpdateAndDeleteItem(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	rec := httptest.NewRecorder()
	req := withChiURLParam(asUser(jsonRequest(t, http.MethodPut, "/api/items/2", map[string]any{
		"name": "Chi router", "url": "https://go-chi.io", "categoryId": 1, "pinned": true,
	}), adminSession), "id", "2")
	env.Bookmarks.UpdateItem(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if body := decodeBody(t, rec); body["name"] != "Chi router" || body["pinned"] != true {
		t.Errorf("updated item: got %v", body)
	}

	rec = httptest.NewRecorder()
	req = withChiURLParam(asUser(jsonRequest(t, http.MethodPut, "/api/items/99", map[string]any{
		"url": "https://x.dev", "categoryId": 1,
	}), adminSession), "id", "99")
	env.Bookmarks.UpdateItem(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing: got %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = httptest.NewRecorder()
	req = withChiURLParam(asUser(httptest.NewRequest(http.MethodDelete, "/api/items/2", nil), adminSession), "id", "2")
	env.Bookmarks.DeleteItem(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, want %d", rec.Code, http.StatusOK)
	}
	if id, _ := decodeBody(t, rec)["recycleId"].(string); id == "" {
		t.Error("expected a recycle id")
	}

	rec = httptest.NewRecorder()
	env.Bookmarks.DeleteItem(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete twice: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	rec := httptest.NewRecorder()
	env.Bookmarks.AddCategory(rec, asUser(jsonRequest(t, http.MethodPost, "/api/categories",
		map[string]any{"name": "News", "minLevel": "1"}), adminSession))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	if body := decodeBody(t, rec); body["id"] != float64(3) || body["level"] != float64(1) {
		t.Errorf("added category: got %v", body)
	}

	rec = httptest.NewRecorder()
	req := withChiURLParam(asUser(jsonRequest(t, http.MethodPut, "/api/categories/3",
		map[string]any{"name": "Headlines"}), adminSession), "id", "3")
	env.Bookmarks.UpdateCategory(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	req = withChiURLParam(asUser(httptest.NewRequest(http.MethodDelete, "/api/categories/1", nil), adminSession), "id", "1")
	env.Bookmarks.DeleteCategory(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d, want %d", rec.Code, http.StatusOK)
	}

	// Items of a deleted category are kept but no longer visible.
	g, _ := env.Service.Graph(context.Background())
	if len(g.Items) != 3 {
		t.Errorf("items after category delete: got %d, want 3", len(g.Items))
	}
	rec = httptest.NewRecorder()
	env.Public.Data(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/data", nil), adminSession))
	if items := decodeBody(t, rec)["items"].([]any); len(items) != 1 {
		t.Errorf("visible items: got %d, want 1", len(items))
	}

	rec = httptest.NewRecorder()
	env.Bookmarks.DeleteCategory(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete twice: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestReplaceAll(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	graph := map[string]any{
		"categories": []map[string]any{{"id": 10, "name": "Only"}},
		"items":      []map[string]any{{"id": 7, "name": "One", "url": "https://one.dev", "categoryId": 10}},
	}
	tests := []struct {
		name string
		body any
	}{
		{"wrapped", map[string]any{"content": graph}},
		{"bare", graph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Bookmarks.ReplaceAll(rec, asUser(jsonRequest(t, http.MethodPut, "/api/data", tt.body), adminSession))
			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
			}
			g, _ := env.Service.Graph(context.Background())
			if len(g.Categories) != 1 || len(g.Items) != 1 || g.Items[0].ID != 7 {
				t.Errorf("graph: got %+v", g)
			}
		})
	}

	rejected := []struct {
		name string
		body any
	}{
		{"missing content", map[string]any{}},
		{"dangling category", map[string]any{
			"categories": []map[string]any{},
			"items":      []map[string]any{{"id": 1, "url": "https://x.dev", "categoryId": 5}},
		}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.Bookmarks.ReplaceAll(rec, asUser(jsonRequest(t, http.MethodPut, "/api/data", tt.body), adminSession))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestAdminGraphIncludesHidden(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)

	rec := httptest.NewRecorder()
	env.Bookmarks.Graph(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/admin/data", nil), adminSession))
	body := decodeBody(t, rec)
	if items := body["items"].([]any); len(items) != 3 {
		t.Errorf("items: got %d, want 3", len(items))
	}
}

func TestSearchAndCheckURL(t *testing.T) {
	env := newTestEnv(t)
	env.seedGraph(t)
	sess := testSession("alice", models.LevelUser)

	rec := httptest.NewRecorder()
	env.Bookmarks.Search(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/search?q=chi", nil), sess))
	results := decodeBody(t, rec)["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("results: got %d, want 1", len(results))
	}
	if name := results[0].(map[string]any)["categoryName"]; name != "Tools" {
		t.Errorf("categoryName: got %v, want Tools", name)
	}

	rec = httptest.NewRecorder()
	env.Bookmarks.Search(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/search?q=nomatch", nil), sess))
	if results := decodeBody(t, rec)["results"].([]any); len(results) != 0 {
		t.Errorf("no match: got %d results", len(results))
	}

	tests := []struct {
		url  string
		want bool
	}{
		{"https://GO.dev", true},
		{"  https://go.dev  ", true},
		{"https://unknown.dev", false},
		{"", false},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/check-url", nil)
		q := req.URL.Query()
		q.Set("url", tt.url)
		req.URL.RawQuery = q.Encode()
		env.Bookmarks.CheckURL(rec, asUser(req, sess))
		if got := decodeBody(t, rec)["exists"]; got != tt.want {
			t.Errorf("CheckURL(%q): got %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestCheckLinksHandler(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	rec := httptest.NewRecorder()
	env.Bookmarks.CheckLinks(rec, asUser(jsonRequest(t, http.MethodPost, "/api/check-links",
		map[string]any{"urls": []string{srv.URL + "/ok", srv.URL + "/gone"}}), adminSession))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	results := decodeBody(t, rec)["results"].([]any)
	want := []string{favicon.LinkOK, favicon.LinkError}
	if len(results) != len(want) {
		t.Fatalf("results: got %d, want %d", len(results), len(want))
	}
	for i, r := range results {
		if got := r.(map[string]any)["status"]; got != want[i] {
			t.Errorf("result %d: got %v, want %s", i, got, want[i])
		}
	}

	rec = httptest.NewRecorder()
	env.Bookmarks.CheckLinks(rec, asUser(jsonRequest(t, http.MethodPost, "/api/check-links",
		map[string]any{}), adminSession))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing urls: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
