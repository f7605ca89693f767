package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/starwishes/Nav/internal/bookmark"
	"github.com/starwishes/Nav/internal/favicon"
	"github.com/starwishes/Nav/internal/models"
)

// Bookmarks groups the handlers that read and edit the bookmark tree.
// Item and category inputs are validated by the service after
// normalization, so their handlers only decode.
type Bookmarks struct {
	service *bookmark.Service
	client  *http.Client
}

// NewBookmarks creates the bookmark handler group. client is used for
// link checks.
func NewBookmarks(service *bookmark.Service, client *http.Client) *Bookmarks {
	return &Bookmarks{service: service, client: client}
}

// Search matches ?q= against items, newest visits first for an empty query.
func (b *Bookmarks) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	results, err := b.service.Search(r.Context(), q, queryInt(r, "limit", 0))
	if err != nil {
		fail(w, r, "search", err)
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// CheckURL reports whether ?url= is already bookmarked.
func (b *Bookmarks) CheckURL(w http.ResponseWriter, r *http.Request) {
	it, err := b.service.CheckURL(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		fail(w, r, "check url", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exists": it != nil, "item": it})
}

// AddItem creates a bookmark.
func (b *Bookmarks) AddItem(w http.ResponseWriter, r *http.Request) {
	var in models.ItemInput
	if !readJSON(w, r, &in) {
		return
	}
	it, err := b.service.AddItem(r.Context(), actor(r), in)
	if err != nil {
		fail(w, r, "add item", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateItem replaces the editable fields of a bookmark.
func (b *Bookmarks) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in models.ItemInput
	if !readJSON(w, r, &in) {
		return
	}
	it, err := b.service.UpdateItem(r.Context(), actor(r), id, in)
	if err != nil {
		fail(w, r, "update item", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem moves a bookmark to the recycle bin.
func (b *Bookmarks) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	entry, err := b.service.DeleteItem(r.Context(), actor(r), id)
	if err != nil {
		fail(w, r, "delete item", err)
		return
	}
	writeOK(w, map[string]any{"recycleId": entry.ID})
}

// AddCategory creates a category at the end of the list.
func (b *Bookmarks) AddCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !readJSON(w, r, &in) {
		return
	}
	c, err := b.service.AddCategory(r.Context(), actor(r), in)
	if err != nil {
		fail(w, r, "add category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCategory replaces the editable fields of a category.
func (b *Bookmarks) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var in models.CategoryInput
	if !readJSON(w, r, &in) {
		return
	}
	c, err := b.service.UpdateCategory(r.Context(), actor(r), id, in)
	if err != nil {
		fail(w, r, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory removes a category. Its items stay, detached.
func (b *Bookmarks) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := b.service.DeleteCategory(r.Context(), actor(r), id); err != nil {
		fail(w, r, "delete category", err)
		return
	}
	writeOK(w, nil)
}

// Graph returns the raw tree, hidden entries included.
func (b *Bookmarks) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := b.service.Graph(r.Context())
	if err != nil {
		fail(w, r, "load graph", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// replaceRequest accepts the tree either wrapped in "content" or bare.
type replaceRequest struct {
	Content    *models.Graph     `json:"content"`
	Categories []models.Category `json:"categories"`
	Items      []models.Item     `json:"items"`
}

func (req *replaceRequest) graph() (*models.Graph, error) {
	if req.Content != nil {
		return req.Content, nil
	}
	if req.Categories == nil && req.Items == nil {
		return nil, errors.New("missing content")
	}
	return &models.Graph{Categories: req.Categories, Items: req.Items}, nil
}

// ReplaceAll stores the posted tree in place of the current one.
func (b *Bookmarks) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if !decode(w, r, &req) {
		return
	}
	g, err := req.graph()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := b.service.ReplaceAll(r.Context(), actor(r), g); err != nil {
		fail(w, r, "replace bookmarks", err)
		return
	}
	writeOK(w, map[string]any{
		"categories": len(g.Categories),
		"items":      len(g.Items),
	})
}

type linkCheckRequest struct {
	URLs []string `json:"urls" validate:"required,max=200"`
}

// CheckLinks probes each posted URL and reports which ones answer.
func (b *Bookmarks) CheckLinks(w http.ResponseWriter, r *http.Request) {
	var req linkCheckRequest
	if !decode(w, r, &req) {
		return
	}
	results := favicon.CheckLinks(r.Context(), b.client, req.URLs)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
