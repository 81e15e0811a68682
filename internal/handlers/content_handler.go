package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

type ContentHandler struct {
	contentService  interfaces.ContentService
	analysisService interfaces.AnalysisService
	logger          arbor.ILogger
}

func NewContentHandler(contentService interfaces.ContentService, analysisService interfaces.AnalysisService, logger arbor.ILogger) *ContentHandler {
	return &ContentHandler{
		contentService:  contentService,
		analysisService: analysisService,
		logger:          logger,
	}
}

// ListPostsHandler returns posts ordered newest first with optional
// tag, category and pagination filters
func (h *ContentHandler) ListPostsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	limit, offset := GetListParams(r)

	opts := &interfaces.ListOptions{
		Kind:     models.KindPost,
		Tag:      query.Get("tag"),
		Category: query.Get("category"),
		Limit:    limit,
		Offset:   offset,
	}

	posts, err := h.contentService.ListPosts(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list posts")
		http.Error(w, "Failed to list posts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"posts":  posts,
		"count":  len(posts),
		"limit":  limit,
		"offset": offset,
	})
}

// ListPagesHandler returns pages in menu weight order
func (h *ContentHandler) ListPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	pages, err := h.contentService.ListPages(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list pages")
		http.Error(w, "Failed to list pages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"pages": pages,
		"count": len(pages),
	})
}

// GetContentHandler returns a single unit by slug. Handles
// GET /api/content/{slug} with optional ?analysis=true for derived
// body metadata.
func (h *ContentHandler) GetContentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	slug := extractSlug(r.URL.Path, "/revisions")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "Missing slug in path")
		return
	}

	unit, err := h.contentService.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Content not found: "+slug)
			return
		}
		h.logger.Error().Err(err).Str("slug", slug).Msg("Failed to get content")
		http.Error(w, "Failed to get content", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("analysis") == "true" {
		analysis, err := h.analysisService.Analyze(unit)
		if err != nil {
			h.logger.Error().Err(err).Str("slug", slug).Msg("Failed to analyze content body")
			http.Error(w, "Failed to analyze content", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"unit":     unit,
			"analysis": analysis,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(unit)
}

// ListRevisionsHandler returns the saved revisions of a unit, newest
// first. Handles GET /api/content/{slug}/revisions.
func (h *ContentHandler) ListRevisionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	slug := extractSlug(r.URL.Path, "/revisions")
	if slug == "" {
		WriteError(w, http.StatusBadRequest, "Missing slug in path")
		return
	}

	revisions, err := h.contentService.ListRevisions(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Content not found: "+slug)
			return
		}
		h.logger.Error().Err(err).Str("slug", slug).Msg("Failed to list revisions")
		http.Error(w, "Failed to list revisions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"slug":      slug,
		"revisions": revisions,
		"count":     len(revisions),
	})
}

// TagsHandler returns all post tags with usage counts
func (h *ContentHandler) TagsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	tags, err := h.contentService.Tags(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get tags")
		http.Error(w, "Failed to get tags", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tags": tags,
	})
}

// CategoriesHandler returns all post categories with usage counts
func (h *ContentHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	categories, err := h.contentService.Categories(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get categories")
		http.Error(w, "Failed to get categories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"categories": categories,
	})
}

// StatsHandler returns catalog statistics
func (h *ContentHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.contentService.GetStats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get content stats")
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ValidateHandler checks the catalog for integrity violations without
// changing it. Returns every violation so the operator can fix them in
// one pass.
func (h *ContentHandler) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	violations := h.contentService.Validate(r.Context())
	messages := make([]string, 0, len(violations))
	for _, v := range violations {
		messages = append(messages, v.Error())
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(messages) == 0,
		"errors": messages,
		"count":  len(messages),
	})
}

// extractSlug pulls the slug segment from /api/content/{slug} paths,
// stripping a trailing subresource suffix when present
func extractSlug(path, suffix string) string {
	slug := strings.TrimPrefix(path, "/api/content/")
	slug = strings.TrimSuffix(slug, suffix)
	return strings.Trim(slug, "/")
}
