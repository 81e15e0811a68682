package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/services/frontmatter"
)

// ImportHandler converts legacy HTML documents into markdown content
// units and lands them in the posts root
type ImportHandler struct {
	transformService interfaces.TransformService
	contentService   interfaces.ContentService
	config           *common.Config
	logger           arbor.ILogger
}

func NewImportHandler(
	transformService interfaces.TransformService,
	contentService interfaces.ContentService,
	config *common.Config,
	logger arbor.ILogger,
) *ImportHandler {
	return &ImportHandler{
		transformService: transformService,
		contentService:   contentService,
		config:           config,
		logger:           logger,
	}
}

// ImportRequest is the POST /api/import/html request body
type ImportRequest struct {
	HTML    string `json:"html"`
	BaseURL string `json:"base_url,omitempty"`
}

// ImportHTMLHandler converts the posted HTML to a markdown unit, writes
// it into the posts root and rescans so the unit lands in the catalog.
// A scan that finds integrity errors removes the written file again so
// a bad import cannot poison the content root.
func (h *ImportHandler) ImportHTMLHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.HTML == "" {
		WriteError(w, http.StatusBadRequest, "Missing html field")
		return
	}

	unit, err := h.transformService.ImportHTML(req.HTML, req.BaseURL)
	if err != nil {
		h.logger.Warn().Err(err).Msg("HTML import rejected")
		WriteError(w, http.StatusBadRequest, "Import failed: "+err.Error())
		return
	}

	data, err := frontmatter.MarshalUnit(unit)
	if err != nil {
		h.logger.Error().Err(err).Str("slug", unit.Slug).Msg("Failed to serialize imported unit")
		http.Error(w, "Failed to serialize imported unit", http.StatusInternalServerError)
		return
	}

	path := filepath.Join(h.config.Content.PostsDir, unit.Slug+".md")
	if _, err := os.Stat(path); err == nil {
		WriteError(w, http.StatusConflict, "Content file already exists: "+path)
		return
	}

	if err := os.MkdirAll(h.config.Content.PostsDir, 0755); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create posts directory")
		http.Error(w, "Failed to write content file", http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		h.logger.Error().Err(err).Str("path", path).Msg("Failed to write content file")
		http.Error(w, "Failed to write content file", http.StatusInternalServerError)
		return
	}

	report, err := h.contentService.Reconcile(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Rescan after import failed")
		http.Error(w, "Rescan after import failed", http.StatusInternalServerError)
		return
	}

	if report.Failed() {
		if rmErr := os.Remove(path); rmErr != nil {
			h.logger.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove rejected import file")
		}
		WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"status": "rejected",
			"slug":   unit.Slug,
			"errors": report.Errors,
		})
		return
	}

	h.logger.Info().
		Str("slug", unit.Slug).
		Str("path", path).
		Msg("Imported HTML document as content unit")

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "imported",
		"slug":   unit.Slug,
		"path":   path,
		"report": report,
	})
}
