package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// SyncHandler pulls content from the configured GitHub source into the
// local content roots
type SyncHandler struct {
	github         interfaces.GitHubConnector
	contentService interfaces.ContentService
	config         *common.Config
	logger         arbor.ILogger
}

func NewSyncHandler(
	github interfaces.GitHubConnector,
	contentService interfaces.ContentService,
	config *common.Config,
	logger arbor.ILogger,
) *SyncHandler {
	return &SyncHandler{
		github:         github,
		contentService: contentService,
		config:         config,
		logger:         logger,
	}
}

// SyncGitHubHandler fetches the repository's content tree into the local
// content root and rescans. The repo's content path mirrors the local
// layout: <path>/posts and <path>/pages map onto the configured roots.
func (h *SyncHandler) SyncGitHubHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if h.github == nil {
		WriteError(w, http.StatusBadRequest, "GitHub source not configured")
		return
	}

	destDir := filepath.Dir(h.config.Content.PostsDir)
	syncReport, err := h.github.FetchContent(r.Context(), destDir)
	if err != nil {
		h.logger.Error().Err(err).Msg("GitHub sync failed")
		WriteError(w, http.StatusBadGateway, "GitHub sync failed: "+err.Error())
		return
	}

	scanReport, err := h.contentService.Reconcile(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Rescan after sync failed")
		WriteError(w, http.StatusInternalServerError, "Rescan after sync failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     !scanReport.Failed(),
		"sync_report": syncReport,
		"scan_report": scanReport,
	})
}
