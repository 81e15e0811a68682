package handlers

import (
	"net/http"

	"github.com/ternarybob/folio/internal/interfaces"
)

// ScanHandler handles scan trigger and scheduler endpoints
type ScanHandler struct {
	schedulerService interfaces.SchedulerService
	contentService   interfaces.ContentService
}

// NewScanHandler creates a new scan handler
func NewScanHandler(
	schedulerService interfaces.SchedulerService,
	contentService interfaces.ContentService,
) *ScanHandler {
	return &ScanHandler{
		schedulerService: schedulerService,
		contentService:   contentService,
	}
}

// TriggerScanHandler runs a full reconcile of the content roots against
// the catalog and returns the scan report
func (h *ScanHandler) TriggerScanHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	report, err := h.contentService.Reconcile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": !report.Failed(),
		"report":  report,
	})
}

// JobStatusHandler returns the status of all scheduled jobs
func (h *ScanHandler) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.schedulerService.IsRunning(),
		"jobs":    h.schedulerService.GetAllJobStatuses(),
	})
}
