package handlers

import (
	"encoding/json"
	"net/http"

	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
)

const maxActionBody = 4 << 10

// WidgetAction performs a widget tap (REFRESH, OPEN_APP, CHANGE_USER).
func (h *Handler) WidgetAction(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var req domainwidgets.ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxActionBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid action body", logger)
		return
	}
	action, err := domainwidgets.ParseAction(string(req.Action))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown widget action", logger)
		return
	}
	req.Action = action

	ref, err := h.reference(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	result, err := h.widgets.HandleAction(r.Context(), req, ref)
	if err != nil {
		writeServiceError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, result, logger)
}
