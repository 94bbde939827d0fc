package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"filmlog/internal/services"
	"filmlog/internal/utils"
)

type PlexHandler struct {
	db       *sql.DB
	importer *services.PlexImporter
}

func NewPlexHandler(db *sql.DB, importer *services.PlexImporter) *PlexHandler {
	return &PlexHandler{db: db, importer: importer}
}

// Connect stores the caller's Plex token so imports can run against their
// servers.
func (h *PlexHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		utils.RespondError(w, "Missing Plex token", http.StatusBadRequest)
		return
	}

	if err := h.importer.ConnectAccount(user.ID, req.Token); err != nil {
		utils.RespondError(w, "Failed to connect Plex account", http.StatusInternalServerError)
		return
	}

	utils.RespondMessage(w, "Plex account connected")
}

func (h *PlexHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	if err := h.importer.DisconnectAccount(user.ID); err != nil {
		utils.RespondError(w, "Failed to disconnect Plex account", http.StatusInternalServerError)
		return
	}

	utils.RespondMessage(w, "Plex account disconnected")
}

// Import walks the caller's Plex movie libraries and records each matched
// movie as watched.
func (h *PlexHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	result, err := h.importer.ImportWatched(r.Context(), user.ID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, result, http.StatusOK)
}
