package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"filmlog/internal/database"
	"filmlog/internal/engine"
	"filmlog/internal/types"
	"filmlog/internal/utils"
)

// EntryHandler serves one of the three presence lists. The likes, watched
// and watchlist endpoints differ only in the table they hit, the wording of
// their responses and the field name of their check endpoint.
type EntryHandler struct {
	db         *sql.DB
	engine     *engine.Engine
	table      database.EntryTable
	noun       string // used in response messages, e.g. "likes"
	checkField string // e.g. "isLiked"
}

func NewLikesHandler(db *sql.DB, eng *engine.Engine) *EntryHandler {
	return &EntryHandler{db: db, engine: eng, table: database.TableLikes, noun: "likes", checkField: "isLiked"}
}

func NewWatchedHandler(db *sql.DB, eng *engine.Engine) *EntryHandler {
	return &EntryHandler{db: db, engine: eng, table: database.TableWatched, noun: "watched list", checkField: "isWatched"}
}

func NewWatchlistHandler(db *sql.DB, eng *engine.Engine) *EntryHandler {
	return &EntryHandler{db: db, engine: eng, table: database.TableWatchlist, noun: "watchlist", checkField: "inWatchlist"}
}

// List returns the caller's entries, newest first.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	entries, err := h.engine.ListEntries(h.table, user.ID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if entries == nil {
		entries = []*types.MovieEntry{}
	}
	utils.RespondJSON(w, entries, http.StatusOK)
}

// ListForUser returns another user's entries; a public read.
func (h *EntryHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetPathParamInt64(r, "userId")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	entries, err := h.engine.ListEntries(h.table, userID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if entries == nil {
		entries = []*types.MovieEntry{}
	}
	utils.RespondJSON(w, entries, http.StatusOK)
}

// Check reports whether the caller has an entry for the movie.
func (h *EntryHandler) Check(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	movieID := utils.GetPathParam(r, "movieId")
	exists, err := h.engine.EntryExists(h.table, user.ID, movieID)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	utils.RespondJSON(w, map[string]bool{h.checkField: exists}, http.StatusOK)
}

// Add toggles the entry on. A duplicate toggle returns 409.
func (h *EntryHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	var req types.MovieEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MovieID == "" {
		utils.RespondError(w, "movieId is required", http.StatusBadRequest)
		return
	}

	var err error
	switch h.table {
	case database.TableLikes:
		_, err = h.engine.ToggleLike(user.ID, &req)
	case database.TableWatched:
		_, err = h.engine.ToggleWatched(user.ID, &req)
	case database.TableWatchlist:
		_, err = h.engine.ToggleWatchlist(user.ID, &req)
	}
	if err != nil {
		if errors.Is(err, engine.ErrAlreadyExists) {
			utils.RespondError(w, "Movie already in "+h.noun, http.StatusConflict)
			return
		}
		respondEngineError(w, err)
		return
	}

	utils.RespondMessage(w, "Added to "+h.noun)
}

// Remove toggles the entry off. Removing an absent entry still succeeds.
func (h *EntryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	movieID := utils.GetPathParam(r, "movieId")
	var err error
	switch h.table {
	case database.TableLikes:
		err = h.engine.RemoveLike(user.ID, movieID)
	case database.TableWatched:
		err = h.engine.RemoveWatched(user.ID, movieID)
	case database.TableWatchlist:
		err = h.engine.RemoveWatchlist(user.ID, movieID)
	}
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondMessage(w, "Removed from "+h.noun)
}
