package handlers

import (
	"database/sql"
	"net/http"

	"filmlog/internal/engine"
	"filmlog/internal/services"
	"filmlog/internal/utils"
)

type MovieHandler struct {
	db      *sql.DB
	engine  *engine.Engine
	catalog *services.Catalog
}

func NewMovieHandler(db *sql.DB, eng *engine.Engine, catalog *services.Catalog) *MovieHandler {
	return &MovieHandler{db: db, engine: eng, catalog: catalog}
}

// GetMovie proxies the TMDB movie document. Upstream failure and an
// unknown id both come back as 404.
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movieID := utils.GetPathParam(r, "id")

	doc := h.catalog.GetMovie(r.Context(), movieID)
	if doc == nil {
		utils.RespondError(w, "Movie not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

// FriendActivity reports what the caller's friends did with a movie.
// Anonymous callers get an empty list, not an error.
func (h *MovieHandler) FriendActivity(w http.ResponseWriter, r *http.Request) {
	movieID := utils.GetPathParam(r, "id")

	var viewerID int64
	if viewer := optionalUser(h.db, r); viewer != nil {
		viewerID = viewer.ID
	}

	activity, err := h.engine.FriendActivity(viewerID, movieID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, activity, http.StatusOK)
}

func (h *MovieHandler) Trending(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, h.catalog.GetTrending(r.Context()), http.StatusOK)
}

func (h *MovieHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, h.catalog.GetTopRated(r.Context()), http.StatusOK)
}

// Search returns the first page of movie results as a bare list.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	result := h.catalog.SearchMovies(r.Context(), query, 1)
	utils.RespondJSON(w, result.Results, http.StatusOK)
}

// SearchPaginated returns the full paged envelope.
func (h *MovieHandler) SearchPaginated(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	page := utils.GetQueryParamInt(r, "page", 1)
	utils.RespondJSON(w, h.catalog.SearchMovies(r.Context(), query, page), http.StatusOK)
}

func (h *MovieHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	result := h.catalog.SearchPeople(r.Context(), query, 1)
	utils.RespondJSON(w, result.Results, http.StatusOK)
}

func (h *MovieHandler) SearchPeoplePaginated(w http.ResponseWriter, r *http.Request) {
	query := utils.GetQueryParam(r, "query", "")
	page := utils.GetQueryParamInt(r, "page", 1)
	utils.RespondJSON(w, h.catalog.SearchPeople(r.Context(), query, page), http.StatusOK)
}

func (h *MovieHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID := utils.GetPathParam(r, "id")

	doc := h.catalog.GetPerson(r.Context(), personID)
	if doc == nil {
		utils.RespondError(w, "Person not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

func (h *MovieHandler) GetPersonCredits(w http.ResponseWriter, r *http.Request) {
	personID := utils.GetPathParam(r, "id")

	doc := h.catalog.GetPersonCredits(r.Context(), personID)
	if doc == nil {
		utils.RespondError(w, "Person not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}
