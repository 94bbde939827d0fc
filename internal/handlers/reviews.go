package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"filmlog/internal/engine"
	"filmlog/internal/types"
	"filmlog/internal/utils"
)

type ReviewHandler struct {
	db     *sql.DB
	engine *engine.Engine
}

func NewReviewHandler(db *sql.DB, eng *engine.Engine) *ReviewHandler {
	return &ReviewHandler{db: db, engine: eng}
}

// Upsert creates or overwrites the caller's review for a movie and returns
// the saved review.
func (h *ReviewHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	var req types.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MovieID == "" {
		utils.RespondError(w, "movieId is required", http.StatusBadRequest)
		return
	}

	review, err := h.engine.UpsertReview(user.ID, &req)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, review, http.StatusOK)
}

// CheckStatus returns the caller's composite status for a movie.
func (h *ReviewHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	movieID := strings.TrimSpace(utils.GetPathParam(r, "movieId"))
	status, err := h.engine.CheckStatus(user.ID, movieID, user.ID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, status, http.StatusOK)
}

// UserMovieStatus returns another user's status for a movie. The caller's
// identity is optional; without it ViewerLikedReview stays false.
func (h *ReviewHandler) UserMovieStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetPathParamInt64(r, "userId")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	movieID := strings.TrimSpace(utils.GetPathParam(r, "movieId"))

	var viewerID int64
	if viewer := optionalUser(h.db, r); viewer != nil {
		viewerID = viewer.ID
	}

	status, err := h.engine.CheckStatus(userID, movieID, viewerID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, status, http.StatusOK)
}

// FriendReviews returns the caller's friend review feed, newest first.
func (h *ReviewHandler) FriendReviews(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	feed, err := h.engine.FriendReviews(user.ID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, feed, http.StatusOK)
}

// UserReviews lists one user's reviews with like-count aggregates; a
// public read with optional caller identity.
func (h *ReviewHandler) UserReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetPathParamInt64(r, "userId")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var viewerID int64
	if viewer := optionalUser(h.db, r); viewer != nil {
		viewerID = viewer.ID
	}

	feed, err := h.engine.UserReviews(userID, viewerID)
	if err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondJSON(w, feed, http.StatusOK)
}

// SearchByTag returns reviews carrying the given tag.
func (h *ReviewHandler) SearchByTag(w http.ResponseWriter, r *http.Request) {
	tag := utils.GetQueryParam(r, "tag", "")
	if tag == "" {
		utils.RespondError(w, "tag is required", http.StatusBadRequest)
		return
	}

	reviews, err := h.engine.ReviewsByTag(tag)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	if reviews == nil {
		reviews = []*types.Review{}
	}

	utils.RespondJSON(w, reviews, http.StatusOK)
}

// Like records the caller's like on a review.
func (h *ReviewHandler) Like(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	reviewID, err := utils.GetPathParamInt64(r, "reviewId")
	if err != nil {
		utils.RespondError(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	if err := h.engine.LikeReview(user.ID, reviewID); err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondMessage(w, "Review liked")
}

// Unlike removes the caller's like on a review. Idempotent.
func (h *ReviewHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	reviewID, err := utils.GetPathParamInt64(r, "reviewId")
	if err != nil {
		utils.RespondError(w, "Invalid review ID", http.StatusBadRequest)
		return
	}

	if err := h.engine.UnlikeReview(user.ID, reviewID); err != nil {
		respondEngineError(w, err)
		return
	}

	utils.RespondMessage(w, "Review unliked")
}
