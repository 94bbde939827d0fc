package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"filmlog/internal/database"
	"filmlog/internal/types"
	"filmlog/internal/utils"
)

type UserHandler struct {
	db *sql.DB
}

func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Me returns the caller's own profile, creating it on first request.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}
	utils.RespondJSON(w, user, http.StatusOK)
}

// GetUser returns a public profile by id, with follower counts and whether
// the caller follows them.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetPathParamInt64(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := database.GetUserByID(h.db, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(w, "User not found", http.StatusNotFound)
			return
		}
		utils.RespondError(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	followers, err := database.GetFollowers(h.db, userID)
	if err != nil {
		utils.RespondError(w, "Failed to get followers", http.StatusInternalServerError)
		return
	}
	following, err := database.GetFollowing(h.db, userID)
	if err != nil {
		utils.RespondError(w, "Failed to get following", http.StatusInternalServerError)
		return
	}

	profile := map[string]any{
		"id":             user.ID,
		"name":           user.Name,
		"avatarUrl":      user.AvatarURL,
		"followersCount": len(followers),
		"followingCount": len(following),
	}

	if viewer := optionalUser(h.db, r); viewer != nil && viewer.ID != userID {
		isFollowing, err := database.IsFollowing(h.db, userID, viewer.ID)
		if err == nil {
			profile["isFollowing"] = isFollowing
		}
	}

	utils.RespondJSON(w, profile, http.StatusOK)
}

// Follow adds the caller as a follower of the target user.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	targetID, err := utils.GetPathParamInt64(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if _, err := database.GetUserByID(h.db, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.RespondError(w, "User not found", http.StatusNotFound)
			return
		}
		utils.RespondError(w, "Failed to get user", http.StatusInternalServerError)
		return
	}

	if err := database.Follow(h.db, targetID, user.ID); err != nil {
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.RespondMessage(w, "Followed user")
}

// Unfollow removes the caller from the target user's followers. Unfollowing
// someone you never followed is a no-op.
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := currentUser(h.db, w, r)
	if user == nil {
		return
	}

	targetID, err := utils.GetPathParamInt64(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := database.Unfollow(h.db, targetID, user.ID); err != nil {
		utils.RespondError(w, "Failed to unfollow user", http.StatusInternalServerError)
		return
	}

	utils.RespondMessage(w, "Unfollowed user")
}

// Following lists the users the target user follows.
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, database.GetFollowing)
}

// Followers lists the target user's followers.
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listEdges(w, r, database.GetFollowers)
}

func (h *UserHandler) listEdges(w http.ResponseWriter, r *http.Request, list func(*sql.DB, int64) ([]*types.User, error)) {
	userID, err := utils.GetPathParamInt64(r, "id")
	if err != nil {
		utils.RespondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	users, err := list(h.db, userID)
	if err != nil {
		utils.RespondError(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	public := make([]types.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, types.PublicUser{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, Bio: u.Bio})
	}
	utils.RespondJSON(w, public, http.StatusOK)
}
