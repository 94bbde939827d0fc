package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"filmlog/internal/auth"
	"filmlog/internal/database"
	"filmlog/internal/engine"
	"filmlog/internal/types"
	"filmlog/internal/utils"
)

// currentUser resolves the authenticated caller to a database user,
// creating the row on first sight. Returns nil after writing the response
// when the request carries no usable identity.
func currentUser(db *sql.DB, w http.ResponseWriter, r *http.Request) *types.User {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	user, err := database.GetOrCreateUser(db, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		utils.RespondError(w, "Failed to resolve user", http.StatusInternalServerError)
		return nil
	}
	return user
}

// optionalUser resolves the caller when a token is present, or returns nil
// without writing anything for anonymous requests.
func optionalUser(db *sql.DB, r *http.Request) *types.User {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		return nil
	}
	user, err := database.GetOrCreateUser(db, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		return nil
	}
	return user
}

// respondEngineError maps the engine's error taxonomy onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrAlreadyExists):
		utils.RespondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrNotFound):
		utils.RespondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrUnauthenticated):
		utils.RespondError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, engine.ErrInvalidInput):
		utils.RespondError(w, err.Error(), http.StatusBadRequest)
	default:
		utils.RespondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
