package database

import (
	"database/sql"
	"fmt"
	"time"

	"filmlog/internal/types"
)

const userColumns = "id, email, name, password, provider, provider_id, avatar_url, bio, gender, created_at"

func scanUser(row interface{ Scan(...any) error }) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Provider,
		&user.ProviderID, &user.AvatarURL, &user.Bio, &user.Gender, &user.Created)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUser finds a user by email or creates a new one. The identity
// provider is treated as the source of truth for name and avatar.
func GetOrCreateUser(db *sql.DB, email, name, avatarURL string) (*types.User, error) {
	user, err := GetUserByEmail(db, email)
	if err == nil {
		avatarChanged := avatarURL != "" && (user.AvatarURL == nil || *user.AvatarURL != avatarURL)
		if user.Name != name || avatarChanged {
			_, err = db.Exec(`
				UPDATE users SET name = ?, avatar_url = COALESCE(NULLIF(?, ''), avatar_url)
				WHERE email = ?
			`, name, avatarURL, email)
			if err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
			user.Name = name
			if avatarURL != "" {
				user.AvatarURL = &avatarURL
			}
		}
		return user, nil
	}

	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	result, err := db.Exec(`
		INSERT INTO users (email, name, avatar_url, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?)
	`, email, name, avatarURL, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user = &types.User{
		ID:      userID,
		Email:   email,
		Name:    name,
		Created: time.Now().UTC(),
	}
	if avatarURL != "" {
		user.AvatarURL = &avatarURL
	}

	return user, nil
}

func GetUserByEmail(db *sql.DB, email string) (*types.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func GetUserByID(db *sql.DB, id int64) (*types.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// Follow records that follower follows target. A single edge row keeps the
// followers and following views consistent: both are queries over the same
// edge set, so one insert updates both sides.
func Follow(db *sql.DB, targetID, followerID int64) error {
	if targetID == followerID {
		return fmt.Errorf("user %d cannot follow themselves", targetID)
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO user_followers (user_id, follower_id, created_at)
		VALUES (?, ?, ?)
	`, targetID, followerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add follower: %w", err)
	}
	return nil
}

func Unfollow(db *sql.DB, targetID, followerID int64) error {
	_, err := db.Exec(`
		DELETE FROM user_followers WHERE user_id = ? AND follower_id = ?
	`, targetID, followerID)
	if err != nil {
		return fmt.Errorf("failed to remove follower: %w", err)
	}
	return nil
}

// GetFollowing returns the users that userID follows, ordered by user id so
// callers see a stable order within one response.
func GetFollowing(db *sql.DB, userID int64) ([]*types.User, error) {
	return queryUsers(db, `
		SELECT `+prefixedUserColumns("u")+`
		FROM users u
		JOIN user_followers uf ON uf.user_id = u.id
		WHERE uf.follower_id = ?
		ORDER BY u.id
	`, userID)
}

// GetFollowers returns the users following userID.
func GetFollowers(db *sql.DB, userID int64) ([]*types.User, error) {
	return queryUsers(db, `
		SELECT `+prefixedUserColumns("u")+`
		FROM users u
		JOIN user_followers uf ON uf.follower_id = u.id
		WHERE uf.user_id = ?
		ORDER BY u.id
	`, userID)
}

func IsFollowing(db *sql.DB, targetID, followerID int64) (bool, error) {
	var one int
	err := db.QueryRow(`
		SELECT 1 FROM user_followers WHERE user_id = ? AND follower_id = ?
	`, targetID, followerID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check follow edge: %w", err)
	}
	return true, nil
}

func queryUsers(db *sql.DB, query string, args ...any) ([]*types.User, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func prefixedUserColumns(alias string) string {
	return alias + ".id, " + alias + ".email, " + alias + ".name, " + alias + ".password, " +
		alias + ".provider, " + alias + ".provider_id, " + alias + ".avatar_url, " +
		alias + ".bio, " + alias + ".gender, " + alias + ".created_at"
}
