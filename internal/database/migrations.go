package database

import (
	"database/sql"
	"fmt"
)

type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations are embedded rather than loaded from disk so the binary is
// self-contained and tests can run the full schema against :memory:.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				password TEXT NOT NULL DEFAULT '',
				provider TEXT,
				provider_id TEXT,
				avatar_url TEXT,
				bio TEXT,
				gender TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);

			CREATE TABLE user_followers (
				user_id INTEGER NOT NULL REFERENCES users(id),
				follower_id INTEGER NOT NULL REFERENCES users(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, follower_id)
			);

			CREATE TABLE movie_likes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				movie_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				poster_path TEXT,
				vote_average REAL NOT NULL DEFAULT 0,
				release_date TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, movie_id)
			);

			CREATE TABLE movie_watched (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				movie_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				poster_path TEXT,
				vote_average REAL NOT NULL DEFAULT 0,
				release_date TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, movie_id)
			);

			CREATE TABLE movie_watchlist (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				movie_id TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				poster_path TEXT,
				vote_average REAL NOT NULL DEFAULT 0,
				release_date TEXT,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, movie_id)
			);

			CREATE TABLE reviews (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				movie_id TEXT NOT NULL,
				movie_title TEXT NOT NULL DEFAULT '',
				movie_year TEXT,
				movie_poster_url TEXT,
				content TEXT NOT NULL DEFAULT '',
				rating REAL NOT NULL DEFAULT 0,
				is_rewatch INTEGER NOT NULL DEFAULT 0,
				contains_spoiler INTEGER NOT NULL DEFAULT 0,
				watched_date TEXT,
				tags TEXT NOT NULL DEFAULT '[]',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, movie_id)
			);

			CREATE TABLE review_likes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id),
				review_id INTEGER NOT NULL REFERENCES reviews(id),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE(user_id, review_id)
			);
		`,
	},
	{
		Version: 2,
		Name:    "plex_accounts",
		SQL: `
			CREATE TABLE plex_accounts (
				user_id INTEGER PRIMARY KEY REFERENCES users(id),
				plex_token TEXT NOT NULL,
				connected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				last_import_at DATETIME
			);
		`,
	},
}

func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if !applied[migration.Version] {
			if err := applyMigration(db, migration); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}
	}

	return nil
}

func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func applyMigration(db *sql.DB, migration Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		migration.Version, migration.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
