package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"filmlog/internal/auth"
	"filmlog/internal/config"
	"filmlog/internal/database"
	"filmlog/internal/engine"
	"filmlog/internal/handlers"
	"filmlog/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("configuration failed")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	// Initialize database
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Optional redis cache for the TMDB catalog
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	rdb, err := services.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	if rdb == nil {
		log.Info().Msg("redis not configured, catalog caching disabled")
	}

	// Initialize auth middleware
	authMiddleware, err := auth.NewMiddleware(cfg.Auth0Domain, cfg.Auth0Aud)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create auth middleware")
	}

	// Initialize services
	tmdbClient := services.NewTMDBClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)
	catalog := services.NewCatalog(tmdbClient, rdb, log)
	eng := engine.New(db, log)
	plexClient := services.NewPlexClient()
	plexImporter := services.NewPlexImporter(db, plexClient, tmdbClient, eng, log)

	// Initialize handlers
	movieHandler := handlers.NewMovieHandler(db, eng, catalog)
	userHandler := handlers.NewUserHandler(db)
	likesHandler := handlers.NewLikesHandler(db, eng)
	watchedHandler := handlers.NewWatchedHandler(db, eng)
	watchlistHandler := handlers.NewWatchlistHandler(db, eng)
	reviewHandler := handlers.NewReviewHandler(db, eng)
	plexHandler := handlers.NewPlexHandler(db, plexImporter)

	// Setup router using standard library ServeMux
	mux := http.NewServeMux()

	// Health check (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	require := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Require(h).ServeHTTP
	}
	allow := func(h http.HandlerFunc) http.HandlerFunc {
		return authMiddleware.Allow(h).ServeHTTP
	}

	// User routes
	mux.HandleFunc("GET /api/me", require(userHandler.Me))
	mux.HandleFunc("GET /api/users/{id}", allow(userHandler.GetUser))
	mux.HandleFunc("GET /api/users/{id}/followers", allow(userHandler.Followers))
	mux.HandleFunc("GET /api/users/{id}/following", allow(userHandler.Following))
	mux.HandleFunc("POST /api/users/{id}/follow", require(userHandler.Follow))
	mux.HandleFunc("DELETE /api/users/{id}/follow", require(userHandler.Unfollow))

	// Catalog routes
	mux.HandleFunc("GET /api/movies/trending", allow(movieHandler.Trending))
	mux.HandleFunc("GET /api/movies/top-rated", allow(movieHandler.TopRated))
	mux.HandleFunc("GET /api/movies/search", allow(movieHandler.Search))
	mux.HandleFunc("GET /api/movies/search/paginated", allow(movieHandler.SearchPaginated))
	mux.HandleFunc("GET /api/movies/{id}", allow(movieHandler.GetMovie))
	mux.HandleFunc("GET /api/movies/{id}/friend-activity", allow(movieHandler.FriendActivity))
	mux.HandleFunc("GET /api/people/search", allow(movieHandler.SearchPeople))
	mux.HandleFunc("GET /api/people/search/paginated", allow(movieHandler.SearchPeoplePaginated))
	mux.HandleFunc("GET /api/people/{id}", allow(movieHandler.GetPerson))
	mux.HandleFunc("GET /api/people/{id}/credits", allow(movieHandler.GetPersonCredits))

	// Likes routes
	mux.HandleFunc("GET /api/likes", require(likesHandler.List))
	mux.HandleFunc("GET /api/likes/user/{userId}", allow(likesHandler.ListForUser))
	mux.HandleFunc("GET /api/likes/{movieId}", require(likesHandler.Check))
	mux.HandleFunc("POST /api/likes", require(likesHandler.Add))
	mux.HandleFunc("DELETE /api/likes/{movieId}", require(likesHandler.Remove))

	// Watched routes
	mux.HandleFunc("GET /api/watched", require(watchedHandler.List))
	mux.HandleFunc("GET /api/watched/user/{userId}", allow(watchedHandler.ListForUser))
	mux.HandleFunc("GET /api/watched/{movieId}", require(watchedHandler.Check))
	mux.HandleFunc("POST /api/watched", require(watchedHandler.Add))
	mux.HandleFunc("DELETE /api/watched/{movieId}", require(watchedHandler.Remove))

	// Watchlist routes
	mux.HandleFunc("GET /api/watchlist", require(watchlistHandler.List))
	mux.HandleFunc("GET /api/watchlist/user/{userId}", allow(watchlistHandler.ListForUser))
	mux.HandleFunc("GET /api/watchlist/{movieId}", require(watchlistHandler.Check))
	mux.HandleFunc("POST /api/watchlist", require(watchlistHandler.Add))
	mux.HandleFunc("DELETE /api/watchlist/{movieId}", require(watchlistHandler.Remove))

	// Review routes
	mux.HandleFunc("POST /api/reviews", require(reviewHandler.Upsert))
	mux.HandleFunc("GET /api/reviews/check/{movieId}", require(reviewHandler.CheckStatus))
	mux.HandleFunc("GET /api/reviews/friends", require(reviewHandler.FriendReviews))
	mux.HandleFunc("GET /api/reviews/search", allow(reviewHandler.SearchByTag))
	mux.HandleFunc("GET /api/reviews/user/{userId}", allow(reviewHandler.UserReviews))
	mux.HandleFunc("GET /api/reviews/user/{userId}/movie/{movieId}", allow(reviewHandler.UserMovieStatus))
	mux.HandleFunc("POST /api/reviews/{reviewId}/like", require(reviewHandler.Like))
	mux.HandleFunc("DELETE /api/reviews/{reviewId}/like", require(reviewHandler.Unlike))

	// Plex routes
	mux.HandleFunc("POST /api/plex/connect", require(plexHandler.Connect))
	mux.HandleFunc("DELETE /api/plex/connect", require(plexHandler.Disconnect))
	mux.HandleFunc("POST /api/plex/import", require(plexHandler.Import))

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
