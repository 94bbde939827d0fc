package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/LukeHagar/plexgo"
	"github.com/LukeHagar/plexgo/models/operations"
)

// PlexClient wraps the plexgo SDK with the small surface the watched
// import needs: discover servers, list movie libraries, list their items.
type PlexClient struct {
	clientID string
}

type PlexServer struct {
	Name        string
	MachineID   string
	AccessToken string
	Connections []PlexConnection
	Owned       bool
}

type PlexConnection struct {
	Protocol string
	Address  string
	Port     int
	URI      string
	Local    bool
	Relay    bool
}

type PlexLibrary struct {
	Key   int
	Title string
	Type  string
}

// PlexMovie is one movie item from a Plex library.
type PlexMovie struct {
	Title string
	Year  *int
	GUID  string
}

func NewPlexClient() *PlexClient {
	return &PlexClient{clientID: "filmlog-app"}
}

// GetServers lists the Plex Media Servers the token grants access to.
func (p *PlexClient) GetServers(ctx context.Context, token string) ([]PlexServer, error) {
	client := plexgo.New(
		plexgo.WithSecurity(token),
	)

	res, err := client.Plex.GetServerResources(ctx, p.clientID,
		operations.IncludeHTTPSEnable.ToPointer(),
		operations.IncludeRelayEnable.ToPointer(),
		nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get server resources: %w", err)
	}

	var servers []PlexServer
	if res.PlexDevices != nil {
		for _, device := range res.PlexDevices {
			if device.Product != "Plex Media Server" {
				continue
			}

			server := PlexServer{
				Name:        device.Name,
				MachineID:   device.ClientIdentifier,
				AccessToken: device.AccessToken,
				Owned:       device.Owned,
			}

			for _, conn := range device.Connections {
				server.Connections = append(server.Connections, PlexConnection{
					Protocol: string(conn.Protocol),
					Address:  conn.Address,
					Port:     conn.Port,
					URI:      conn.URI,
					Local:    conn.Local,
					Relay:    conn.Relay,
				})
			}

			servers = append(servers, server)
		}
	}

	return servers, nil
}

// GetMovieLibraries lists the movie-typed library sections on a server.
func (p *PlexClient) GetMovieLibraries(ctx context.Context, token, serverURL string) ([]PlexLibrary, error) {
	client := plexgo.New(
		plexgo.WithSecurity(token),
		plexgo.WithServerURL(serverURL),
	)

	res, err := client.Library.GetAllLibraries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get libraries: %w", err)
	}

	var libraries []PlexLibrary
	if res.Object != nil && res.Object.MediaContainer != nil {
		for _, dir := range res.Object.MediaContainer.Directory {
			if string(dir.Type) != "movie" {
				continue
			}
			key, err := strconv.Atoi(dir.Key)
			if err != nil {
				continue
			}
			libraries = append(libraries, PlexLibrary{
				Key:   key,
				Title: dir.Title,
				Type:  string(dir.Type),
			})
		}
	}

	return libraries, nil
}

// GetMoviesInLibrary lists the movies in one library section.
func (p *PlexClient) GetMoviesInLibrary(ctx context.Context, token, serverURL string, libraryKey int) ([]PlexMovie, error) {
	client := plexgo.New(
		plexgo.WithSecurity(token),
		plexgo.WithServerURL(serverURL),
	)

	libraryReq := operations.GetLibraryItemsRequest{
		SectionKey: libraryKey,
		Tag:        operations.Tag("all"),
	}
	res, err := client.Library.GetLibraryItems(ctx, libraryReq)
	if err != nil {
		return nil, fmt.Errorf("failed to get library items: %w", err)
	}

	var movies []PlexMovie
	if res.Object != nil && res.Object.MediaContainer != nil {
		for _, metadata := range res.Object.MediaContainer.Metadata {
			if metadata.Type != operations.GetLibraryItemsTypeMovie {
				continue
			}
			movie := PlexMovie{
				Title: metadata.Title,
				GUID:  metadata.GUID,
			}
			if metadata.Year != nil {
				movie.Year = metadata.Year
			}
			movies = append(movies, movie)
		}
	}

	return movies, nil
}

// BestConnection picks a connection for a server, preferring direct
// external connections, then local, then anything.
func (p *PlexClient) BestConnection(server PlexServer) *PlexConnection {
	for i, conn := range server.Connections {
		if !conn.Local && !conn.Relay {
			return &server.Connections[i]
		}
	}
	for i, conn := range server.Connections {
		if conn.Local {
			return &server.Connections[i]
		}
	}
	if len(server.Connections) > 0 {
		return &server.Connections[0]
	}
	return nil
}

// ServerURL builds a usable URL from connection info.
func (p *PlexClient) ServerURL(conn PlexConnection) string {
	if conn.URI != "" {
		return conn.URI
	}
	return fmt.Sprintf("%s://%s:%d", conn.Protocol, conn.Address, conn.Port)
}
