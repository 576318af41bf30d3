package api

import "context"

// Credentials is the session snapshot a dispatch reads once. Later session
// mutations do not affect calls already in flight.
type Credentials struct {
	Server     string
	Account    string
	Credential string
}

// SessionSource supplies the current credentials at dispatch time.
type SessionSource interface {
	Credentials() Credentials
}

// Authenticator is the wire side of session management. Authenticate
// exchanges account and credential for the bearer token subsequent calls
// use; on Subsonic there is no token exchange, so the credential itself
// comes back after the server accepts it. Verify is a real introspection
// round trip with the stored credential. Register returns ErrUnsupported
// on dialects without a registration endpoint.
type Authenticator interface {
	Authenticate(ctx context.Context, server, account, credential string) (string, error)
	Register(ctx context.Context, server, name, account, credential string) error
	Verify(ctx context.Context) error
}

// StarKind selects which identifier parameter a star or unstar request
// carries; exactly one of the three is populated per request.
type StarKind string

const (
	StarTrack  StarKind = "track"
	StarAlbum  StarKind = "album"
	StarArtist StarKind = "artist"
)

// Adapter is one server dialect behind a dialect-free surface. Both
// implementations decode into the shared raw types, so callers never see
// the envelope or the endpoint naming of the dialect. The choice of
// adapter is made once at construction; mixing two dialects against one
// server is undefined.
type Adapter interface {
	Authenticator

	Ping(ctx context.Context) error
	Genres(ctx context.Context) ([]Genre, error)
	AlbumList(ctx context.Context, listType string, size, offset int, genre string) ([]Album, error)
	SongsByGenre(ctx context.Context, genre string, count, offset int) ([]Track, error)
	Artists(ctx context.Context) ([]Index, error)
	Artist(ctx context.Context, id string) (*Artist, error)
	Album(ctx context.Context, id string) (*Album, error)
	Playlists(ctx context.Context) ([]Playlist, error)
	Playlist(ctx context.Context, id string) (*Playlist, error)
	CreatePlaylist(ctx context.Context, name string) error
	RenamePlaylist(ctx context.Context, id, name string) error
	DeletePlaylist(ctx context.Context, id string) error
	AddToPlaylist(ctx context.Context, playlistID, trackID string) error
	RemoveFromPlaylist(ctx context.Context, playlistID, index string) error
	RandomSongs(ctx context.Context, size int) ([]Track, error)
	Starred(ctx context.Context) (*Starred, error)
	SetStar(ctx context.Context, kind StarKind, id string, on bool) error
	Search(ctx context.Context, query string) (*SearchResult, error)
	Scrobble(ctx context.Context, id string) error
	Podcasts(ctx context.Context) ([]Podcast, error)
	StartScan(ctx context.Context) error

	// Resource URLs carry the dialect's credential parameters so they stay
	// fetchable by a bare media element without this client in the loop.
	StreamURL(id string) string
	CoverArtURL(id string) string
	DownloadURL(id string) string
}
